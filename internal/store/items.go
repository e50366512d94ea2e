package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/erazemk/lostfound/internal/model"
)

const itemColumns = `id, description, found_location, collection_location, image_path,
	upload_date, is_collected, collected_date, collected_by, is_archived, archived_date`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (*model.Item, error) {
	item := &model.Item{}
	var imagePath, collectedBy sql.NullString
	err := row.Scan(&item.ID, &item.Description, &item.FoundLocation, &item.CollectionLocation, &imagePath,
		&item.UploadDate, &item.IsCollected, &item.CollectedDate, &collectedBy, &item.IsArchived, &item.ArchivedDate)
	if err != nil {
		return nil, err
	}
	item.ImagePath = imagePath.String
	item.CollectedBy = collectedBy.String
	return item, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// CreateItem inserts a new active item uploaded at the given time.
func CreateItem(ctx context.Context, db *sql.DB, n model.NewItem, uploadedAt time.Time) (*model.Item, error) {
	result, err := db.ExecContext(ctx,
		`INSERT INTO items (description, found_location, collection_location, image_path, upload_date)
		 VALUES (?, ?, ?, ?, ?)`,
		n.Description, n.FoundLocation, n.CollectionLocation, nullString(n.ImagePath), uploadedAt.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("creating item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting item id: %w", err)
	}

	return GetItem(ctx, db, id)
}

// GetItem returns an item by ID, or nil if it does not exist.
func GetItem(ctx context.Context, db *sql.DB, id int64) (*model.Item, error) {
	item, err := scanItem(db.QueryRowContext(ctx,
		`SELECT `+itemColumns+` FROM items WHERE id = ?`, id,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting item: %w", err)
	}
	return item, nil
}

// ListFunc is the signature shared by the item list queries.
type ListFunc func(ctx context.Context, db *sql.DB) ([]model.Item, error)

// ListActiveItems returns items that are neither collected nor archived, newest upload first.
func ListActiveItems(ctx context.Context, db *sql.DB) ([]model.Item, error) {
	return listItems(ctx, db, "listing active items",
		`WHERE is_collected = 0 AND is_archived = 0 ORDER BY upload_date DESC, id DESC`)
}

// ListCollectedItems returns collected items, most recently collected first.
func ListCollectedItems(ctx context.Context, db *sql.DB) ([]model.Item, error) {
	return listItems(ctx, db, "listing collected items",
		`WHERE is_collected = 1 ORDER BY collected_date DESC, id DESC`)
}

// ListArchivedItems returns archived items, most recently archived first.
func ListArchivedItems(ctx context.Context, db *sql.DB) ([]model.Item, error) {
	return listItems(ctx, db, "listing archived items",
		`WHERE is_archived = 1 ORDER BY archived_date DESC, id DESC`)
}

func listItems(ctx context.Context, db *sql.DB, op, clause string) ([]model.Item, error) {
	rows, err := db.QueryContext(ctx, `SELECT `+itemColumns+` FROM items `+clause)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var items []model.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

// GetStatistics returns active, archived and collected counts in a single read.
func GetStatistics(ctx context.Context, db *sql.DB) (*model.Statistics, error) {
	stats := &model.Statistics{}
	err := db.QueryRowContext(ctx,
		`SELECT
		    COALESCE(SUM(CASE WHEN is_collected = 0 AND is_archived = 0 THEN 1 ELSE 0 END), 0),
		    COALESCE(SUM(CASE WHEN is_archived = 1 THEN 1 ELSE 0 END), 0),
		    COALESCE(SUM(CASE WHEN is_collected = 1 THEN 1 ELSE 0 END), 0)
		 FROM items`,
	).Scan(&stats.ActiveCount, &stats.ArchivedCount, &stats.CollectedCount)
	if err != nil {
		return nil, fmt.Errorf("getting statistics: %w", err)
	}
	return stats, nil
}

// MarkCollected stamps an item as collected by the given person. Any archive
// stamp is cleared in the same statement. Reports false if the item does not exist.
func MarkCollected(ctx context.Context, db *sql.DB, id int64, collectedBy string, at time.Time) (bool, error) {
	result, err := db.ExecContext(ctx,
		`UPDATE items
		 SET is_collected = 1, collected_date = ?, collected_by = ?, is_archived = 0, archived_date = NULL
		 WHERE id = ?`,
		at.UTC(), collectedBy, id,
	)
	if err != nil {
		return false, fmt.Errorf("marking item collected: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("getting affected rows: %w", err)
	}
	return n > 0, nil
}

// ArchiveUploadedBefore archives every active item uploaded at or before cutoff,
// stamping it with at. Returns the number of archived items.
func ArchiveUploadedBefore(ctx context.Context, db *sql.DB, cutoff, at time.Time) (int64, error) {
	result, err := db.ExecContext(ctx,
		`UPDATE items SET is_archived = 1, archived_date = ?
		 WHERE is_collected = 0 AND is_archived = 0 AND upload_date <= ?`,
		at.UTC(), cutoff.UTC(),
	)
	if err != nil {
		return 0, fmt.Errorf("archiving items: %w", err)
	}
	return result.RowsAffected()
}

// ResetCollected returns every collected item to the active list.
func ResetCollected(ctx context.Context, db *sql.DB) (int64, error) {
	result, err := db.ExecContext(ctx,
		`UPDATE items SET is_collected = 0, collected_date = NULL, collected_by = NULL
		 WHERE is_collected = 1`,
	)
	if err != nil {
		return 0, fmt.Errorf("resetting collected items: %w", err)
	}
	return result.RowsAffected()
}

// DeleteActiveItems permanently deletes every item that is neither collected
// nor archived. Returns the image paths of the deleted items (empty paths
// omitted) and the number of deleted rows.
func DeleteActiveItems(ctx context.Context, db *sql.DB) ([]string, int64, error) {
	rows, err := db.QueryContext(ctx,
		`DELETE FROM items WHERE is_collected = 0 AND is_archived = 0 RETURNING image_path`,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("deleting active items: %w", err)
	}
	defer rows.Close()

	var images []string
	var n int64
	for rows.Next() {
		var imagePath sql.NullString
		if err := rows.Scan(&imagePath); err != nil {
			return nil, 0, fmt.Errorf("scanning deleted item: %w", err)
		}
		n++
		if imagePath.String != "" {
			images = append(images, imagePath.String)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("deleting active items: %w", err)
	}
	return images, n, nil
}

// DeleteItem permanently deletes an item in any state. Returns its image path
// and whether a row was deleted.
func DeleteItem(ctx context.Context, db *sql.DB, id int64) (string, bool, error) {
	var imagePath sql.NullString
	err := db.QueryRowContext(ctx,
		`DELETE FROM items WHERE id = ? RETURNING image_path`, id,
	).Scan(&imagePath)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("deleting item: %w", err)
	}
	return imagePath.String, true, nil
}

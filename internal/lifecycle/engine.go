package lifecycle

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/erazemk/lostfound/internal/model"
	"github.com/erazemk/lostfound/internal/store"
)

// ImageRemover deletes stored image files that are no longer referenced.
type ImageRemover interface {
	Remove(name string) error
}

// Engine applies lifecycle transitions to the item store.
type Engine struct {
	db     *sql.DB
	clock  Clock
	images ImageRemover
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock sets the time source used to stamp transitions.
func WithClock(c Clock) Option {
	return func(e *Engine) { e.clock = c }
}

// WithImageRemover makes deletions also remove the deleted items' images.
func WithImageRemover(r ImageRemover) Option {
	return func(e *Engine) { e.images = r }
}

// NewEngine returns an Engine over db. Without options it uses the system clock
// and leaves image files alone.
func NewEngine(db *sql.DB, opts ...Option) *Engine {
	e := &Engine{db: db, clock: SystemClock{}}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Now returns the engine's current time.
func (e *Engine) Now() time.Time {
	return e.clock.Now()
}

// CreateItem validates and stores a new found-item report uploaded now.
func (e *Engine) CreateItem(ctx context.Context, n model.NewItem) (*model.Item, error) {
	n.Description = strings.TrimSpace(n.Description)
	n.FoundLocation = strings.TrimSpace(n.FoundLocation)
	n.CollectionLocation = strings.TrimSpace(n.CollectionLocation)

	switch {
	case n.Description == "":
		return nil, &model.ValidationError{Field: "description", Message: "description is required"}
	case n.FoundLocation == "":
		return nil, &model.ValidationError{Field: "found_location", Message: "found location is required"}
	case n.CollectionLocation == "":
		return nil, &model.ValidationError{Field: "collection_location", Message: "collection location is required"}
	}

	item, err := store.CreateItem(ctx, e.db, n, e.clock.Now())
	if err != nil {
		return nil, &model.StoreError{Op: "create item", Err: err}
	}
	return item, nil
}

// AutoArchive archives every active item uploaded at least one calendar month
// ago and returns how many were archived. Running it again without new
// eligible items archives nothing.
func (e *Engine) AutoArchive(ctx context.Context) (int, error) {
	now := e.clock.Now()
	n, err := store.ArchiveUploadedBefore(ctx, e.db, ArchiveCutoff(now), now)
	if err != nil {
		return 0, &model.StoreError{Op: "archive items", Err: err}
	}
	return int(n), nil
}

// MarkCollected records that the item was handed to collectedBy. The name is
// trimmed and must not be empty. Collecting an archived item is allowed and
// removes it from the archive. Collecting twice re-stamps the collection.
func (e *Engine) MarkCollected(ctx context.Context, id int64, collectedBy string) error {
	collectedBy = strings.TrimSpace(collectedBy)
	if collectedBy == "" {
		return &model.ValidationError{Field: "collected_by", Message: "student name is required"}
	}

	ok, err := store.MarkCollected(ctx, e.db, id, collectedBy, e.clock.Now())
	if err != nil {
		return &model.StoreError{Op: "mark collected", Err: err}
	}
	if !ok {
		return fmt.Errorf("item %d: %w", id, model.ErrNotFound)
	}
	return nil
}

// ClearCollectionHistory returns every collected item to the active list.
func (e *Engine) ClearCollectionHistory(ctx context.Context) (int, error) {
	n, err := store.ResetCollected(ctx, e.db)
	if err != nil {
		return 0, &model.StoreError{Op: "clear collection history", Err: err}
	}
	return int(n), nil
}

// ClearActiveItems permanently deletes every active item and its image.
// Collected and archived items are kept.
func (e *Engine) ClearActiveItems(ctx context.Context) (int, error) {
	images, n, err := store.DeleteActiveItems(ctx, e.db)
	if err != nil {
		return 0, &model.StoreError{Op: "clear active items", Err: err}
	}
	for _, name := range images {
		e.removeImage(name)
	}
	return int(n), nil
}

// DeleteItem permanently deletes one item in any state. It reports false if
// no such item exists.
func (e *Engine) DeleteItem(ctx context.Context, id int64) (bool, error) {
	image, ok, err := store.DeleteItem(ctx, e.db, id)
	if err != nil {
		return false, &model.StoreError{Op: "delete item", Err: err}
	}
	if image != "" {
		e.removeImage(image)
	}
	return ok, nil
}

// Image removal failures leave an orphaned file but never undo the deletion.
func (e *Engine) removeImage(name string) {
	if e.images == nil {
		return
	}
	if err := e.images.Remove(name); err != nil {
		slog.Warn("failed to remove item image", "image", name, "error", err)
	}
}

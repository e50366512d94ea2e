package model

import "time"

// Item is a found-item report.
type Item struct {
	ID                 int64      `json:"id"`
	Description        string     `json:"description"`
	FoundLocation      string     `json:"found_location"`
	CollectionLocation string     `json:"collection_location"`
	ImagePath          string     `json:"image_path,omitempty"`
	UploadDate         time.Time  `json:"upload_date"`
	IsCollected        bool       `json:"is_collected"`
	CollectedDate      *time.Time `json:"collected_date,omitempty"`
	CollectedBy        string     `json:"collected_by,omitempty"`
	IsArchived         bool       `json:"is_archived"`
	ArchivedDate       *time.Time `json:"archived_date,omitempty"`
}

// NewItem holds the fields a student supplies when reporting a found item.
type NewItem struct {
	Description        string
	FoundLocation      string
	CollectionLocation string
	ImagePath          string
}

// Item states.
const (
	ItemStateActive    = "active"
	ItemStateCollected = "collected"
	ItemStateArchived  = "archived"
)

// State reports the logical lifecycle state of the item. Collected takes
// precedence over archived.
func (i *Item) State() string {
	switch {
	case i.IsCollected:
		return ItemStateCollected
	case i.IsArchived:
		return ItemStateArchived
	default:
		return ItemStateActive
	}
}

// Statistics holds the per-state item counts.
type Statistics struct {
	ActiveCount    int `json:"current_count"`
	ArchivedCount  int `json:"archived_count"`
	CollectedCount int `json:"collected_count"`
}

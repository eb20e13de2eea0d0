package domain

import (
	"context"
)

// RecordID identifies an ImageRecord. IDs are assigned by the store on insert,
// strictly increase in insertion order and are never reused.
type RecordID int64

// ImageRecord is the metadata kept for one captured or picked image.
// A record is immutable once inserted.
type ImageRecord struct {
	ID RecordID
	// Locator points at the image bytes (a URI or a path). It is never interpreted.
	Locator string
	// CapturedAt is the capture time in milliseconds since the Unix epoch.
	CapturedAt int64
}

// RecordRepository is the durable append-only log of image records.
// ListAll orders records by CapturedAt descending, then by ID descending.
type RecordRepository interface {
	Insert(ctx context.Context, locator string, capturedAt int64) (RecordID, error)
	InsertMany(ctx context.Context, locators []string, capturedAt int64) ([]RecordID, error)
	ListAll(ctx context.Context) ([]ImageRecord, error)
}

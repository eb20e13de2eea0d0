package persistence

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dfryer1193/camroll/gallery/domain"
	"github.com/dfryer1193/camroll/shared/db"
)

var _ domain.RecordRepository = (*SQLiteRecordRepository)(nil)

// SQLiteRecordRepository implements domain.RecordRepository on top of image_table.
type SQLiteRecordRepository struct {
	db *sql.DB
}

// NewRecordRepository creates a new SQLiteRecordRepository from a standard sql.DB
func NewRecordRepository(sqlDB *sql.DB) *SQLiteRecordRepository {
	return &SQLiteRecordRepository{
		db: sqlDB,
	}
}

const insertRecordQuery = `
	INSERT INTO image_table (uri, captureTime)
	VALUES (?, ?)
`

// Insert appends one record and returns its freshly assigned id.
// It joins the transaction carried by ctx when there is one.
func (r *SQLiteRecordRepository) Insert(ctx context.Context, locator string, capturedAt int64) (domain.RecordID, error) {
	if locator == "" {
		return 0, domain.ErrEmptyLocator
	}

	var id domain.RecordID
	err := db.RunInTransaction(ctx, r.db, func(txCtx context.Context) error {
		result, err := db.GetExecutor(txCtx, r.db).ExecContext(txCtx, insertRecordQuery, locator, capturedAt)
		if err != nil {
			return fmt.Errorf("failed to insert image record: %w", err)
		}

		lastID, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to read assigned id: %w", err)
		}
		id = domain.RecordID(lastID)

		return nil
	})
	if err != nil {
		return 0, domain.NewStorageError("insert", err)
	}

	return id, nil
}

// InsertMany appends all locators atomically with the same capture time.
// Ids are returned in input order.
func (r *SQLiteRecordRepository) InsertMany(ctx context.Context, locators []string, capturedAt int64) ([]domain.RecordID, error) {
	for _, locator := range locators {
		if locator == "" {
			return nil, domain.ErrEmptyLocator
		}
	}

	ids := make([]domain.RecordID, 0, len(locators))
	if len(locators) == 0 {
		return ids, nil
	}

	err := db.RunInTransaction(ctx, r.db, func(txCtx context.Context) error {
		for _, locator := range locators {
			id, err := r.Insert(txCtx, locator, capturedAt)
			if err != nil {
				return err
			}
			ids = append(ids, id)
		}
		return nil
	})
	if err != nil {
		return nil, domain.NewStorageError("insert batch", err)
	}

	return ids, nil
}

const listRecordsQuery = `
	SELECT id, uri, captureTime
	FROM image_table
	ORDER BY captureTime DESC, id DESC
`

// ListAll returns every record, most recent capture first.
// Records sharing a capture time are ordered by descending id.
func (r *SQLiteRecordRepository) ListAll(ctx context.Context) ([]domain.ImageRecord, error) {
	rows, err := db.GetExecutor(ctx, r.db).QueryContext(ctx, listRecordsQuery)
	if err != nil {
		return nil, domain.NewStorageError("list", fmt.Errorf("failed to list image records: %w", err))
	}
	defer rows.Close()

	records := make([]domain.ImageRecord, 0)
	for rows.Next() {
		var row recordRow
		if err := rows.Scan(&row.ID, &row.URI, &row.CaptureTime); err != nil {
			return nil, domain.NewStorageError("list", fmt.Errorf("failed to scan image row: %w", err))
		}
		records = append(records, row.toDomain())
	}

	if err := rows.Err(); err != nil {
		return nil, domain.NewStorageError("list", fmt.Errorf("error iterating image rows: %w", err))
	}

	return records, nil
}

// recordRow is a private struct used to scan database rows
type recordRow struct {
	ID          int64  `db:"id"`
	URI         string `db:"uri"`
	CaptureTime int64  `db:"captureTime"`
}

func (rr *recordRow) toDomain() domain.ImageRecord {
	return domain.ImageRecord{
		ID:         domain.RecordID(rr.ID),
		Locator:    rr.URI,
		CapturedAt: rr.CaptureTime,
	}
}

package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/desertthunder/taskcal/internal/models"
	"github.com/desertthunder/taskcal/internal/shared"
)

const syncRecordColumns = `id, sequence, task_id, task_name, due_date, all_day, event_id, created_at, updated_at`

var _ models.Ledger = (*SyncRecordRepository)(nil)

// SyncRecordRepository implements [models.Ledger] on top of the sync_records table.
type SyncRecordRepository struct {
	db *sql.DB
}

// NewSyncRecordRepository creates a new [SyncRecordRepository] with the given database connection
func NewSyncRecordRepository(db *sql.DB) *SyncRecordRepository {
	return &SyncRecordRepository{db: db}
}

// Insert stores a new record with generated ID and sequence.
//
// Returns [shared.ErrDuplicateRecord] when the task or event is already recorded.
func (r *SyncRecordRepository) Insert(record *models.SyncRecord) error {
	if err := record.Validate(); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	sequence, err := NextSequence(r.db, "sync_records")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	now := time.Now().UTC()
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}
	if record.UpdatedAt.IsZero() {
		record.UpdatedAt = record.CreatedAt
	}
	id := shared.GenerateID()

	query := `
		INSERT INTO sync_records (` + syncRecordColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query, id, sequence, record.TaskID, record.TaskName, record.DueDate, record.AllDay,
		record.EventID, record.CreatedAt, record.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: task %s", shared.ErrDuplicateRecord, record.TaskID)
		}
		return fmt.Errorf("failed to insert sync record: %w", err)
	}

	record.ID = id
	record.Sequence = sequence
	return nil
}

// FindByTaskID returns the record for taskID, or nil when the task has not been synced.
func (r *SyncRecordRepository) FindByTaskID(taskID string) (*models.SyncRecord, error) {
	query := `SELECT ` + syncRecordColumns + ` FROM sync_records WHERE task_id = ?`

	record, err := scanRecord(r.db.QueryRow(query, taskID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query sync record: %w", err)
	}
	return record, nil
}

// DeleteByTaskID removes the record for taskID so the task is synced again on the next run.
func (r *SyncRecordRepository) DeleteByTaskID(taskID string) (bool, error) {
	result, err := r.db.Exec(`DELETE FROM sync_records WHERE task_id = ?`, taskID)
	if err != nil {
		return false, fmt.Errorf("failed to delete sync record: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get affected rows: %w", err)
	}
	return rows > 0, nil
}

// List returns every record ordered by sequence.
func (r *SyncRecordRepository) List() ([]*models.SyncRecord, error) {
	rows, err := r.db.Query(`SELECT ` + syncRecordColumns + ` FROM sync_records ORDER BY sequence ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query sync records: %w", err)
	}
	defer rows.Close()

	var records []*models.SyncRecord
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sync record: %w", err)
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return records, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(s scanner) (*models.SyncRecord, error) {
	var record models.SyncRecord
	err := s.Scan(&record.ID, &record.Sequence, &record.TaskID, &record.TaskName, &record.DueDate,
		&record.AllDay, &record.EventID, &record.CreatedAt, &record.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func isUniqueViolation(err error) bool {
	var se sqlite3.Error
	return errors.As(err, &se) && se.ExtendedCode == sqlite3.ErrConstraintUnique
}

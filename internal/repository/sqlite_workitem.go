package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/turrisxyz/openproject/internal/db"
	"github.com/turrisxyz/openproject/internal/domain"
)

// workItemColumns is the canonical SELECT column list for work_items.
const workItemColumns = `id, subject, start_date, due_date, duration_days,
		parent_id, schedule_manually, ignore_non_working_days, created_at, updated_at`

// SQLiteWorkItemRepo implements WorkItemRepo over a DBTX, so the same
// implementation serves both plain connections and transactions.
type SQLiteWorkItemRepo struct {
	db db.DBTX
}

// NewSQLiteWorkItemRepo creates a new SQLiteWorkItemRepo.
func NewSQLiteWorkItemRepo(dbtx db.DBTX) *SQLiteWorkItemRepo {
	return &SQLiteWorkItemRepo{db: dbtx}
}

func (r *SQLiteWorkItemRepo) Create(ctx context.Context, w *domain.WorkItem) error {
	query := `INSERT INTO work_items (id, subject, start_date, due_date, duration_days,
		parent_id, schedule_manually, ignore_non_working_days, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		w.ID,
		w.Subject,
		nullableDateToString(w.StartDate),
		nullableDateToString(w.DueDate),
		w.DurationDays,
		nullableStringToValue(w.ParentID),
		boolToInt(w.ScheduleManually),
		boolToInt(w.IgnoreNonWorkingDays),
		w.CreatedAt.Format(time.RFC3339),
		w.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting work item: %w", err)
	}
	return nil
}

func (r *SQLiteWorkItemRepo) GetByID(ctx context.Context, id string) (*domain.WorkItem, error) {
	query := `SELECT ` + workItemColumns + ` FROM work_items WHERE id = ?`
	row := r.db.QueryRowContext(ctx, query, id)
	w, err := r.scanWorkItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("work item %s: %w", id, ErrNotFound)
	}
	return w, err
}

func (r *SQLiteWorkItemRepo) List(ctx context.Context) ([]*domain.WorkItem, error) {
	query := `SELECT ` + workItemColumns + ` FROM work_items ORDER BY created_at, id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing work items: %w", err)
	}
	defer rows.Close()
	return r.scanWorkItems(rows)
}

func (r *SQLiteWorkItemRepo) ListChildren(ctx context.Context, parentID string) ([]*domain.WorkItem, error) {
	query := `SELECT ` + workItemColumns + ` FROM work_items WHERE parent_id = ? ORDER BY created_at, id`
	rows, err := r.db.QueryContext(ctx, query, parentID)
	if err != nil {
		return nil, fmt.Errorf("listing children: %w", err)
	}
	defer rows.Close()
	return r.scanWorkItems(rows)
}

func (r *SQLiteWorkItemRepo) Update(ctx context.Context, w *domain.WorkItem) error {
	query := `UPDATE work_items SET subject = ?, start_date = ?, due_date = ?,
		duration_days = ?, parent_id = ?, schedule_manually = ?,
		ignore_non_working_days = ?, updated_at = ?
		WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query,
		w.Subject,
		nullableDateToString(w.StartDate),
		nullableDateToString(w.DueDate),
		w.DurationDays,
		nullableStringToValue(w.ParentID),
		boolToInt(w.ScheduleManually),
		boolToInt(w.IgnoreNonWorkingDays),
		w.UpdatedAt.Format(time.RFC3339),
		w.ID,
	)
	if err != nil {
		return fmt.Errorf("updating work item: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking update result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("work item %s: %w", w.ID, ErrNotFound)
	}
	return nil
}

func (r *SQLiteWorkItemRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM work_items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting work item: %w", err)
	}
	return nil
}

// scanWorkItem scans a single work item from a *sql.Row.
func (r *SQLiteWorkItemRepo) scanWorkItem(row *sql.Row) (*domain.WorkItem, error) {
	var w domain.WorkItem
	var startDate, dueDate, parentID sql.NullString
	var manually, ignoreNWD int
	var createdAt, updatedAt string

	err := row.Scan(&w.ID, &w.Subject, &startDate, &dueDate, &w.DurationDays,
		&parentID, &manually, &ignoreNWD, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning work item: %w", err)
	}
	return fillWorkItem(&w, startDate, dueDate, parentID, manually, ignoreNWD, createdAt, updatedAt)
}

// scanWorkItems scans multiple work item rows from *sql.Rows.
func (r *SQLiteWorkItemRepo) scanWorkItems(rows *sql.Rows) ([]*domain.WorkItem, error) {
	var items []*domain.WorkItem
	for rows.Next() {
		var w domain.WorkItem
		var startDate, dueDate, parentID sql.NullString
		var manually, ignoreNWD int
		var createdAt, updatedAt string

		err := rows.Scan(&w.ID, &w.Subject, &startDate, &dueDate, &w.DurationDays,
			&parentID, &manually, &ignoreNWD, &createdAt, &updatedAt)
		if err != nil {
			return nil, fmt.Errorf("scanning work item: %w", err)
		}
		item, err := fillWorkItem(&w, startDate, dueDate, parentID, manually, ignoreNWD, createdAt, updatedAt)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating work items: %w", err)
	}
	return items, nil
}

func fillWorkItem(w *domain.WorkItem, startDate, dueDate, parentID sql.NullString,
	manually, ignoreNWD int, createdAt, updatedAt string) (*domain.WorkItem, error) {
	w.StartDate = parseNullableDate(startDate)
	w.DueDate = parseNullableDate(dueDate)
	if parentID.Valid && parentID.String != "" {
		p := parentID.String
		w.ParentID = &p
	}
	w.ScheduleManually = manually != 0
	w.IgnoreNonWorkingDays = ignoreNWD != 0

	var err error
	if w.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	if w.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}
	return w, nil
}

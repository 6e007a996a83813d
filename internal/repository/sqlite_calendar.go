package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/turrisxyz/openproject/internal/db"
	"github.com/turrisxyz/openproject/internal/domain"
)

// SQLiteCalendarRepo stores calendar exceptions (non-working dates) shared by
// all work items that respect the calendar.
type SQLiteCalendarRepo struct {
	db db.DBTX
}

// NewSQLiteCalendarRepo creates a new SQLiteCalendarRepo.
func NewSQLiteCalendarRepo(dbtx db.DBTX) *SQLiteCalendarRepo {
	return &SQLiteCalendarRepo{db: dbtx}
}

func (r *SQLiteCalendarRepo) AddNonWorkingDay(ctx context.Context, d time.Time) error {
	query := `INSERT OR IGNORE INTO non_working_days (date) VALUES (?)`
	_, err := r.db.ExecContext(ctx, query, domain.NormalizeDate(d).Format(domain.DateLayout))
	if err != nil {
		return fmt.Errorf("inserting non-working day: %w", err)
	}
	return nil
}

func (r *SQLiteCalendarRepo) RemoveNonWorkingDay(ctx context.Context, d time.Time) error {
	query := `DELETE FROM non_working_days WHERE date = ?`
	_, err := r.db.ExecContext(ctx, query, domain.NormalizeDate(d).Format(domain.DateLayout))
	if err != nil {
		return fmt.Errorf("deleting non-working day: %w", err)
	}
	return nil
}

func (r *SQLiteCalendarRepo) ListNonWorkingDays(ctx context.Context) ([]time.Time, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT date FROM non_working_days ORDER BY date`)
	if err != nil {
		return nil, fmt.Errorf("listing non-working days: %w", err)
	}
	defer rows.Close()

	var days []time.Time
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("scanning non-working day: %w", err)
		}
		d, err := time.Parse(domain.DateLayout, s)
		if err != nil {
			return nil, fmt.Errorf("parsing non-working day %q: %w", s, err)
		}
		days = append(days, domain.NormalizeDate(d))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating non-working days: %w", err)
	}
	return days, nil
}

package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/turrisxyz/openproject/internal/db"
	"github.com/turrisxyz/openproject/internal/domain"
)

// SQLiteRelationRepo implements RelationRepo over a DBTX.
type SQLiteRelationRepo struct {
	db db.DBTX
}

// NewSQLiteRelationRepo creates a new SQLiteRelationRepo.
func NewSQLiteRelationRepo(dbtx db.DBTX) *SQLiteRelationRepo {
	return &SQLiteRelationRepo{db: dbtx}
}

func (r *SQLiteRelationRepo) Create(ctx context.Context, rel *domain.Relation) error {
	query := `INSERT INTO relations (predecessor_id, successor_id, type) VALUES (?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query, rel.PredecessorID, rel.SuccessorID, string(rel.Type))
	if err != nil {
		return fmt.Errorf("inserting relation: %w", err)
	}
	return nil
}

func (r *SQLiteRelationRepo) Delete(ctx context.Context, predecessorID, successorID string, t domain.RelationType) error {
	query := `DELETE FROM relations WHERE predecessor_id = ? AND successor_id = ? AND type = ?`
	_, err := r.db.ExecContext(ctx, query, predecessorID, successorID, string(t))
	if err != nil {
		return fmt.Errorf("deleting relation: %w", err)
	}
	return nil
}

func (r *SQLiteRelationRepo) List(ctx context.Context) ([]domain.Relation, error) {
	query := `SELECT predecessor_id, successor_id, type FROM relations
		ORDER BY predecessor_id, successor_id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing relations: %w", err)
	}
	defer rows.Close()
	return r.scanRelations(rows)
}

func (r *SQLiteRelationRepo) ListPredecessors(ctx context.Context, workItemID string) ([]domain.Relation, error) {
	query := `SELECT predecessor_id, successor_id, type FROM relations
		WHERE successor_id = ? ORDER BY predecessor_id`
	rows, err := r.db.QueryContext(ctx, query, workItemID)
	if err != nil {
		return nil, fmt.Errorf("listing predecessors: %w", err)
	}
	defer rows.Close()
	return r.scanRelations(rows)
}

func (r *SQLiteRelationRepo) ListSuccessors(ctx context.Context, workItemID string) ([]domain.Relation, error) {
	query := `SELECT predecessor_id, successor_id, type FROM relations
		WHERE predecessor_id = ? ORDER BY successor_id`
	rows, err := r.db.QueryContext(ctx, query, workItemID)
	if err != nil {
		return nil, fmt.Errorf("listing successors: %w", err)
	}
	defer rows.Close()
	return r.scanRelations(rows)
}

// scanRelations scans multiple relation rows from *sql.Rows.
func (r *SQLiteRelationRepo) scanRelations(rows *sql.Rows) ([]domain.Relation, error) {
	var rels []domain.Relation
	for rows.Next() {
		var rel domain.Relation
		var t string
		if err := rows.Scan(&rel.PredecessorID, &rel.SuccessorID, &t); err != nil {
			return nil, fmt.Errorf("scanning relation: %w", err)
		}
		rel.Type = domain.RelationType(t)
		rels = append(rels, rel)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating relations: %w", err)
	}
	return rels, nil
}

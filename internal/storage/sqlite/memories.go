package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/sandevgo/recallbot/internal/core"
	"github.com/sandevgo/recallbot/pkg/log"
)

// MemoriesRepo implements core.MemoryStore on sqlite + sqlite-vec.
// Records are append-only; there is no update or delete path.
type MemoriesRepo struct {
	db  *sql.DB
	dim int
}

func NewMemoriesRepo(db *sql.DB, dim int) *MemoriesRepo {
	return &MemoriesRepo{db: db, dim: dim}
}

func (r *MemoriesRepo) Insert(ctx context.Context, record core.MemoryRecord) error {
	if record.Fact == "" {
		return fmt.Errorf("refusing to store empty fact")
	}
	if len(record.Embedding) != r.dim {
		return fmt.Errorf("embedding dimension %d, want %d", len(record.Embedding), r.dim)
	}
	if record.ID == "" {
		record.ID = uuid.NewString()
	}

	vecBlob, err := serializeVector(record.Embedding)
	if err != nil {
		return err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO memories (id, user_id, fact) VALUES (?, ?, ?)`,
		record.ID, record.UserID, record.Fact,
	)
	if err != nil {
		return fmt.Errorf("failed to insert memory metadata: %w", err)
	}

	rowID, err := res.LastInsertId()
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO memories_vec (rowid, user_id, embedding) VALUES (?, ?, ?)`,
		rowID, record.UserID, vecBlob,
	)
	if err != nil {
		return fmt.Errorf("failed to insert memory vector: %w", err)
	}

	return tx.Commit()
}

func (r *MemoriesRepo) Query(ctx context.Context, userID int64, vector []float32, k int) ([]core.ScoredRecord, error) {
	if len(vector) != r.dim {
		return nil, fmt.Errorf("query dimension %d, want %d", len(vector), r.dim)
	}

	vecBlob, err := serializeVector(vector)
	if err != nil {
		return nil, err
	}

	// Cosine distance from sqlite-vec is in [0, 2]; similarity = 1 - distance.
	query := `
		SELECT m.id, m.user_id, m.fact, m.created_at, v.distance
		FROM memories_vec v
		JOIN memories m ON m.rowid = v.rowid
		WHERE v.embedding MATCH ? AND v.user_id = ? AND k = ?
		ORDER BY v.distance
	`
	rows, err := r.db.QueryContext(ctx, query, vecBlob, userID, k)
	if err != nil {
		return nil, fmt.Errorf("memory search failed: %w", err)
	}
	defer rows.Close()

	var results []core.ScoredRecord
	for rows.Next() {
		var rec core.MemoryRecord
		var distance float64
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.Fact, &rec.CreatedAt, &distance); err != nil {
			return nil, fmt.Errorf("failed to scan memory: %w", err)
		}
		results = append(results, core.ScoredRecord{
			Record: rec,
			Score:  1 - distance,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	log.FromCtx(ctx).Debug().
		Int64("user_id", userID).
		Int("count", len(results)).
		Msg("memory search completed")

	return results, nil
}

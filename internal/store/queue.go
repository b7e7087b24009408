package store

import (
	"context"
	"fmt"

	"github.com/wallethabit/affirmations/internal/dbx"
	"github.com/wallethabit/affirmations/internal/models"
)

// QueueRepository persists the durable mutation queue. Insertion order is
// the flush order; removing only the items whose remote application
// succeeded keeps the relative order of the remainder intact.
type QueueRepository struct {
	db dbx.DBTX
}

func NewQueueRepository(db dbx.DBTX) *QueueRepository {
	return &QueueRepository{db: db}
}

// Enqueue appends an item and returns it with its assigned sequence number.
func (r *QueueRepository) Enqueue(ctx context.Context, item models.QueueItem) (models.QueueItem, error) {
	query := `INSERT INTO queue (type, action, payload, enqueued_at) VALUES (?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, query,
		string(item.Type), string(item.Action), []byte(item.Payload), formatTime(item.EnqueuedAt))
	if err != nil {
		return models.QueueItem{}, fmt.Errorf("failed to enqueue item: %w", err)
	}
	seq, err := res.LastInsertId()
	if err != nil {
		return models.QueueItem{}, fmt.Errorf("failed to get queue seq: %w", err)
	}
	item.Seq = seq
	return item, nil
}

// List returns all pending items in insertion order.
func (r *QueueRepository) List(ctx context.Context) ([]models.QueueItem, error) {
	query := `SELECT seq, type, action, payload, enqueued_at FROM queue ORDER BY seq`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select queue: %w", err)
	}
	defer rows.Close()

	var result []models.QueueItem
	for rows.Next() {
		var item models.QueueItem
		var typ, action, enqueued string
		var payload []byte
		if err := rows.Scan(&item.Seq, &typ, &action, &payload, &enqueued); err != nil {
			return nil, err
		}
		item.Type = models.EntityType(typ)
		item.Action = models.Action(action)
		item.Payload = payload
		item.EnqueuedAt = parseTime(enqueued)
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Delete removes one item after its remote application succeeded.
func (r *QueueRepository) Delete(ctx context.Context, seq int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM queue WHERE seq = ?`, seq); err != nil {
		return fmt.Errorf("failed to delete queue item: %w", err)
	}
	return nil
}

// Len returns the number of pending items.
func (r *QueueRepository) Len(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM queue`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count queue: %w", err)
	}
	return n, nil
}

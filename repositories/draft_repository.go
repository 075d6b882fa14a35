package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"catalog-admin/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DraftRecord is a persisted snapshot of a product draft's field values.
type DraftRecord struct {
	SessionID uuid.UUID           `json:"session_id"`
	OwnerID   string              `json:"owner_id"`
	ProductID string              `json:"product_id"`
	Draft     models.DraftProduct `json:"draft"`
	UpdatedAt time.Time           `json:"updated_at"`
}

type DraftRepository interface {
	Save(ctx context.Context, rec DraftRecord) error
	Delete(ctx context.Context, sessionID uuid.UUID) error
	ListByOwner(ctx context.Context, ownerID string) ([]DraftRecord, error)
}

type MemoryDraftRepository struct {
	mu      sync.RWMutex
	records map[uuid.UUID]DraftRecord
}

func NewMemoryDraftRepository() *MemoryDraftRepository {
	return &MemoryDraftRepository{records: make(map[uuid.UUID]DraftRecord)}
}

func (r *MemoryDraftRepository) Save(_ context.Context, rec DraftRecord) error {
	if rec.UpdatedAt.IsZero() {
		rec.UpdatedAt = time.Now()
	}
	rec.Draft = rec.Draft.Clone()

	r.mu.Lock()
	r.records[rec.SessionID] = rec
	r.mu.Unlock()
	return nil
}

func (r *MemoryDraftRepository) Delete(_ context.Context, sessionID uuid.UUID) error {
	r.mu.Lock()
	delete(r.records, sessionID)
	r.mu.Unlock()
	return nil
}

func (r *MemoryDraftRepository) ListByOwner(_ context.Context, ownerID string) ([]DraftRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []DraftRecord{}
	for _, rec := range r.records {
		if rec.OwnerID == ownerID {
			rec.Draft = rec.Draft.Clone()
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

type PostgresDraftRepository struct {
	db *pgxpool.Pool
}

func NewPostgresDraftRepository(db *pgxpool.Pool) *PostgresDraftRepository {
	return &PostgresDraftRepository{db: db}
}

func (r *PostgresDraftRepository) Save(ctx context.Context, rec DraftRecord) error {
	payload, err := json.Marshal(rec.Draft)
	if err != nil {
		return fmt.Errorf("encode draft: %w", err)
	}

	query := `
		INSERT INTO product_drafts (session_id, owner_id, product_id, draft, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		ON CONFLICT (session_id) DO UPDATE
		SET draft = EXCLUDED.draft, product_id = EXCLUDED.product_id, updated_at = NOW()
	`
	if _, err := r.db.Exec(ctx, query, rec.SessionID, rec.OwnerID, rec.ProductID, payload); err != nil {
		return fmt.Errorf("save draft %s: %w", rec.SessionID, err)
	}
	return nil
}

func (r *PostgresDraftRepository) Delete(ctx context.Context, sessionID uuid.UUID) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM product_drafts WHERE session_id = $1`, sessionID); err != nil {
		return fmt.Errorf("delete draft %s: %w", sessionID, err)
	}
	return nil
}

func (r *PostgresDraftRepository) ListByOwner(ctx context.Context, ownerID string) ([]DraftRecord, error) {
	query := `SELECT session_id, owner_id, product_id, draft, updated_at
	          FROM product_drafts WHERE owner_id = $1 ORDER BY updated_at DESC`

	rows, err := r.db.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list drafts: %w", err)
	}
	defer rows.Close()

	out := []DraftRecord{}
	for rows.Next() {
		var (
			rec     DraftRecord
			payload []byte
		)
		if err := rows.Scan(&rec.SessionID, &rec.OwnerID, &rec.ProductID, &payload, &rec.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan draft: %w", err)
		}
		if err := json.Unmarshal(payload, &rec.Draft); err != nil {
			return nil, fmt.Errorf("decode draft %s: %w", rec.SessionID, err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

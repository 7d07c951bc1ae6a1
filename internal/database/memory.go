package database

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"go-jobposting-collector/internal/models"
)

// MemoryRepository is a Repository for tests and local runs without Postgres.
type MemoryRepository struct {
	mu    sync.RWMutex
	byID  map[string]*models.StoredPosting
	byURL map[string]string
	now   func() time.Time
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byID:  make(map[string]*models.StoredPosting),
		byURL: make(map[string]string),
		now:   time.Now,
	}
}

func (r *MemoryRepository) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (r *MemoryRepository) FindByPostingURL(ctx context.Context, postingURL string) (*models.StoredPosting, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byURL[postingURL]
	if !ok {
		return nil, ErrNotFound
	}
	return clonePosting(r.byID[id]), nil
}

func (r *MemoryRepository) Get(ctx context.Context, id string) (*models.StoredPosting, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return clonePosting(p), nil
}

func (r *MemoryRepository) Create(ctx context.Context, rec models.JobRecord) (*models.StoredPosting, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byURL[rec.PostingURL]; exists {
		return nil, ErrDuplicate
	}
	now := r.now()
	p := &models.StoredPosting{
		ID:        uuid.NewString(),
		Record:    rec,
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.byID[p.ID] = p
	r.byURL[rec.PostingURL] = p.ID
	return clonePosting(p), nil
}

func (r *MemoryRepository) Update(ctx context.Context, id string, rec models.JobRecord) (*models.StoredPosting, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	if owner, taken := r.byURL[rec.PostingURL]; taken && owner != id {
		return nil, ErrDuplicate
	}
	delete(r.byURL, p.Record.PostingURL)
	p.Record = rec
	p.UpdatedAt = r.now()
	r.byURL[rec.PostingURL] = id
	return clonePosting(p), nil
}

func clonePosting(p *models.StoredPosting) *models.StoredPosting {
	c := *p
	if p.Record.Budget != nil {
		b := *p.Record.Budget
		c.Record.Budget = &b
	}
	return &c
}

package leads

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Repository defines the interface for lead storage
type Repository interface {
	// Insert stores a validated lead, fills in its ID and CreatedAt, and
	// returns the generated id.
	Insert(ctx context.Context, lead *Lead) (string, error)
}

// InMemoryRepository keeps leads in process memory for local runs and tests.
type InMemoryRepository struct {
	mu    sync.RWMutex
	leads map[string]*Lead
}

// NewInMemoryRepository creates a new in-memory repository
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		leads: make(map[string]*Lead),
	}
}

// Insert stores a copy of the lead.
func (r *InMemoryRepository) Insert(ctx context.Context, lead *Lead) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	lead.ID = uuid.New().String()
	lead.CreatedAt = time.Now().UTC()
	stored := *lead

	r.mu.Lock()
	r.leads[stored.ID] = &stored
	r.mu.Unlock()

	return stored.ID, nil
}

// Count returns how many leads are stored.
func (r *InMemoryRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.leads)
}

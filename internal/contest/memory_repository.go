package contest

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

type memoryRepository struct {
	mu           sync.RWMutex
	contests     map[uuid.UUID]Contest
	participants []Participant
}

// NewMemoryRepository builds an in-memory contest store for testing.
func NewMemoryRepository() Repository {
	return &memoryRepository{contests: make(map[uuid.UUID]Contest)}
}

func (r *memoryRepository) ListActive(_ context.Context, lang string) ([]Contest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Contest
	for _, c := range r.contests {
		if c.IsActive && (c.Language == lang || c.Language == LanguageAll) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *memoryRepository) ListAll(_ context.Context) ([]Contest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Contest, 0, len(r.contests))
	for _, c := range r.contests {
		out = append(out, c)
	}
	return out, nil
}

func (r *memoryRepository) Find(_ context.Context, id uuid.UUID) (Contest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.contests[id]
	if !ok {
		return Contest{}, ErrNotFound
	}
	return c, nil
}

func (r *memoryRepository) Save(_ context.Context, c Contest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.contests[c.ID] = c
	return nil
}

func (r *memoryRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.contests[id]; !ok {
		return ErrNotFound
	}
	delete(r.contests, id)
	return nil
}

func (r *memoryRepository) HasParticipant(_ context.Context, contestID uuid.UUID, userID int64) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.participants {
		if p.ContestID == contestID && p.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

func (r *memoryRepository) CreateParticipant(_ context.Context, p Participant) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.participants = append(r.participants, p)
	return nil
}

func (r *memoryRepository) ListParticipants(_ context.Context, contestID uuid.UUID) ([]ParticipantInfo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []ParticipantInfo
	for _, p := range r.participants {
		if p.ContestID == contestID {
			out = append(out, ParticipantInfo{Participant: p, Username: fmt.Sprintf("User %d", p.UserID)})
		}
	}
	return out, nil
}

package subjects

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/google/uuid"
)

// MemoryRepository is a process-local Repository used when no database is
// configured. Stored and returned subjects are copies.
type MemoryRepository struct {
	mu      sync.RWMutex
	byID    map[string]*models.Subject
	byEmail map[string]string
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byID:    make(map[string]*models.Subject),
		byEmail: make(map[string]string),
	}
}

func clone(s *models.Subject) *models.Subject {
	c := *s
	c.Roles = append([]string{}, s.Roles...)
	return &c
}

func (r *MemoryRepository) Create(_ context.Context, s *models.Subject) (*models.Subject, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byEmail[s.Email]; ok {
		return nil, common.ErrorAlreadyExists
	}

	s.ID = uuid.NewString()
	s.CreatedAt = time.Now().UTC()

	r.byID[s.ID] = clone(s)
	r.byEmail[s.Email] = s.ID

	return s, nil
}

func (r *MemoryRepository) GetByID(_ context.Context, id string) (*models.Subject, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return clone(s), nil
}

func (r *MemoryRepository) GetByEmail(_ context.Context, email string) (*models.Subject, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[email]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return clone(r.byID[id]), nil
}

func (r *MemoryRepository) UpdateSecondFactor(_ context.Context, id string, secret string, enabled bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.byID[id]
	if !ok {
		return common.ErrorNotFound
	}
	s.SecondFactorSecret = secret
	s.SecondFactorEnabled = enabled
	return nil
}

func (r *MemoryRepository) UpdateName(_ context.Context, id string, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.byID[id]
	if !ok {
		return common.ErrorNotFound
	}
	s.Name = name
	return nil
}

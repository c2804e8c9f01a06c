package repomanager

import (
	"context"

	"github.com/dmitrijs2005/gophauth/internal/server/repositories/activity"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/subjects"
)

// MemoryRepositoryManager keeps everything in process memory. Each
// repository call is atomic on its own; InTx cannot roll back.
type MemoryRepositoryManager struct {
	subjects *subjects.MemoryRepository
	activity *activity.MemoryRepository
}

func NewMemoryRepositoryManager() *MemoryRepositoryManager {
	return &MemoryRepositoryManager{
		subjects: subjects.NewMemoryRepository(),
		activity: activity.NewMemoryRepository(),
	}
}

func (m *MemoryRepositoryManager) RunMigrations(context.Context) error { return nil }

func (m *MemoryRepositoryManager) Subjects() subjects.Repository { return m.subjects }

func (m *MemoryRepositoryManager) Activity() activity.Repository { return m.activity }

func (m *MemoryRepositoryManager) InTx(ctx context.Context, fn func(ctx context.Context, m RepositoryManager) error) error {
	return fn(ctx, m)
}

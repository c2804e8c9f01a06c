package repomanager

import (
	"context"

	"github.com/dmitrijs2005/gophauth/internal/server/repositories/activity"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/subjects"
)

// RepositoryManager vends repositories for one storage backend and runs
// multi-statement work atomically through InTx.
type RepositoryManager interface {
	RunMigrations(ctx context.Context) error
	Subjects() subjects.Repository
	Activity() activity.Repository
	// InTx runs fn with a manager whose repositories share one transaction.
	InTx(ctx context.Context, fn func(ctx context.Context, m RepositoryManager) error) error
}

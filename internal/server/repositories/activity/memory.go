package activity

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/server/models"
)

type MemoryRepository struct {
	mu     sync.Mutex
	counts map[string]map[time.Time]int
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{counts: make(map[string]map[time.Time]int)}
}

func (r *MemoryRepository) Record(_ context.Context, subjectID string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	days, ok := r.counts[subjectID]
	if !ok {
		days = make(map[time.Time]int)
		r.counts[subjectID] = days
	}
	days[Day(at)]++
	return nil
}

func (r *MemoryRepository) List(_ context.Context, subjectID string) ([]models.LoginActivity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	result := []models.LoginActivity{}
	for day, n := range r.counts[subjectID] {
		result = append(result, models.LoginActivity{SubjectID: subjectID, Day: day, Count: n})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Day.Before(result[j].Day) })

	return result, nil
}

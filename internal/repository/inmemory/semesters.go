package inmemory

import (
	"context"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	semesterdomain "member-tracker-go/internal/domain/semester"
)

const listKey = "all"

// SemesterCache fronts a semester repository with expiring LRU caches.
// Semesters are reference data, so entries are only dropped on create or
// expiry.
type SemesterCache struct {
	next  semesterdomain.Repository
	byID  *expirable.LRU[uint, semesterdomain.Semester]
	lists *expirable.LRU[string, []semesterdomain.Semester]

	// generation counts creates. A list read while it moved is not cached.
	mu         sync.Mutex
	generation uint64
}

var _ semesterdomain.Repository = (*SemesterCache)(nil)

func NewSemesterCache(next semesterdomain.Repository, size int, ttl time.Duration) *SemesterCache {
	if size <= 0 {
		size = 64
	}
	return &SemesterCache{
		next:  next,
		byID:  expirable.NewLRU[uint, semesterdomain.Semester](size, nil, ttl),
		lists: expirable.NewLRU[string, []semesterdomain.Semester](1, nil, ttl),
	}
}

func (c *SemesterCache) ListSemesters(ctx context.Context) ([]semesterdomain.Semester, error) {
	if cached, ok := c.lists.Get(listKey); ok {
		return cloneSemesters(cached), nil
	}

	c.mu.Lock()
	generation := c.generation
	c.mu.Unlock()

	semesters, err := c.next.ListSemesters(ctx)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if generation != c.generation {
		return semesters, nil
	}
	c.lists.Add(listKey, cloneSemesters(semesters))
	for _, s := range semesters {
		c.byID.Add(s.ID, s)
	}
	return semesters, nil
}

func (c *SemesterCache) GetSemester(ctx context.Context, id uint) (*semesterdomain.Semester, error) {
	if cached, ok := c.byID.Get(id); ok {
		return &cached, nil
	}

	s, err := c.next.GetSemester(ctx, id)
	if err != nil {
		return nil, err
	}
	c.byID.Add(s.ID, *s)
	return s, nil
}

func (c *SemesterCache) CreateSemester(ctx context.Context, s *semesterdomain.Semester) error {
	if err := c.next.CreateSemester(ctx, s); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generation++
	c.lists.Purge()
	c.byID.Add(s.ID, *s)
	return nil
}

func (c *SemesterCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generation++
	c.lists.Purge()
	c.byID.Purge()
}

func cloneSemesters(semesters []semesterdomain.Semester) []semesterdomain.Semester {
	if semesters == nil {
		return nil
	}
	out := make([]semesterdomain.Semester, len(semesters))
	copy(out, semesters)
	return out
}

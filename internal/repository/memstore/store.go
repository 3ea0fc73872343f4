// Package memstore is an in-process implementation of the repository interfaces.
// It mirrors the Postgres schema's unique constraints, foreign keys and delete
// rules, and is used when no database DSN is configured and in tests.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/insurecare/feedback-portal/internal/domain"
	"github.com/insurecare/feedback-portal/internal/repository"
)

const (
	defaultLimit = 10
	maxLimit     = 100
)

// Store holds every table behind one lock.
type Store struct {
	mu         sync.RWMutex
	now        func() time.Time
	seq        map[string]int64
	users      map[int64]domain.User
	agents     map[int64]domain.Agent
	employees  map[int64]domain.Employee
	qrCodes    map[string]domain.ProfileKind
	questions  map[int64]domain.Question
	ratings    map[int64]domain.Rating
	complaints map[int64]domain.Complaint
}

// New returns an empty store.
func New() *Store {
	return &Store{
		now:        time.Now,
		seq:        make(map[string]int64),
		users:      make(map[int64]domain.User),
		agents:     make(map[int64]domain.Agent),
		employees:  make(map[int64]domain.Employee),
		qrCodes:    make(map[string]domain.ProfileKind),
		questions:  make(map[int64]domain.Question),
		ratings:    make(map[int64]domain.Rating),
		complaints: make(map[int64]domain.Complaint),
	}
}

// Users returns the user repository view.
func (s *Store) Users() repository.UserRepository { return &userRepo{s} }

// Agents returns the agent repository view.
func (s *Store) Agents() repository.AgentRepository { return &agentRepo{s} }

// Employees returns the employee repository view.
func (s *Store) Employees() repository.EmployeeRepository { return &employeeRepo{s} }

// Questions returns the question repository view.
func (s *Store) Questions() repository.QuestionRepository { return &questionRepo{s} }

// Ratings returns the rating repository view.
func (s *Store) Ratings() repository.RatingRepository { return &ratingRepo{s} }

// Complaints returns the complaint repository view.
func (s *Store) Complaints() repository.ComplaintRepository { return &complaintRepo{s} }

// Stats returns the stats repository view.
func (s *Store) Stats() repository.StatsRepository { return &statsRepo{s} }

// Ping always succeeds.
func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) nextID(table string) int64 {
	s.seq[table]++
	return s.seq[table]
}

// newest sorts by created_at DESC then id DESC, matching the SQL listings.
func newest[T any](items []T, created func(T) time.Time, id func(T) int64) {
	sort.Slice(items, func(i, j int) bool {
		ci, cj := created(items[i]), created(items[j])
		if !ci.Equal(cj) {
			return ci.After(cj)
		}
		return id(items[i]) > id(items[j])
	})
}

func paginate[T any](items []T, limit, offset int) []T {
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return nil
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}

func matches(term string, values ...string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return true
	}
	for _, v := range values {
		if strings.Contains(strings.ToLower(v), term) {
			return true
		}
	}
	return false
}

func sameInt64(a, b *int64) bool {
	return a != nil && b != nil && *a == *b
}

func cloneInt64(v *int64) *int64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func errNoRows() error { return pgx.ErrNoRows }

package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	apperr "github.com/Dan9191/money-marathon/internal/errors"
	"github.com/Dan9191/money-marathon/internal/models"
	"github.com/google/uuid"
)

var _ Store = (*MemoryStore)(nil)

// MemoryStore is an in-process Store. Transactions are serialized by a single
// lock and applied to a copy of the state that replaces it on commit.
type MemoryStore struct {
	mu    sync.RWMutex
	state memState
}

type memState struct {
	users   map[string]models.User
	emails  map[string]string
	plans   map[string]models.Plan
	entries map[string][]models.DayEntry
	last    time.Time
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{state: memState{
		users:   map[string]models.User{},
		emails:  map[string]string{},
		plans:   map[string]models.Plan{},
		entries: map[string][]models.DayEntry{},
	}}
}

func (s memState) clone() memState {
	out := memState{
		users:   make(map[string]models.User, len(s.users)),
		emails:  make(map[string]string, len(s.emails)),
		plans:   make(map[string]models.Plan, len(s.plans)),
		entries: make(map[string][]models.DayEntry, len(s.entries)),
		last:    s.last,
	}
	for k, v := range s.users {
		out.users[k] = v
	}
	for k, v := range s.emails {
		out.emails[k] = v
	}
	for k, v := range s.plans {
		out.plans[k] = v
	}
	for k, v := range s.entries {
		out.entries[k] = append([]models.DayEntry(nil), v...)
	}
	return out
}

// now returns a creation timestamp strictly after the previous one.
func (s *memState) now() time.Time {
	t := time.Now().UTC()
	if !t.After(s.last) {
		t = s.last.Add(time.Nanosecond)
	}
	s.last = t
	return t
}

func (m *MemoryStore) InTx(ctx context.Context, fn func(tx Tx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	work := m.state.clone()
	if err := fn(&memTx{state: &work}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	m.state = work
	return nil
}

func (m *MemoryStore) CreateUser(ctx context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := strings.ToLower(user.Email)
	if _, exists := m.state.emails[key]; exists {
		return fmt.Errorf("email %s already registered: %w", user.Email, apperr.ErrConflict)
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	user.CreatedAt = m.state.now()
	m.state.users[user.ID] = *user
	m.state.emails[key] = user.ID
	return nil
}

func (m *MemoryStore) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.state.emails[strings.ToLower(email)]
	if !ok {
		return nil, apperr.NotFound("user", email)
	}
	u := m.state.users[id]
	return &u, nil
}

func (m *MemoryStore) FindUserByID(ctx context.Context, id string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.state.users[id]
	if !ok {
		return nil, apperr.NotFound("user", id)
	}
	return &u, nil
}

func (m *MemoryStore) FindPlan(ctx context.Context, id string) (*models.Plan, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.state.plans[id]
	if !ok {
		return nil, apperr.NotFound("plan", id)
	}
	return &p, nil
}

func (m *MemoryStore) ListPlansByUser(ctx context.Context, userID string) ([]models.Plan, error) {
	plans := m.filterPlans(func(p models.Plan) bool { return p.UserID == userID })
	sort.SliceStable(plans, func(i, j int) bool { return plans[i].CreatedAt.After(plans[j].CreatedAt) })
	return plans, nil
}

func (m *MemoryStore) ListPlansByStatus(ctx context.Context, status models.PlanStatus) ([]models.Plan, error) {
	plans := m.filterPlans(func(p models.Plan) bool { return p.Status == status })
	sort.SliceStable(plans, func(i, j int) bool { return plans[i].CreatedAt.Before(plans[j].CreatedAt) })
	return plans, nil
}

func (m *MemoryStore) filterPlans(keep func(models.Plan) bool) []models.Plan {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []models.Plan
	for _, p := range m.state.plans {
		if keep(p) {
			out = append(out, p)
		}
	}
	return out
}

func (m *MemoryStore) LoadDayEntries(ctx context.Context, planID string) ([]models.DayEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]models.DayEntry(nil), m.state.entries[planID]...), nil
}

func (m *MemoryStore) DeletePlan(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.state.plans[id]; !ok {
		return apperr.NotFound("plan", id)
	}
	delete(m.state.plans, id)
	delete(m.state.entries, id)
	return nil
}

type memTx struct {
	state *memState
}

func (t *memTx) InsertPlan(ctx context.Context, plan *models.Plan) error {
	if plan.ID == "" {
		plan.ID = uuid.NewString()
	}
	if _, ok := t.state.users[plan.UserID]; !ok {
		return fmt.Errorf("failed to create plan: unknown user %s", plan.UserID)
	}
	plan.CreatedAt = t.state.now()
	t.state.plans[plan.ID] = *plan
	return nil
}

func (t *memTx) LockPlan(ctx context.Context, id string) (*models.Plan, error) {
	p, ok := t.state.plans[id]
	if !ok {
		return nil, apperr.NotFound("plan", id)
	}
	return &p, nil
}

func (t *memTx) LoadDayEntries(ctx context.Context, planID string) ([]models.DayEntry, error) {
	return append([]models.DayEntry(nil), t.state.entries[planID]...), nil
}

func (t *memTx) InsertDayEntries(ctx context.Context, entries []models.DayEntry) ([]models.DayEntry, error) {
	stored := make([]models.DayEntry, len(entries))
	for i, e := range entries {
		if _, ok := t.state.plans[e.PlanID]; !ok {
			return nil, fmt.Errorf("failed to copy day %d: unknown plan %s", e.Day, e.PlanID)
		}
		for _, existing := range t.state.entries[e.PlanID] {
			if existing.Day == e.Day {
				return nil, apperr.Inconsistent("duplicate day entries for plan %s", e.PlanID)
			}
		}
		if e.ID == "" {
			e.ID = uuid.NewString()
		}
		t.state.entries[e.PlanID] = append(t.state.entries[e.PlanID], e)
		stored[i] = e
	}
	for planID, list := range t.state.entries {
		sort.Slice(list, func(i, j int) bool { return list[i].Day < list[j].Day })
		t.state.entries[planID] = list
	}
	return stored, nil
}

func (t *memTx) DeleteDayEntriesFromDay(ctx context.Context, planID string, fromDay int) (int64, error) {
	var kept []models.DayEntry
	var n int64
	for _, e := range t.state.entries[planID] {
		if e.Day >= fromDay {
			n++
			continue
		}
		kept = append(kept, e)
	}
	t.state.entries[planID] = kept
	return n, nil
}

func (t *memTx) UpdateDayResult(ctx context.Context, planID string, day int, result models.DayResult) error {
	list := t.state.entries[planID]
	for i := range list {
		if list[i].Day == day {
			list[i].Result = result
			return nil
		}
	}
	return apperr.NotFound("day entry", fmt.Sprintf("%s/%d", planID, day))
}

func (t *memTx) UpdatePlanStatus(ctx context.Context, planID string, status models.PlanStatus) error {
	p, ok := t.state.plans[planID]
	if !ok {
		return apperr.NotFound("plan", planID)
	}
	p.Status = status
	t.state.plans[planID] = p
	return nil
}

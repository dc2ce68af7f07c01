package repository

import (
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"babymind/internal/models"
)

// MemoryEntityStore keeps entities in process memory, indexed by baby
type MemoryEntityStore struct {
	mu     sync.RWMutex
	byBaby map[uuid.UUID]map[uuid.UUID]models.Entity
	ids    map[uuid.UUID]uuid.UUID
}

// NewMemoryEntityStore creates an empty in-memory entity store
func NewMemoryEntityStore() *MemoryEntityStore {
	return &MemoryEntityStore{
		byBaby: make(map[uuid.UUID]map[uuid.UUID]models.Entity),
		ids:    make(map[uuid.UUID]uuid.UUID),
	}
}

// Create stores a copy of the entity
func (s *MemoryEntityStore) Create(e *models.Entity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.ids[e.ID]; exists {
		return ErrDuplicateID
	}
	if s.byBaby[e.BabyID] == nil {
		s.byBaby[e.BabyID] = make(map[uuid.UUID]models.Entity)
	}
	s.byBaby[e.BabyID][e.ID] = cloneEntity(*e)
	s.ids[e.ID] = e.BabyID
	return nil
}

// Get returns a copy of the entity, or nil when babyID does not own id
func (s *MemoryEntityStore) Get(babyID, id uuid.UUID) (*models.Entity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.byBaby[babyID][id]
	if !ok {
		return nil, nil
	}
	c := cloneEntity(e)
	return &c, nil
}

// Update replaces a stored entity. Unknown entities are ignored.
func (s *MemoryEntityStore) Update(e *models.Entity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byBaby[e.BabyID][e.ID]; !ok {
		return nil
	}
	s.byBaby[e.BabyID][e.ID] = cloneEntity(*e)
	return nil
}

// Delete removes an entity. Unknown entities are ignored.
func (s *MemoryEntityStore) Delete(babyID, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byBaby[babyID][id]; !ok {
		return nil
	}
	delete(s.byBaby[babyID], id)
	delete(s.ids, id)
	return nil
}

// ListByBaby returns copies of a baby's entities ordered by schedule
func (s *MemoryEntityStore) ListByBaby(babyID uuid.UUID) ([]models.Entity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Entity, 0, len(s.byBaby[babyID]))
	for _, e := range s.byBaby[babyID] {
		out = append(out, cloneEntity(e))
	}
	sortEntities(out)
	return out, nil
}

// ListDueReminders returns pending reminders of every baby due at or before at
func (s *MemoryEntityStore) ListDueReminders(at time.Time) ([]models.Entity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.Entity
	for _, entities := range s.byBaby {
		for _, e := range entities {
			if e.Kind != models.KindReminder || e.IsCompleted || e.NotifiedAt != nil {
				continue
			}
			if e.ScheduledAt.After(at) {
				continue
			}
			out = append(out, cloneEntity(e))
		}
	}
	sortEntities(out)
	return out, nil
}

// DeleteBabyEntities drops every entity of a baby
func (s *MemoryEntityStore) DeleteBabyEntities(babyID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id := range s.byBaby[babyID] {
		delete(s.ids, id)
	}
	delete(s.byBaby, babyID)
}

func sortEntities(entities []models.Entity) {
	slices.SortFunc(entities, func(a, b models.Entity) int {
		if c := a.ScheduledAt.Compare(b.ScheduledAt); c != 0 {
			return c
		}
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return slices.Compare(a.ID[:], b.ID[:])
	})
}

// cloneEntity copies pointer fields so callers cannot mutate stored state
func cloneEntity(e models.Entity) models.Entity {
	if e.CompletedAt != nil {
		t := *e.CompletedAt
		e.CompletedAt = &t
	}
	if e.NotifiedAt != nil {
		t := *e.NotifiedAt
		e.NotifiedAt = &t
	}
	return e
}

// MemoryBabyStore keeps baby profiles in process memory
type MemoryBabyStore struct {
	mu       sync.RWMutex
	babies   map[uuid.UUID]models.Baby
	entities *MemoryEntityStore
}

// NewMemoryBabyStore creates an empty baby store. When entities is not nil,
// deleting a baby also drops its entities.
func NewMemoryBabyStore(entities *MemoryEntityStore) *MemoryBabyStore {
	return &MemoryBabyStore{
		babies:   make(map[uuid.UUID]models.Baby),
		entities: entities,
	}
}

func (s *MemoryBabyStore) CreateBaby(baby *models.Baby) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.babies[baby.ID]; exists {
		return ErrDuplicateID
	}
	s.babies[baby.ID] = *baby
	return nil
}

func (s *MemoryBabyStore) GetBabyByID(id uuid.UUID) (*models.Baby, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	baby, ok := s.babies[id]
	if !ok {
		return nil, nil
	}
	return &baby, nil
}

func (s *MemoryBabyStore) ListBabies() ([]models.Baby, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Baby, 0, len(s.babies))
	for _, b := range s.babies {
		out = append(out, b)
	}
	slices.SortFunc(out, func(a, b models.Baby) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return out, nil
}

func (s *MemoryBabyStore) UpdateBaby(baby *models.Baby) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.babies[baby.ID]; ok {
		s.babies[baby.ID] = *baby
	}
	return nil
}

func (s *MemoryBabyStore) DeleteBaby(id uuid.UUID) error {
	s.mu.Lock()
	delete(s.babies, id)
	s.mu.Unlock()

	if s.entities != nil {
		s.entities.DeleteBabyEntities(id)
	}
	return nil
}

package service

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"babymind/internal/events"
	"babymind/internal/models"
	"babymind/internal/repository"
	"babymind/internal/upcoming"
)

// Tracker owns completion state for every tracked entity. All mutations and
// aggregate reads for one baby run under that baby's lock.
type Tracker struct {
	store    repository.EntityStore
	bus      *events.Bus
	progress *ProgressCalculator
	logger   *zap.Logger
	locks    sync.Map
}

// NewTracker creates a new completion tracker
func NewTracker(store repository.EntityStore, bus *events.Bus, progress *ProgressCalculator, logger *zap.Logger) *Tracker {
	if logger == nil {
		logger = zap.NewNop()
	}
	if progress == nil {
		progress = NewProgressCalculator(0)
	}
	return &Tracker{store: store, bus: bus, progress: progress, logger: logger}
}

// lockBaby acquires the baby's mutex and returns its release func
func (t *Tracker) lockBaby(babyID uuid.UUID) func() {
	m, _ := t.locks.LoadOrStore(babyID, &sync.Mutex{})
	mu := m.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// Add validates and stores a new entity
func (t *Tracker) Add(entity *models.Entity) error {
	if err := entity.Validate(); err != nil {
		return err
	}
	defer t.lockBaby(entity.BabyID)()

	if err := t.store.Create(entity); err != nil {
		return fmt.Errorf("failed to create entity: %w", err)
	}
	t.logger.Debug("entity added",
		zap.Stringer("baby_id", entity.BabyID),
		zap.Stringer("entity_id", entity.ID),
		zap.String("kind", string(entity.Kind)))
	return nil
}

// AddMissing stores the entities built by build from the baby's current
// entities. Building and storing happen under one lock so concurrent callers
// cannot both add the same entity.
func (t *Tracker) AddMissing(babyID uuid.UUID, build func(existing []models.Entity) ([]models.Entity, error)) ([]models.Entity, error) {
	defer t.lockBaby(babyID)()

	existing, err := t.store.ListByBaby(babyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list entities: %w", err)
	}
	created, err := build(existing)
	if err != nil {
		return nil, err
	}
	for i := range created {
		if err := created[i].Validate(); err != nil {
			return nil, err
		}
		if err := t.store.Create(&created[i]); err != nil {
			return nil, fmt.Errorf("failed to create entity: %w", err)
		}
	}
	return created, nil
}

// Complete marks an entity completed. Completing an already completed entity
// changes nothing. It returns the entity, or nil when the baby has no such entity.
func (t *Tracker) Complete(babyID, entityID uuid.UUID, now time.Time) (*models.Entity, error) {
	defer t.lockBaby(babyID)()

	entity, err := t.store.Get(babyID, entityID)
	if err != nil {
		return nil, fmt.Errorf("failed to get entity: %w", err)
	}
	if entity == nil || entity.IsCompleted {
		return entity, nil
	}
	return entity, t.complete(entity, now)
}

// Toggle flips an entity's completion state and returns the updated entity,
// or nil when the baby has no such entity.
func (t *Tracker) Toggle(babyID, entityID uuid.UUID, now time.Time) (*models.Entity, error) {
	defer t.lockBaby(babyID)()

	entity, err := t.store.Get(babyID, entityID)
	if err != nil {
		return nil, fmt.Errorf("failed to get entity: %w", err)
	}
	if entity == nil {
		return nil, nil
	}

	if !entity.IsCompleted {
		return entity, t.complete(entity, now)
	}

	entity.MarkIncomplete()
	if err := t.store.Update(entity); err != nil {
		return nil, fmt.Errorf("failed to update entity: %w", err)
	}
	return entity, nil
}

// complete must be called with the baby's lock held
func (t *Tracker) complete(entity *models.Entity, now time.Time) error {
	// Achievements can only be unlocked by a task earning its points for the
	// first time, so re-completing a toggled task never repeats an unlock.
	var before models.ProgressAggregate
	info, _ := entity.Kind.Info()
	if info.AwardsPoints && !entity.PointsAwarded {
		all, err := t.store.ListByBaby(entity.BabyID)
		if err != nil {
			return fmt.Errorf("failed to list entities: %w", err)
		}
		before = t.progress.Compute(entity.BabyID, all, now)
	}

	awarded := entity.MarkCompleted(now)
	if err := t.store.Update(entity); err != nil {
		return fmt.Errorf("failed to update entity: %w", err)
	}

	subject := entity.BabyID.String()
	if entity.Kind == models.KindTask {
		t.publish(events.TopicTaskCompleted, subject, events.TaskCompleted{
			BabyID:      entity.BabyID,
			EntityID:    entity.ID,
			Title:       entity.Title,
			CompletedAt: now,
		})
	}
	if !awarded {
		return nil
	}
	t.publish(events.TopicPointsAwarded, subject, events.PointsAwarded{
		BabyID:   entity.BabyID,
		EntityID: entity.ID,
		Points:   entity.Points,
	})

	all, err := t.store.ListByBaby(entity.BabyID)
	if err != nil {
		return fmt.Errorf("failed to list entities: %w", err)
	}
	after := t.progress.Compute(entity.BabyID, all, now)
	for _, a := range after.Achievements {
		if before.HasAchievement(a.ID) {
			continue
		}
		t.logger.Info("achievement unlocked",
			zap.Stringer("baby_id", entity.BabyID),
			zap.String("achievement", a.ID))
		t.publish(events.TopicAchievementUnlocked, subject, events.AchievementUnlocked{
			BabyID:        entity.BabyID,
			AchievementID: a.ID,
			Label:         a.Label,
		})
	}
	return nil
}

func (t *Tracker) publish(topic, subject string, data any) {
	if t.bus == nil {
		return
	}
	if err := t.bus.Publish(topic, subject, data); err != nil {
		t.logger.Warn("failed to publish event", zap.String("topic", topic), zap.Error(err))
	}
}

// Delete permanently removes an entity. Unknown ids are ignored.
func (t *Tracker) Delete(babyID, entityID uuid.UUID) error {
	defer t.lockBaby(babyID)()

	if err := t.store.Delete(babyID, entityID); err != nil {
		return fmt.Errorf("failed to delete entity: %w", err)
	}
	return nil
}

// Filter returns the baby's entities matching pred. A nil pred matches all.
func (t *Tracker) Filter(babyID uuid.UUID, pred func(models.Entity) bool) ([]models.Entity, error) {
	defer t.lockBaby(babyID)()

	all, err := t.store.ListByBaby(babyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list entities: %w", err)
	}
	if pred == nil {
		return all, nil
	}

	matched := make([]models.Entity, 0, len(all))
	for _, e := range all {
		if pred(e) {
			matched = append(matched, e)
		}
	}
	return matched, nil
}

// Recompute derives the baby's progress aggregate from a consistent snapshot
func (t *Tracker) Recompute(babyID uuid.UUID, now time.Time) (models.ProgressAggregate, error) {
	defer t.lockBaby(babyID)()

	all, err := t.store.ListByBaby(babyID)
	if err != nil {
		return models.ProgressAggregate{}, fmt.Errorf("failed to list entities: %w", err)
	}
	return t.progress.Compute(babyID, all, now), nil
}

// Upcoming returns the next n pending entities of a kind scheduled at or after now
func (t *Tracker) Upcoming(babyID uuid.UUID, kind models.EntityKind, now time.Time, n int) ([]models.Entity, error) {
	list, err := t.Filter(babyID, func(e models.Entity) bool { return e.Kind == kind })
	if err != nil {
		return nil, err
	}
	return byScheduledAt.Upcoming(list, now, n), nil
}

var byScheduledAt = upcoming.ByTime(
	func(e models.Entity) time.Time { return e.ScheduledAt },
	func(e models.Entity) bool { return e.IsCompleted },
)

// OfKind matches entities of the given kind
func OfKind(kind models.EntityKind) func(models.Entity) bool {
	return func(e models.Entity) bool { return e.Kind == kind }
}

package service

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"babymind/internal/events"
	"babymind/internal/models"
	"babymind/internal/repository"
)

// ReminderService publishes reminder.due events for reminders whose time has come
type ReminderService struct {
	store   repository.EntityStore
	tracker *Tracker
	bus     *events.Bus
	logger  *zap.Logger
}

// NewReminderService creates a new reminder service
func NewReminderService(store repository.EntityStore, tracker *Tracker, bus *events.Bus, logger *zap.Logger) *ReminderService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReminderService{store: store, tracker: tracker, bus: bus, logger: logger}
}

// DispatchDue notifies every pending reminder scheduled at or before now and
// returns how many fired. Each delivered reminder fires once; a reminder
// whose event was dropped stays pending for the next scan.
func (s *ReminderService) DispatchDue(now time.Time) (int, error) {
	due, err := s.store.ListDueReminders(now)
	if err != nil {
		return 0, fmt.Errorf("failed to list due reminders: %w", err)
	}

	fired := 0
	for _, r := range due {
		reminder, err := s.tracker.markNotified(r.BabyID, r.ID, now)
		if err != nil {
			s.logger.Error("failed to mark reminder notified", zap.Stringer("entity_id", r.ID), zap.Error(err))
			continue
		}
		if reminder == nil {
			continue
		}

		if s.bus != nil {
			err = s.bus.Publish(events.TopicReminderDue, reminder.BabyID.String(), events.ReminderDue{
				BabyID:      reminder.BabyID,
				EntityID:    reminder.ID,
				Title:       reminder.Title,
				Notes:       reminder.Notes,
				ScheduledAt: reminder.ScheduledAt,
			})
			if err != nil {
				// Undelivered reminders fire again on the next scan
				s.logger.Warn("failed to publish reminder", zap.Stringer("entity_id", reminder.ID), zap.Error(err))
				if err := s.tracker.clearNotified(reminder.BabyID, reminder.ID); err != nil {
					s.logger.Error("failed to reset reminder", zap.Stringer("entity_id", reminder.ID), zap.Error(err))
				}
				continue
			}
		}

		fired++
		s.logger.Info("reminder due",
			zap.Stringer("baby_id", reminder.BabyID),
			zap.String("title", reminder.Title),
			zap.Time("scheduled_at", reminder.ScheduledAt))
	}
	return fired, nil
}

// markNotified stamps a pending reminder under the baby's lock. It returns nil
// when the reminder is gone, completed or already notified.
func (t *Tracker) markNotified(babyID, entityID uuid.UUID, now time.Time) (*models.Entity, error) {
	defer t.lockBaby(babyID)()

	entity, err := t.store.Get(babyID, entityID)
	if err != nil {
		return nil, fmt.Errorf("failed to get entity: %w", err)
	}
	if entity == nil || entity.IsCompleted || entity.NotifiedAt != nil {
		return nil, nil
	}

	stamp := now
	entity.NotifiedAt = &stamp
	if err := t.store.Update(entity); err != nil {
		return nil, fmt.Errorf("failed to update entity: %w", err)
	}
	return entity, nil
}

// clearNotified undoes markNotified. Only the caller whose markNotified
// succeeded may call it.
func (t *Tracker) clearNotified(babyID, entityID uuid.UUID) error {
	defer t.lockBaby(babyID)()

	entity, err := t.store.Get(babyID, entityID)
	if err != nil {
		return fmt.Errorf("failed to get entity: %w", err)
	}
	if entity == nil || entity.NotifiedAt == nil {
		return nil
	}

	entity.NotifiedAt = nil
	if err := t.store.Update(entity); err != nil {
		return fmt.Errorf("failed to update entity: %w", err)
	}
	return nil
}

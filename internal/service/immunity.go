package service

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"babymind/internal/age"
	"babymind/internal/models"
	"babymind/internal/rules"
)

// ImmunityService turns the vaccination rule table into dose entities
type ImmunityService struct {
	babies  *BabyService
	tracker *Tracker
	catalog *rules.Catalog
}

// NewImmunityService creates a new immunity service
func NewImmunityService(babies *BabyService, tracker *Tracker, catalog *rules.Catalog) *ImmunityService {
	return &ImmunityService{babies: babies, tracker: tracker, catalog: catalog}
}

// Schedule lists one dose entity per dose in the vaccination table, due on
// the day the baby reaches the rule's minimum age
func (s *ImmunityService) Schedule(baby models.Baby, now time.Time) ([]models.Entity, error) {
	table, err := s.catalog.Table(rules.DomainVaccination)
	if err != nil {
		return nil, err
	}

	birth := day(baby.BirthDate, baby.BirthDate.Location())
	var doses []models.Entity
	for _, rule := range table.Rules() {
		due := age.AddMonths(birth, rule.MinAgeMonths)
		for _, title := range rule.Bundle.Doses {
			dose := models.NewEntity(baby.ID, models.KindVaccinationDose, title, due, now)
			dose.Category = rule.Bundle.Name
			dose.Priority = models.PriorityHigh
			doses = append(doses, dose)
		}
	}
	return doses, nil
}

// EnsureSchedule stores the doses the baby does not have yet. Doses are
// matched by title so it is safe to call repeatedly.
func (s *ImmunityService) EnsureSchedule(babyID uuid.UUID, now time.Time) ([]models.Entity, error) {
	baby, err := s.babies.Get(babyID)
	if err != nil {
		return nil, err
	}

	created, err := s.tracker.AddMissing(babyID, func(existing []models.Entity) ([]models.Entity, error) {
		have := make(map[string]bool)
		for _, e := range existing {
			if e.Kind == models.KindVaccinationDose {
				have[e.Title] = true
			}
		}

		schedule, err := s.Schedule(*baby, now)
		if err != nil {
			return nil, err
		}
		var missing []models.Entity
		for _, dose := range schedule {
			if !have[dose.Title] {
				have[dose.Title] = true
				missing = append(missing, dose)
			}
		}
		return missing, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to store vaccination schedule: %w", err)
	}
	return created, nil
}

// Upcoming returns the next n doses not yet given, due today or later
func (s *ImmunityService) Upcoming(babyID uuid.UUID, now time.Time, n int) ([]models.Entity, error) {
	if _, err := s.EnsureSchedule(babyID, now); err != nil {
		return nil, err
	}
	doses, err := s.tracker.Filter(babyID, OfKind(models.KindVaccinationDose))
	if err != nil {
		return nil, err
	}
	return byScheduledAt.Upcoming(doses, day(now, now.Location()), n), nil
}

// Overdue returns doses not yet given whose due day has passed, oldest first
func (s *ImmunityService) Overdue(babyID uuid.UUID, now time.Time) ([]models.Entity, error) {
	if _, err := s.EnsureSchedule(babyID, now); err != nil {
		return nil, err
	}
	today := day(now, now.Location())
	return s.tracker.Filter(babyID, func(e models.Entity) bool {
		return e.Kind == models.KindVaccinationDose && !e.IsCompleted && e.ScheduledAt.Before(today)
	})
}

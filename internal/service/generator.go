package service

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"babymind/internal/age"
	"babymind/internal/models"
	"babymind/internal/rules"
)

// DailyTaskGenerator turns the tasks rule table into concrete daily tasks
type DailyTaskGenerator struct {
	catalog *rules.Catalog
}

// NewDailyTaskGenerator creates a generator backed by catalog
func NewDailyTaskGenerator(catalog *rules.Catalog) *DailyTaskGenerator {
	return &DailyTaskGenerator{catalog: catalog}
}

// GenerateDailyTasks returns the tasks to add for baby on today. A template is
// skipped when the baby already has a task of its category scheduled on the
// same day, so calling it again with the result appended yields nothing.
func (g *DailyTaskGenerator) GenerateDailyTasks(baby models.Baby, existing []models.Entity, today time.Time) ([]models.Entity, error) {
	rule, err := g.catalog.Resolve(rules.DomainTasks, age.InMonths(baby.BirthDate, today))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve daily tasks: %w", err)
	}

	covered := make(map[string]bool)
	for _, e := range existing {
		if e.BabyID == baby.ID && e.Kind == models.KindTask && models.SameDay(today, e.ScheduledAt) {
			covered[e.Category] = true
		}
	}

	start := day(today, today.Location())
	var tasks []models.Entity
	for _, tmpl := range rule.Bundle.Tasks {
		category := string(tmpl.Category)
		if covered[category] {
			continue
		}
		covered[category] = true

		task := models.NewEntity(baby.ID, models.KindTask, tmpl.Title, start, today)
		task.Category = category
		task.Notes = tmpl.Description
		task.Priority = tmpl.Priority
		if task.Priority == "" {
			task.Priority = models.PriorityMedium
		}
		task.Points = tmpl.Points
		if task.Points == 0 {
			info, _ := tmpl.Category.Info()
			task.Points = info.DefaultPoints
		}
		tasks = append(tasks, task)
	}
	return tasks, nil
}

// TaskService generates and stores each baby's daily tasks
type TaskService struct {
	babies    *BabyService
	tracker   *Tracker
	generator *DailyTaskGenerator
	logger    *zap.Logger
}

// NewTaskService creates a new task service
func NewTaskService(babies *BabyService, tracker *Tracker, generator *DailyTaskGenerator, logger *zap.Logger) *TaskService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TaskService{babies: babies, tracker: tracker, generator: generator, logger: logger}
}

// GenerateAndStore adds today's missing tasks for one baby and returns them
func (s *TaskService) GenerateAndStore(babyID uuid.UUID, today time.Time) ([]models.Entity, error) {
	baby, err := s.babies.Get(babyID)
	if err != nil {
		return nil, err
	}

	created, err := s.tracker.AddMissing(babyID, func(existing []models.Entity) ([]models.Entity, error) {
		return s.generator.GenerateDailyTasks(*baby, existing, today)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to store daily tasks: %w", err)
	}
	s.logger.Debug("daily tasks generated", zap.Stringer("baby_id", babyID), zap.Int("count", len(created)))
	return created, nil
}

// GenerateForAll runs GenerateAndStore for every baby. It keeps going past
// individual failures and returns the number of tasks created.
func (s *TaskService) GenerateForAll(today time.Time) (int, error) {
	babies, err := s.babies.List()
	if err != nil {
		return 0, err
	}

	total := 0
	for _, baby := range babies {
		created, err := s.GenerateAndStore(baby.ID, today)
		if err != nil {
			s.logger.Error("daily task generation failed", zap.Stringer("baby_id", baby.ID), zap.Error(err))
			continue
		}
		total += len(created)
	}
	return total, nil
}

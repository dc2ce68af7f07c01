package service

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"babymind/internal/models"
)

func TestGenerateDailyTasksForAge(t *testing.T) {
	gen := NewDailyTaskGenerator(newFixture(t).catalog)

	tests := []struct {
		name      string
		ageMonths int
		wantTitle string
	}{
		{"newborn", 0, "Log today's feeds"},
		{"infant", 8, "Offer a new food"},
		{"toddler", 30, "Family meal"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			baby := models.Baby{ID: uuid.New(), Name: "Mia", BirthDate: now.AddDate(0, -tt.ageMonths, 0)}
			tasks, err := gen.GenerateDailyTasks(baby, nil, now)
			require.NoError(t, err)
			require.Len(t, tasks, 4)
			assert.Equal(t, tt.wantTitle, tasks[0].Title)

			for _, task := range tasks {
				assert.Equal(t, baby.ID, task.BabyID)
				assert.Equal(t, models.KindTask, task.Kind)
				assert.True(t, models.SameDay(now, task.ScheduledAt))
				assert.Positive(t, task.Points)
				assert.NotEmpty(t, task.Priority)
			}
		})
	}
}

func TestGenerateDailyTasksIsIdempotent(t *testing.T) {
	gen := NewDailyTaskGenerator(newFixture(t).catalog)
	baby := models.Baby{ID: uuid.New(), Name: "Mia", BirthDate: now.AddDate(0, -8, 0)}

	first, err := gen.GenerateDailyTasks(baby, nil, now)
	require.NoError(t, err)
	require.NotEmpty(t, first)

	second, err := gen.GenerateDailyTasks(baby, first, now.Add(3*time.Hour))
	require.NoError(t, err)
	assert.Empty(t, second)
}

func TestGenerateDailyTasksFillsMissingCategories(t *testing.T) {
	gen := NewDailyTaskGenerator(newFixture(t).catalog)
	baby := models.Baby{ID: uuid.New(), Name: "Mia", BirthDate: now.AddDate(0, -8, 0)}

	manual := models.NewEntity(baby.ID, models.KindTask, "Porridge", now, now)
	manual.Category = string(models.CategoryFeeding)
	yesterday := models.NewEntity(baby.ID, models.KindTask, "Floor play", now.AddDate(0, 0, -1), now)
	yesterday.Category = string(models.CategoryPlay)
	otherBaby := models.NewEntity(uuid.New(), models.KindTask, "Read", now, now)
	otherBaby.Category = string(models.CategoryDevelopment)

	tasks, err := gen.GenerateDailyTasks(baby, []models.Entity{manual, yesterday, otherBaby}, now)
	require.NoError(t, err)

	var categories []string
	for _, task := range tasks {
		categories = append(categories, task.Category)
	}
	assert.ElementsMatch(t, []string{"play", "development", "hygiene"}, categories)
}

func TestGenerateAndStore(t *testing.T) {
	f := newFixture(t)
	svc := NewTaskService(f.babies, f.tracker, NewDailyTaskGenerator(f.catalog), nil)
	baby := f.addBaby(t, "Mia", now.AddDate(0, 0, -200))

	created, err := svc.GenerateAndStore(baby.ID, now)
	require.NoError(t, err)
	assert.Len(t, created, 4)

	again, err := svc.GenerateAndStore(baby.ID, now)
	require.NoError(t, err)
	assert.Empty(t, again)

	stored, err := f.tracker.Filter(baby.ID, OfKind(models.KindTask))
	require.NoError(t, err)
	assert.Len(t, stored, 4)

	_, err = svc.GenerateAndStore(uuid.New(), now)
	assert.ErrorIs(t, err, ErrBabyNotFound)
}

func TestGenerateForAll(t *testing.T) {
	f := newFixture(t)
	svc := NewTaskService(f.babies, f.tracker, NewDailyTaskGenerator(f.catalog), nil)
	f.addBaby(t, "Mia", now.AddDate(0, -2, 0))
	f.addBaby(t, "Leo", now.AddDate(-2, 0, 0))

	total, err := svc.GenerateForAll(now)
	require.NoError(t, err)
	assert.Equal(t, 8, total)
}

package repository

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"babymind/internal/config"
	"babymind/internal/database"
	"babymind/internal/models"
)

type stores struct {
	babies   BabyStore
	entities EntityStore
}

func memoryStores(t *testing.T) stores {
	entities := NewMemoryEntityStore()
	return stores{babies: NewMemoryBabyStore(entities), entities: entities}
}

func sqliteStores(t *testing.T) stores {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	db, err := database.InitializeWithConfig(&config.Config{DatabaseType: "sqlite", DatabasePath: filepath.Join(t.TempDir(), "repo.db")})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.RunMigrations("../../migrations"))

	return stores{babies: NewBabyRepository(db), entities: NewEntityRepository(db)}
}

var backends = map[string]func(t *testing.T) stores{
	"memory": memoryStores,
	"sqlite": sqliteStores,
}

var now = time.Date(2026, 10, 15, 9, 30, 0, 0, time.UTC)

func newBaby(t *testing.T, s stores, name string) models.Baby {
	t.Helper()
	baby := models.Baby{
		ID:               uuid.New(),
		Name:             name,
		BirthDate:        now.AddDate(0, -7, 0),
		Gender:           models.GenderGirl,
		BirthWeightGrams: 3400,
		BirthHeightCm:    50.5,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	require.NoError(t, s.babies.CreateBaby(&baby))
	return baby
}

func TestBabyStore(t *testing.T) {
	for name, open := range backends {
		t.Run(name, func(t *testing.T) {
			s := open(t)
			baby := newBaby(t, s, "Mia")

			got, err := s.babies.GetBabyByID(baby.ID)
			require.NoError(t, err)
			require.NotNil(t, got)
			assert.Equal(t, "Mia", got.Name)
			assert.True(t, baby.BirthDate.Equal(got.BirthDate))
			assert.Equal(t, 3400, got.BirthWeightGrams)

			got.Name = "Mia Rose"
			require.NoError(t, s.babies.UpdateBaby(got))
			list, err := s.babies.ListBabies()
			require.NoError(t, err)
			require.Len(t, list, 1)
			assert.Equal(t, "Mia Rose", list[0].Name)

			missing, err := s.babies.GetBabyByID(uuid.New())
			require.NoError(t, err)
			assert.Nil(t, missing)

			require.NoError(t, s.babies.DeleteBaby(baby.ID))
			gone, err := s.babies.GetBabyByID(baby.ID)
			require.NoError(t, err)
			assert.Nil(t, gone)
		})
	}
}

func TestEntityStoreScopedToBaby(t *testing.T) {
	for name, open := range backends {
		t.Run(name, func(t *testing.T) {
			s := open(t)
			mia := newBaby(t, s, "Mia")
			leo := newBaby(t, s, "Leo")

			task := models.NewEntity(mia.ID, models.KindTask, "Tummy time", now, now)
			task.Points = 15
			task.Priority = models.PriorityMedium
			task.Category = string(models.CategoryPlay)
			require.NoError(t, s.entities.Create(&task))

			got, err := s.entities.Get(mia.ID, task.ID)
			require.NoError(t, err)
			require.NotNil(t, got)
			assert.Equal(t, "Tummy time", got.Title)
			assert.Equal(t, models.KindTask, got.Kind)
			assert.Equal(t, models.PriorityMedium, got.Priority)
			assert.Equal(t, 15, got.Points)
			assert.Nil(t, got.CompletedAt)

			other, err := s.entities.Get(leo.ID, task.ID)
			require.NoError(t, err)
			assert.Nil(t, other, "another baby must not see the entity")

			leoList, err := s.entities.ListByBaby(leo.ID)
			require.NoError(t, err)
			assert.Empty(t, leoList)

			// Deleting through the wrong baby is a no-op
			require.NoError(t, s.entities.Delete(leo.ID, task.ID))
			still, err := s.entities.Get(mia.ID, task.ID)
			require.NoError(t, err)
			assert.NotNil(t, still)
		})
	}
}

func TestEntityStoreUpdateAndDelete(t *testing.T) {
	for name, open := range backends {
		t.Run(name, func(t *testing.T) {
			s := open(t)
			baby := newBaby(t, s, "Mia")

			task := models.NewEntity(baby.ID, models.KindTask, "Read together", now, now)
			task.Points = 10
			require.NoError(t, s.entities.Create(&task))

			task.MarkCompleted(now.Add(time.Hour))
			require.NoError(t, s.entities.Update(&task))

			got, err := s.entities.Get(baby.ID, task.ID)
			require.NoError(t, err)
			assert.True(t, got.IsCompleted)
			assert.True(t, got.PointsAwarded)
			require.NotNil(t, got.CompletedAt)
			assert.True(t, now.Add(time.Hour).Equal(*got.CompletedAt))

			require.NoError(t, s.entities.Delete(baby.ID, task.ID))
			gone, err := s.entities.Get(baby.ID, task.ID)
			require.NoError(t, err)
			assert.Nil(t, gone)
		})
	}
}

func TestEntityStoreListOrder(t *testing.T) {
	for name, open := range backends {
		t.Run(name, func(t *testing.T) {
			s := open(t)
			baby := newBaby(t, s, "Mia")

			for _, offset := range []int{3, 1, 2} {
				e := models.NewEntity(baby.ID, models.KindAppointment, "visit", now.AddDate(0, 0, offset), now)
				require.NoError(t, s.entities.Create(&e))
			}

			list, err := s.entities.ListByBaby(baby.ID)
			require.NoError(t, err)
			require.Len(t, list, 3)
			for i := 1; i < len(list); i++ {
				assert.True(t, list[i-1].ScheduledAt.Before(list[i].ScheduledAt))
			}
		})
	}
}

func TestListDueReminders(t *testing.T) {
	for name, open := range backends {
		t.Run(name, func(t *testing.T) {
			s := open(t)
			baby := newBaby(t, s, "Mia")

			due := models.NewEntity(baby.ID, models.KindReminder, "Vitamin D drops", now.Add(-time.Minute), now)
			later := models.NewEntity(baby.ID, models.KindReminder, "Evening bath", now.Add(time.Hour), now)
			done := models.NewEntity(baby.ID, models.KindReminder, "Morning feed", now.Add(-time.Hour), now)
			done.MarkCompleted(now)
			notified := models.NewEntity(baby.ID, models.KindReminder, "Nap", now.Add(-2*time.Hour), now)
			sent := now.Add(-2 * time.Hour)
			notified.NotifiedAt = &sent
			task := models.NewEntity(baby.ID, models.KindTask, "Not a reminder", now.Add(-time.Hour), now)

			for _, e := range []*models.Entity{&due, &later, &done, &notified, &task} {
				require.NoError(t, s.entities.Create(e))
			}

			got, err := s.entities.ListDueReminders(now)
			require.NoError(t, err)
			require.Len(t, got, 1)
			assert.Equal(t, due.ID, got[0].ID)
		})
	}
}

func TestMemoryStoreReturnsCopies(t *testing.T) {
	s := NewMemoryEntityStore()
	baby := uuid.New()
	e := models.NewEntity(baby, models.KindTask, "Bath", now, now)
	require.NoError(t, s.Create(&e))

	got, _ := s.Get(baby, e.ID)
	got.Title = "changed"

	again, _ := s.Get(baby, e.ID)
	assert.Equal(t, "Bath", again.Title)

	assert.ErrorIs(t, s.Create(&e), ErrDuplicateID)
}

func TestMemoryBabyDeleteDropsEntities(t *testing.T) {
	entities := NewMemoryEntityStore()
	babies := NewMemoryBabyStore(entities)
	s := stores{babies: babies, entities: entities}
	baby := newBaby(t, s, "Mia")

	e := models.NewEntity(baby.ID, models.KindTask, "Bath", now, now)
	require.NoError(t, entities.Create(&e))
	require.NoError(t, babies.DeleteBaby(baby.ID))

	list, err := entities.ListByBaby(baby.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}

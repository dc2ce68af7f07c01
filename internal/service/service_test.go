package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"babymind/internal/events"
	"babymind/internal/models"
	"babymind/internal/repository"
	"babymind/internal/rules"
)

var now = time.Date(2026, 10, 15, 9, 30, 0, 0, time.UTC)

type fixture struct {
	entities  *repository.MemoryEntityStore
	babyStore *repository.MemoryBabyStore
	babies    *BabyService
	bus       *events.Bus
	tracker   *Tracker
	catalog   *rules.Catalog
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	entities := repository.NewMemoryEntityStore()
	babyStore := repository.NewMemoryBabyStore(entities)
	bus := events.NewBus(zap.NewNop())
	return &fixture{
		entities:  entities,
		babyStore: babyStore,
		babies:    NewBabyService(babyStore),
		bus:       bus,
		tracker:   NewTracker(entities, bus, NewProgressCalculator(DefaultLevelThreshold), zap.NewNop()),
		catalog:   rules.Default(),
	}
}

func (f *fixture) addBaby(t *testing.T, name string, birth time.Time) models.Baby {
	t.Helper()
	baby := models.Baby{Name: name, BirthDate: birth}
	require.NoError(t, f.babies.Create(&baby, now))
	return baby
}

func (f *fixture) addTask(t *testing.T, baby models.Baby, title string, points int) models.Entity {
	t.Helper()
	task := models.NewEntity(baby.ID, models.KindTask, title, now, now)
	task.Points = points
	require.NoError(t, f.tracker.Add(&task))
	return task
}

// drain returns every event currently buffered on sub
func drain(sub *events.Subscription) []events.PointsAwarded {
	var got []events.PointsAwarded
	for {
		select {
		case e := <-sub.C:
			var p events.PointsAwarded
			if err := e.DataAs(&p); err == nil {
				got = append(got, p)
			}
		default:
			return got
		}
	}
}

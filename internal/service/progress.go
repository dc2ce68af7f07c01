package service

import (
	"time"

	"github.com/google/uuid"

	"babymind/internal/models"
)

// DefaultLevelThreshold is the number of points per level
const DefaultLevelThreshold = 100

// history is what achievements are judged on. Points and task counts come
// from tasks whose points were ever awarded, so toggling a task off does not
// take an achievement away.
type history struct {
	earnedPoints  int
	earnedTasks   int
	longestStreak int
}

type achievementRule struct {
	models.Achievement
	unlocked func(h history) bool
}

var achievementRules = []achievementRule{
	{
		Achievement: models.Achievement{ID: "first_task", Label: "First task done"},
		unlocked:    func(h history) bool { return h.earnedTasks >= 1 },
	},
	{
		Achievement: models.Achievement{ID: "streak_3", Label: "3-day streak"},
		unlocked:    func(h history) bool { return h.longestStreak >= 3 },
	},
	{
		Achievement: models.Achievement{ID: "streak_7", Label: "Full week streak"},
		unlocked:    func(h history) bool { return h.longestStreak >= 7 },
	},
	{
		Achievement: models.Achievement{ID: "points_100", Label: "100 points"},
		unlocked:    func(h history) bool { return h.earnedPoints >= 100 },
	},
	{
		Achievement: models.Achievement{ID: "points_500", Label: "500 points"},
		unlocked:    func(h history) bool { return h.earnedPoints >= 500 },
	},
	{
		Achievement: models.Achievement{ID: "tasks_50", Label: "50 tasks completed"},
		unlocked:    func(h history) bool { return h.earnedTasks >= 50 },
	},
}

// ProgressCalculator derives points, level, streak and achievements from a
// baby's completed tasks. It holds no state besides the level threshold.
type ProgressCalculator struct {
	levelThreshold int
}

// NewProgressCalculator creates a calculator. A non-positive threshold uses
// DefaultLevelThreshold.
func NewProgressCalculator(levelThreshold int) *ProgressCalculator {
	if levelThreshold <= 0 {
		levelThreshold = DefaultLevelThreshold
	}
	return &ProgressCalculator{levelThreshold: levelThreshold}
}

// Compute builds the aggregate for babyID from entities. Points, level and
// streak count completed tasks owned by the baby. Days are taken in now's
// location.
func (c *ProgressCalculator) Compute(babyID uuid.UUID, entities []models.Entity, now time.Time) models.ProgressAggregate {
	agg := models.ProgressAggregate{BabyID: babyID, Achievements: []models.Achievement{}}
	days := make(map[time.Time]bool)
	var h history

	for _, e := range entities {
		if e.BabyID != babyID || e.Kind != models.KindTask {
			continue
		}
		if e.PointsAwarded {
			h.earnedTasks++
			h.earnedPoints += e.Points
		}
		if !e.IsCompleted {
			continue
		}
		agg.CompletedTasks++
		agg.TotalPoints += e.Points
		if e.CompletedAt != nil {
			days[day(*e.CompletedAt, now.Location())] = true
		}
	}

	agg.Level = agg.TotalPoints/c.levelThreshold + 1
	agg.StreakDays = currentStreak(days, day(now, now.Location()))

	h.longestStreak = longestStreak(days)
	for _, rule := range achievementRules {
		if rule.unlocked(h) {
			agg.Achievements = append(agg.Achievements, rule.Achievement)
		}
	}
	return agg
}

// currentStreak counts consecutive days ending today, or yesterday when
// nothing has been completed yet today
func currentStreak(days map[time.Time]bool, today time.Time) int {
	start := today
	if !days[start] {
		start = today.AddDate(0, 0, -1)
		if !days[start] {
			return 0
		}
	}

	streak := 0
	for d := start; days[d]; d = d.AddDate(0, 0, -1) {
		streak++
	}
	return streak
}

func longestStreak(days map[time.Time]bool) int {
	longest := 0
	for d := range days {
		// only count from the first day of each run
		if days[d.AddDate(0, 0, -1)] {
			continue
		}
		run := 0
		for cur := d; days[cur]; cur = cur.AddDate(0, 0, 1) {
			run++
		}
		longest = max(longest, run)
	}
	return longest
}

// day truncates t to midnight in loc
func day(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

package events

import (
	"time"

	"github.com/google/uuid"
)

// TaskCompleted is published when a task becomes completed
type TaskCompleted struct {
	BabyID      uuid.UUID `json:"baby_id"`
	EntityID    uuid.UUID `json:"entity_id"`
	Title       string    `json:"title"`
	CompletedAt time.Time `json:"completed_at"`
}

// PointsAwarded is published once per task, on its first completion
type PointsAwarded struct {
	BabyID   uuid.UUID `json:"baby_id"`
	EntityID uuid.UUID `json:"entity_id"`
	Points   int       `json:"points"`
}

// ReminderDue is published when a reminder's time has come
type ReminderDue struct {
	BabyID      uuid.UUID `json:"baby_id"`
	EntityID    uuid.UUID `json:"entity_id"`
	Title       string    `json:"title"`
	Notes       string    `json:"notes,omitempty"`
	ScheduledAt time.Time `json:"scheduled_at"`
}

// AchievementUnlocked is published when recomputation finds a new achievement
type AchievementUnlocked struct {
	BabyID        uuid.UUID `json:"baby_id"`
	AchievementID string    `json:"achievement_id"`
	Label         string    `json:"label"`
}

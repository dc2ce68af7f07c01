package models

import "github.com/google/uuid"

// Achievement is a label unlocked by a threshold crossing
type Achievement struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// ProgressAggregate is derived from a baby's completed tasks and never stored
type ProgressAggregate struct {
	BabyID         uuid.UUID     `json:"baby_id"`
	TotalPoints    int           `json:"total_points"`
	Level          int           `json:"level"`
	StreakDays     int           `json:"streak_days"`
	CompletedTasks int           `json:"completed_tasks"`
	Achievements   []Achievement `json:"achievements"`
}

// HasAchievement reports whether the aggregate contains the achievement id
func (p ProgressAggregate) HasAchievement(id string) bool {
	for _, a := range p.Achievements {
		if a.ID == id {
			return true
		}
	}
	return false
}

package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// EntityKind tags the kind of tracked record
type EntityKind string

const (
	KindTask            EntityKind = "task"
	KindRoutine         EntityKind = "routine"
	KindVaccinationDose EntityKind = "vaccination_dose"
	KindTooth           EntityKind = "tooth"
	KindIllness         EntityKind = "illness"
	KindMedicine        EntityKind = "medicine"
	KindAppointment     EntityKind = "appointment"
	KindReminder        EntityKind = "reminder"
	KindChecklistItem   EntityKind = "checklist_item"
)

// KindInfo is the static metadata attached to an EntityKind
type KindInfo struct {
	Label string
	Icon  string
	// AwardsPoints is true when the first completion of the kind earns points
	AwardsPoints bool
}

var kindTable = map[EntityKind]KindInfo{
	KindTask:            {Label: "Task", Icon: "checklist", AwardsPoints: true},
	KindRoutine:         {Label: "Routine", Icon: "clock"},
	KindVaccinationDose: {Label: "Vaccination", Icon: "syringe"},
	KindTooth:           {Label: "Tooth", Icon: "mouth"},
	KindIllness:         {Label: "Illness", Icon: "thermometer"},
	KindMedicine:        {Label: "Medicine", Icon: "pills"},
	KindAppointment:     {Label: "Doctor visit", Icon: "stethoscope"},
	KindReminder:        {Label: "Reminder", Icon: "bell"},
	KindChecklistItem:   {Label: "Safety check", Icon: "shield"},
}

// Info returns the metadata for the kind. ok is false for unknown kinds.
func (k EntityKind) Info() (KindInfo, bool) {
	info, ok := kindTable[k]
	return info, ok
}

// Valid reports whether k is a known kind
func (k EntityKind) Valid() bool {
	_, ok := kindTable[k]
	return ok
}

// Priority of a task or reminder
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Entity represents any tracked, completable record owned by one baby:
// tasks, routines, vaccination doses, teeth, illnesses, medicines,
// appointments, reminders and checklist items.
type Entity struct {
	ID          uuid.UUID  `json:"id"`
	BabyID      uuid.UUID  `json:"baby_id"`
	Kind        EntityKind `json:"kind"`
	Category    string     `json:"category,omitempty"`
	Title       string     `json:"title"`
	Notes       string     `json:"notes,omitempty"`
	Priority    Priority   `json:"priority,omitempty"`
	Points      int        `json:"points"`
	ScheduledAt time.Time  `json:"scheduled_at"`
	IsCompleted bool       `json:"is_completed"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	// PointsAwarded is set on the first completion of a point-earning kind
	// and never cleared, so points are only granted once.
	PointsAwarded bool `json:"points_awarded"`
	// NotifiedAt records when a reminder alert was dispatched
	NotifiedAt *time.Time `json:"notified_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// NewEntity builds an entity with a fresh id
func NewEntity(babyID uuid.UUID, kind EntityKind, title string, scheduledAt, now time.Time) Entity {
	return Entity{
		ID:          uuid.New(),
		BabyID:      babyID,
		Kind:        kind,
		Title:       title,
		ScheduledAt: scheduledAt,
		CreatedAt:   now,
	}
}

// Validate checks the entity before it is stored
func (e *Entity) Validate() error {
	if e.BabyID == uuid.Nil {
		return fmt.Errorf("%w: baby id is required", ErrInvalidEntity)
	}
	if !e.Kind.Valid() {
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidEntity, e.Kind)
	}
	if e.Title == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidEntity)
	}
	if e.Points < 0 {
		return fmt.Errorf("%w: points must not be negative", ErrInvalidEntity)
	}
	return nil
}

// MarkCompleted sets the completion state. It reports whether this call
// granted the entity's points for the first time.
func (e *Entity) MarkCompleted(now time.Time) bool {
	e.IsCompleted = true
	t := now
	e.CompletedAt = &t

	info, _ := e.Kind.Info()
	if info.AwardsPoints && !e.PointsAwarded {
		e.PointsAwarded = true
		return true
	}
	return false
}

// MarkIncomplete clears the completion state. PointsAwarded is kept.
func (e *Entity) MarkIncomplete() {
	e.IsCompleted = false
	e.CompletedAt = nil
}

// EntityView is an entity with the display metadata of its kind and category
type EntityView struct {
	Entity
	KindLabel     string `json:"kind_label"`
	KindIcon      string `json:"kind_icon"`
	CategoryLabel string `json:"category_label,omitempty"`
	CategoryIcon  string `json:"category_icon,omitempty"`
}

// View attaches display metadata. A category that is not a task category,
// such as a vaccine name, is shown as-is without an icon.
func (e Entity) View() EntityView {
	v := EntityView{Entity: e}
	if info, ok := e.Kind.Info(); ok {
		v.KindLabel, v.KindIcon = info.Label, info.Icon
	}
	if info, ok := TaskCategory(e.Category).Info(); ok {
		v.CategoryLabel, v.CategoryIcon = info.Label, info.Icon
	} else {
		v.CategoryLabel = e.Category
	}
	return v
}

// SameDay reports whether two times fall on the same calendar day in a's location
func SameDay(a, b time.Time) bool {
	b = b.In(a.Location())
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

package models

// TaskCategory groups daily care tasks
type TaskCategory string

const (
	CategoryFeeding     TaskCategory = "feeding"
	CategorySleep       TaskCategory = "sleep"
	CategoryPlay        TaskCategory = "play"
	CategoryHealth      TaskCategory = "health"
	CategoryHygiene     TaskCategory = "hygiene"
	CategoryDevelopment TaskCategory = "development"
	CategoryBonding     TaskCategory = "bonding"
)

// CategoryInfo is display and rule metadata for a task category
type CategoryInfo struct {
	Label         string
	Icon          string
	DefaultPoints int
}

var categoryTable = map[TaskCategory]CategoryInfo{
	CategoryFeeding:     {Label: "Feeding", Icon: "bottle", DefaultPoints: 10},
	CategorySleep:       {Label: "Sleep", Icon: "moon", DefaultPoints: 10},
	CategoryPlay:        {Label: "Play", Icon: "puzzle", DefaultPoints: 15},
	CategoryHealth:      {Label: "Health", Icon: "heart", DefaultPoints: 20},
	CategoryHygiene:     {Label: "Hygiene", Icon: "drop", DefaultPoints: 10},
	CategoryDevelopment: {Label: "Development", Icon: "sparkles", DefaultPoints: 15},
	CategoryBonding:     {Label: "Bonding", Icon: "hands", DefaultPoints: 15},
}

// Info returns the category metadata
func (c TaskCategory) Info() (CategoryInfo, bool) {
	info, ok := categoryTable[c]
	return info, ok
}

// RoutineType identifies a daily routine slot
type RoutineType string

const (
	RoutineFeeding RoutineType = "feeding"
	RoutineNap     RoutineType = "nap"
	RoutineBath    RoutineType = "bath"
	RoutineTummy   RoutineType = "tummy_time"
	RoutineBedtime RoutineType = "bedtime"
	RoutineOutdoor RoutineType = "outdoor"
)

var routineLabels = map[RoutineType]string{
	RoutineFeeding: "Feeding",
	RoutineNap:     "Nap",
	RoutineBath:    "Bath",
	RoutineTummy:   "Tummy time",
	RoutineBedtime: "Bedtime",
	RoutineOutdoor: "Outdoor time",
}

// Label returns a display label, falling back to the raw value
func (r RoutineType) Label() string {
	if l, ok := routineLabels[r]; ok {
		return l
	}
	return string(r)
}

// Package rules holds the age-bucketed rule tables that drive milestone,
// vaccination, routine, play, teeth, vitamin and daily-task recommendations.
//
// A table is an ordered list of age ranges. Lookups take the first range in
// declaration order that contains the age. Ages outside every range still
// resolve: below the first minimum returns the first rule and anything past
// the covered span returns the nearest earlier rule, so callers always have
// something to show.
package rules

import (
	"errors"
	"fmt"

	"babymind/internal/models"
)

var (
	ErrUnknownDomain  = errors.New("unknown rule domain")
	ErrEmptyRuleTable = errors.New("rule table has no rules")
	ErrInvalidRule    = errors.New("invalid rule")
)

// Domain names a rule table
type Domain string

const (
	DomainMilestones  Domain = "milestones"
	DomainVaccination Domain = "vaccination"
	DomainRoutines    Domain = "routines"
	DomainPlay        Domain = "play"
	DomainTasks       Domain = "tasks"
	DomainTeeth       Domain = "teeth"
	DomainVitamins    Domain = "vitamins"
)

// Domains lists every domain a catalog must define
var Domains = []Domain{
	DomainMilestones,
	DomainVaccination,
	DomainRoutines,
	DomainPlay,
	DomainTasks,
	DomainTeeth,
	DomainVitamins,
}

// TaskTemplate describes a daily task synthesized for an age bucket
type TaskTemplate struct {
	Category    models.TaskCategory `yaml:"category" json:"category"`
	Title       string              `yaml:"title" json:"title"`
	Description string              `yaml:"description" json:"description"`
	Priority    models.Priority     `yaml:"priority" json:"priority"`
	Points      int                 `yaml:"points" json:"points"`
}

// RoutineSuggestion is one slot of a suggested daily routine
type RoutineSuggestion struct {
	Type        models.RoutineType `yaml:"type" json:"type"`
	Label       string             `yaml:"-" json:"label"`
	Description string             `yaml:"description" json:"description"`
}

// ContentBundle is the static payload of a rule. Which fields are set
// depends on the domain.
type ContentBundle struct {
	Label      string              `yaml:"label" json:"label"`
	Name       string              `yaml:"name,omitempty" json:"name,omitempty"`
	Items      []string            `yaml:"items,omitempty" json:"items,omitempty"`
	Activities []string            `yaml:"activities,omitempty" json:"activities,omitempty"`
	Benefits   []string            `yaml:"benefits,omitempty" json:"benefits,omitempty"`
	Doses      []string            `yaml:"doses,omitempty" json:"doses,omitempty"`
	Routines   []RoutineSuggestion `yaml:"routines,omitempty" json:"routines,omitempty"`
	Tasks      []TaskTemplate      `yaml:"tasks,omitempty" json:"tasks,omitempty"`
}

// Rule maps an age range in months to a bundle. MaxAgeMonths is exclusive;
// zero means the range is open-ended.
type Rule struct {
	MinAgeMonths int           `yaml:"min_months" json:"min_months"`
	MaxAgeMonths int           `yaml:"max_months,omitempty" json:"max_months,omitempty"`
	Domain       Domain        `yaml:"-" json:"domain"`
	Bundle       ContentBundle `yaml:"bundle" json:"bundle"`
}

// OpenEnded reports whether the rule has no upper bound
func (r Rule) OpenEnded() bool {
	return r.MaxAgeMonths == 0
}

// Contains reports whether ageMonths falls inside the rule's range
func (r Rule) Contains(ageMonths int) bool {
	if ageMonths < r.MinAgeMonths {
		return false
	}
	return r.OpenEnded() || ageMonths < r.MaxAgeMonths
}

func (r Rule) validate() error {
	if r.MinAgeMonths < 0 {
		return fmt.Errorf("%w: negative minimum age %d", ErrInvalidRule, r.MinAgeMonths)
	}
	if !r.OpenEnded() && r.MaxAgeMonths <= r.MinAgeMonths {
		return fmt.Errorf("%w: range %d-%d is empty", ErrInvalidRule, r.MinAgeMonths, r.MaxAgeMonths)
	}
	return nil
}

// Table is the ordered rule list of one domain
type Table struct {
	domain Domain
	rules  []Rule
}

// NewTable validates rules and builds a table. It returns
// ErrEmptyRuleTable when rules is empty.
func NewTable(domain Domain, rules []Rule) (*Table, error) {
	if len(rules) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyRuleTable, domain)
	}
	out := make([]Rule, len(rules))
	for i, r := range rules {
		if err := r.validate(); err != nil {
			return nil, fmt.Errorf("%s rule %d: %w", domain, i, err)
		}
		r.Domain = domain
		r.Bundle.Routines = labelRoutines(r.Bundle.Routines)
		out[i] = r
	}
	return &Table{domain: domain, rules: out}, nil
}

// labelRoutines returns a copy of routines with display labels filled in
func labelRoutines(routines []RoutineSuggestion) []RoutineSuggestion {
	if routines == nil {
		return nil
	}
	out := make([]RoutineSuggestion, len(routines))
	for i, r := range routines {
		r.Label = r.Type.Label()
		out[i] = r
	}
	return out
}

// Domain returns the table's domain
func (t *Table) Domain() Domain {
	return t.domain
}

// Rules returns a copy of the rules in declaration order
func (t *Table) Rules() []Rule {
	out := make([]Rule, len(t.rules))
	copy(out, t.rules)
	return out
}

// Resolve returns the first rule containing ageMonths. When none does, the
// rule with the greatest minimum not above ageMonths is used, or the first
// rule when ageMonths is below every minimum.
func (t *Table) Resolve(ageMonths int) Rule {
	for _, r := range t.rules {
		if r.Contains(ageMonths) {
			return r
		}
	}

	fallback := t.rules[0]
	found := false
	for _, r := range t.rules {
		if r.MinAgeMonths <= ageMonths && (!found || r.MinAgeMonths > fallback.MinAgeMonths) {
			fallback = r
			found = true
		}
	}
	return fallback
}

// Upcoming returns every rule whose upper bound has not passed yet, in
// declaration order. Rules that already started are included.
func (t *Table) Upcoming(ageMonths int) []Rule {
	var out []Rule
	for _, r := range t.rules {
		if r.OpenEnded() || ageMonths < r.MaxAgeMonths {
			out = append(out, r)
		}
	}
	return out
}

package rules

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func vaccinationTable(t *testing.T) *Table {
	t.Helper()
	table, err := NewTable(DomainVaccination, []Rule{
		{MinAgeMonths: 0, MaxAgeMonths: 2, Bundle: ContentBundle{Name: "Hepatitis B"}},
		{MinAgeMonths: 2, MaxAgeMonths: 4, Bundle: ContentBundle{Name: "DTaP dose 1"}},
		{MinAgeMonths: 4, Bundle: ContentBundle{Name: "DTaP dose 2+"}},
	})
	require.NoError(t, err)
	return table
}

func TestResolveScenario(t *testing.T) {
	table := vaccinationTable(t)
	assert.Equal(t, "DTaP dose 2+", table.Resolve(6).Bundle.Name)
}

func TestResolveBoundaries(t *testing.T) {
	table := vaccinationTable(t)

	tests := []struct {
		age  int
		want string
	}{
		{0, "Hepatitis B"},
		{1, "Hepatitis B"},
		{2, "DTaP dose 1"},
		{3, "DTaP dose 1"},
		{4, "DTaP dose 2+"},
		{240, "DTaP dose 2+"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, table.Resolve(tt.age).Bundle.Name, "age %d", tt.age)
	}
}

func TestResolveFloorAndCeiling(t *testing.T) {
	table, err := NewTable(DomainPlay, []Rule{
		{MinAgeMonths: 3, MaxAgeMonths: 6, Bundle: ContentBundle{Label: "first"}},
		{MinAgeMonths: 6, MaxAgeMonths: 12, Bundle: ContentBundle{Label: "middle"}},
		{MinAgeMonths: 12, MaxAgeMonths: 24, Bundle: ContentBundle{Label: "last"}},
	})
	require.NoError(t, err)

	t.Run("below first minimum returns first rule", func(t *testing.T) {
		assert.Equal(t, "first", table.Resolve(0).Bundle.Label)
		assert.Equal(t, "first", table.Resolve(-3).Bundle.Label)
	})

	t.Run("past every range returns last rule", func(t *testing.T) {
		assert.Equal(t, "last", table.Resolve(24).Bundle.Label)
		assert.Equal(t, "last", table.Resolve(60).Bundle.Label)
	})
}

func TestResolveGapUsesNearestEarlierRule(t *testing.T) {
	table, err := NewTable(DomainTeeth, []Rule{
		{MinAgeMonths: 0, MaxAgeMonths: 3, Bundle: ContentBundle{Label: "a"}},
		{MinAgeMonths: 6, MaxAgeMonths: 9, Bundle: ContentBundle{Label: "b"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "a", table.Resolve(4).Bundle.Label)
}

func TestResolveOverlapFirstMatchWins(t *testing.T) {
	table, err := NewTable(DomainMilestones, []Rule{
		{MinAgeMonths: 0, MaxAgeMonths: 12, Bundle: ContentBundle{Label: "wide"}},
		{MinAgeMonths: 6, MaxAgeMonths: 9, Bundle: ContentBundle{Label: "narrow"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "wide", table.Resolve(7).Bundle.Label)
}

func TestResolveCoversEveryAge(t *testing.T) {
	catalog := Default()
	for _, domain := range Domains {
		table, err := catalog.Table(domain)
		require.NoError(t, err)
		rules := table.Rules()
		last := rules[len(rules)-1]

		for age := 0; age <= 48; age++ {
			r := table.Resolve(age)
			if !r.Contains(age) {
				assert.Equal(t, last, r, "%s age %d", domain, age)
			}
			assert.Equal(t, domain, r.Domain)
		}
	}
}

func TestUpcoming(t *testing.T) {
	table := vaccinationTable(t)

	got := table.Upcoming(3)
	require.Len(t, got, 2)
	assert.Equal(t, "DTaP dose 1", got[0].Bundle.Name)
	assert.Equal(t, "DTaP dose 2+", got[1].Bundle.Name)

	assert.Len(t, table.Upcoming(0), 3)
	assert.Len(t, table.Upcoming(100), 1)
}

func TestNewTableRejectsEmpty(t *testing.T) {
	_, err := NewTable(DomainTasks, nil)
	assert.ErrorIs(t, err, ErrEmptyRuleTable)
}

func TestNewTableRejectsInvalidRange(t *testing.T) {
	_, err := NewTable(DomainTasks, []Rule{{MinAgeMonths: 6, MaxAgeMonths: 6}})
	assert.ErrorIs(t, err, ErrInvalidRule)

	_, err = NewTable(DomainTasks, []Rule{{MinAgeMonths: -1, MaxAgeMonths: 6}})
	assert.ErrorIs(t, err, ErrInvalidRule)
}

func TestDefaultCatalogLoads(t *testing.T) {
	catalog := Default()

	rule, err := catalog.Resolve(DomainTasks, 8)
	require.NoError(t, err)
	assert.NotEmpty(t, rule.Bundle.Tasks)

	rule, err = catalog.Resolve(DomainVaccination, 0)
	require.NoError(t, err)
	assert.Equal(t, "Hepatitis B", rule.Bundle.Name)
}

func TestRoutinesCarryLabels(t *testing.T) {
	rule, err := Default().Resolve(DomainRoutines, 1)
	require.NoError(t, err)
	require.NotEmpty(t, rule.Bundle.Routines)
	assert.Equal(t, "feeding", string(rule.Bundle.Routines[0].Type))
	assert.Equal(t, "Feeding", rule.Bundle.Routines[0].Label)
	assert.Equal(t, "Tummy time", rule.Bundle.Routines[2].Label)
}

func TestCatalogUnknownDomain(t *testing.T) {
	_, err := Default().Resolve("lullabies", 3)
	assert.ErrorIs(t, err, ErrUnknownDomain)
}

func TestParseMissingDomainFails(t *testing.T) {
	data := []byte(`
domains:
  play:
    - min_months: 0
      bundle:
        label: all ages
`)
	_, err := Parse(data)
	assert.ErrorIs(t, err, ErrEmptyRuleTable)
}

func TestParseEmptyDomainFails(t *testing.T) {
	data := []byte("domains:\n  play: []\n")
	_, err := Parse(data)
	assert.ErrorIs(t, err, ErrEmptyRuleTable)
}

func TestMustLoadPanicsOnBadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte("domains: {}\n"), 0o644))

	assert.Panics(t, func() { MustLoad(path) })
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, defaultData, 0o644))

	catalog, err := Load(path)
	require.NoError(t, err)

	rule, err := catalog.Resolve(DomainMilestones, 7)
	require.NoError(t, err)
	assert.Equal(t, "6-9 months", rule.Bundle.Label)
}

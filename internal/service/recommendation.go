package service

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"babymind/internal/age"
	"babymind/internal/rules"
)

// Age is a baby's age in the units the rule tables and views use
type Age struct {
	Days   int `json:"days"`
	Weeks  int `json:"weeks"`
	Months int `json:"months"`
}

// Recommendation is the rule resolved for a baby's current age
type Recommendation struct {
	BabyID uuid.UUID  `json:"baby_id"`
	Age    Age        `json:"age"`
	Rule   rules.Rule `json:"rule"`
}

// RecommendationService resolves age-appropriate content for babies
type RecommendationService struct {
	babies  *BabyService
	catalog *rules.Catalog
}

// NewRecommendationService creates a new recommendation service
func NewRecommendationService(babies *BabyService, catalog *rules.Catalog) *RecommendationService {
	return &RecommendationService{babies: babies, catalog: catalog}
}

// AgeOf computes a baby's age at now
func (s *RecommendationService) AgeOf(babyID uuid.UUID, now time.Time) (Age, error) {
	baby, err := s.babies.Get(babyID)
	if err != nil {
		return Age{}, err
	}
	return Age{
		Days:   age.InDays(baby.BirthDate, now),
		Weeks:  age.InWeeks(baby.BirthDate, now),
		Months: age.InMonths(baby.BirthDate, now),
	}, nil
}

// ForBaby resolves the domain's rule for the baby's age at now
func (s *RecommendationService) ForBaby(babyID uuid.UUID, domain rules.Domain, now time.Time) (*Recommendation, error) {
	a, err := s.AgeOf(babyID, now)
	if err != nil {
		return nil, err
	}
	rule, err := s.catalog.Resolve(domain, a.Months)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", domain, err)
	}
	return &Recommendation{BabyID: babyID, Age: a, Rule: rule}, nil
}

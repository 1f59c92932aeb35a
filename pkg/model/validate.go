package model

import (
	"fmt"
	"slices"
	"strings"
)

// Allowed values for the closed enumerations
var (
	Genders = []Gender{GenderMale, GenderFemale, GenderOther, GenderUnspecified}

	MedicalConditions = []MedicalCondition{
		ConditionDiabetes, ConditionHypertension, ConditionHeartDisease, ConditionAsthma,
		ConditionCOPD, ConditionKidneyDisease, ConditionLiverDisease, ConditionThyroidDisorder,
		ConditionArthritis, ConditionDepression, ConditionAnxiety, ConditionMigraine,
		ConditionEpilepsy, ConditionCancer, ConditionNone,
	}

	ExerciseLevels = []ExerciseLevel{ExerciseSedentary, ExerciseLight, ExerciseModerate, ExerciseActive}

	Severities = []Severity{SeverityMild, SeverityModerate, SeveritySevere, SeverityCritical}

	SymptomDurations = []string{
		"Few hours", "1 day", "2-3 days", "About a week",
		"1-2 weeks", "More than 2 weeks", "More than a month",
	}

	BodyLocations = []string{
		"Head", "Neck", "Chest", "Stomach", "Back", "Arms",
		"Legs", "Joints", "Throat", "Eyes", "Ears", "Whole Body",
	}

	WeightGoals = []WeightGoal{GoalLose, GoalGain, GoalMaintain}
)

// Validate checks ranges and enumerations of a profile before it is saved
func (p *HealthProfile) Validate() error {
	if p.Age <= 0 {
		return fmt.Errorf("age must be a positive number")
	}
	if p.Weight <= 0 {
		return fmt.Errorf("weight must be positive")
	}
	if p.Height <= 0 {
		return fmt.Errorf("height must be positive")
	}
	if !slices.Contains(Genders, p.Gender) {
		return fmt.Errorf("invalid gender: %q", p.Gender)
	}
	for _, c := range p.Conditions {
		if !slices.Contains(MedicalConditions, c) {
			return fmt.Errorf("invalid condition: %q", c)
		}
	}
	if slices.Contains(p.Conditions, ConditionNone) && len(p.Conditions) > 1 {
		return fmt.Errorf("condition %q cannot be combined with other conditions", ConditionNone)
	}
	if p.Lifestyle.Exercise != "" && !slices.Contains(ExerciseLevels, p.Lifestyle.Exercise) {
		return fmt.Errorf("invalid exercise level: %q", p.Lifestyle.Exercise)
	}
	return nil
}

// Normalize applies defaults to a symptom entry. A missing severity becomes Moderate.
func (s *Symptom) Normalize() {
	s.Name = strings.TrimSpace(s.Name)
	if s.Severity == "" {
		s.Severity = SeverityModerate
	}
}

// Validate checks the enumerated fields of a symptom. The name may be blank
// while the symptom is still being edited.
func (s *Symptom) Validate() error {
	if !slices.Contains(Severities, s.Severity) {
		return fmt.Errorf("invalid severity: %q", s.Severity)
	}
	if s.Duration != "" && !slices.Contains(SymptomDurations, s.Duration) {
		return fmt.Errorf("invalid duration: %q", s.Duration)
	}
	if s.Location != "" && !slices.Contains(BodyLocations, s.Location) {
		return fmt.Errorf("invalid location: %q", s.Location)
	}
	return nil
}

// Validate checks the diet-specific inputs of a diet plan request
func (r *DietPlanRequest) Validate() error {
	if !slices.Contains(WeightGoals, r.Goal) {
		return fmt.Errorf("invalid goal: %q", r.Goal)
	}
	if r.TargetWeight <= 0 {
		return fmt.Errorf("target weight must be positive")
	}
	if r.MealsPerDay < 1 || r.MealsPerDay > 6 {
		return fmt.Errorf("meals per day must be between 1 and 6")
	}
	return nil
}

// NamedSymptoms returns the symptoms that carry a non-blank name
func NamedSymptoms(symptoms []Symptom) []Symptom {
	named := make([]Symptom, 0, len(symptoms))
	for _, s := range symptoms {
		if strings.TrimSpace(s.Name) != "" {
			named = append(named, s)
		}
	}
	return named
}

// ParseAnalysisKind maps a kind name to an AnalysisKind
func ParseAnalysisKind(name string) (AnalysisKind, bool) {
	kind := AnalysisKind(name)
	return kind, slices.Contains(AnalysisKinds, kind)
}

package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validProfile() HealthProfile {
	return HealthProfile{
		Age:        35,
		Gender:     GenderFemale,
		Weight:     68,
		Height:     170,
		Conditions: []MedicalCondition{ConditionAsthma},
		Lifestyle:  Lifestyle{Exercise: ExerciseModerate},
	}
}

func TestHealthProfile_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(p *HealthProfile)
		wantErr string
	}{
		{name: "valid", mutate: func(p *HealthProfile) {}},
		{name: "unspecified gender", mutate: func(p *HealthProfile) { p.Gender = GenderUnspecified }},
		{name: "zero age", mutate: func(p *HealthProfile) { p.Age = 0 }, wantErr: "age"},
		{name: "negative weight", mutate: func(p *HealthProfile) { p.Weight = -1 }, wantErr: "weight"},
		{name: "zero height", mutate: func(p *HealthProfile) { p.Height = 0 }, wantErr: "height"},
		{name: "unknown gender", mutate: func(p *HealthProfile) { p.Gender = "Robot" }, wantErr: "gender"},
		{name: "unknown condition", mutate: func(p *HealthProfile) {
			p.Conditions = []MedicalCondition{"Flu"}
		}, wantErr: "condition"},
		{name: "none alone", mutate: func(p *HealthProfile) {
			p.Conditions = []MedicalCondition{ConditionNone}
		}},
		{name: "none combined", mutate: func(p *HealthProfile) {
			p.Conditions = []MedicalCondition{ConditionNone, ConditionAsthma}
		}, wantErr: "cannot be combined"},
		{name: "unknown exercise", mutate: func(p *HealthProfile) { p.Lifestyle.Exercise = "Extreme" }, wantErr: "exercise"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validProfile()
			tt.mutate(&p)
			err := p.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestSymptom_NormalizeAndValidate(t *testing.T) {
	s := Symptom{Name: "  Headache "}
	s.Normalize()
	assert.Equal(t, "Headache", s.Name)
	assert.Equal(t, SeverityModerate, s.Severity)
	assert.NoError(t, s.Validate())

	s.Duration = "forever"
	assert.ErrorContains(t, s.Validate(), "duration")

	s.Duration = "1 day"
	s.Location = "Tail"
	assert.ErrorContains(t, s.Validate(), "location")

	s.Location = "Whole Body"
	s.Severity = "Unbearable"
	assert.ErrorContains(t, s.Validate(), "severity")
}

func TestDietPlanRequest_Validate(t *testing.T) {
	req := DietPlanRequest{Goal: GoalLose, TargetWeight: 60, MealsPerDay: 3}
	assert.NoError(t, req.Validate())

	req.MealsPerDay = 7
	assert.Error(t, req.Validate())

	req.MealsPerDay = 3
	req.Goal = "bulk"
	assert.Error(t, req.Validate())
}

func TestNamedSymptoms(t *testing.T) {
	symptoms := []Symptom{{ID: "1", Name: "Fever"}, {ID: "2", Name: "   "}, {ID: "3", Name: "Cough"}}
	named := NamedSymptoms(symptoms)
	assert.Len(t, named, 2)
	assert.Equal(t, "3", named[1].ID)
}

func TestParseAnalysisKind(t *testing.T) {
	kind, ok := ParseAnalysisKind("diet-plan")
	assert.True(t, ok)
	assert.Equal(t, KindDietPlan, kind)

	_, ok = ParseAnalysisKind("horoscope")
	assert.False(t, ok)
}

func TestResultKinds(t *testing.T) {
	assert.Equal(t, KindSymptomTriage, (&DiagnosisResult{}).Kind())
	assert.Equal(t, KindSecondOpinion, (&SecondOpinionResult{}).Kind())
	assert.Equal(t, KindDietPlan, (&DietPlanResult{}).Kind())
	assert.Equal(t, KindDrugComparison, (&DrugComparisonResult{}).Kind())
	assert.Equal(t, KindRecommendations, (&RecommendationsResult{}).Kind())
}

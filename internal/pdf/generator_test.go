package pdf

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vcscsvcscs/aidoctor-pro/pkg/model"
	"go.uber.org/zap"
)

func consultedAt() time.Time {
	return time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
}

func TestPDFGenerator_Generate_Diagnosis(t *testing.T) {
	generator := NewPDFGenerator(zap.NewNop())

	reportData := &ReportData{
		PatientName: "Jane Doe",
		Consultation: model.ConsultationRecord{
			ID:        "c-1",
			StartTime: consultedAt(),
			Kind:      model.KindSymptomTriage,
			Symptoms: []model.Symptom{
				{Name: "Headache", Severity: model.SeverityModerate, Duration: "1 day", Location: "Head", Description: "Throbbing, worse in the evening"},
			},
			Diagnosis: &model.DiagnosisResult{
				PossibleConditions: []model.PossibleCondition{
					{Name: "Tension headache", Likelihood: model.LikelihoodHigh, ConfidenceScore: 72, Description: "Stress related", WhenToSeek: "Sudden severe pain"},
				},
				UrgencyLevel:        model.UrgencyLow,
				RecommendedActions:  []string{"Rest", "Drink water"},
				WarningSignsToWatch: []string{"Stiff neck"},
				Disclaimer:          "Not a medical diagnosis.",
			},
			PatientProfile: &model.HealthProfile{
				Age: 34, Gender: model.GenderFemale, Weight: 61.5, Height: 168,
				Conditions: []model.MedicalCondition{model.ConditionMigraine},
			},
		},
	}

	pdfBytes, err := generator.Generate(reportData)

	require.NoError(t, err)
	assert.Greater(t, len(pdfBytes), 0, "PDF should have content")
	assert.Equal(t, "%PDF", string(pdfBytes[:4]), "Should be a valid PDF file")
}

func TestPDFGenerator_Generate_EachKind(t *testing.T) {
	generator := NewPDFGenerator(zap.NewNop())

	records := map[string]model.ConsultationRecord{
		"second opinion": {
			Kind: model.KindSecondOpinion,
			SecondOpinion: &model.SecondOpinionResult{
				OriginalDiagnosis: "Migraine", AnalysisConfidence: 80, Agreement: model.AgreementPartial,
				Analysis:                  "Mostly consistent",
				AlternativeConsiderations: []model.AlternativeCondition{{Name: "Cluster headache", Reason: "One-sided pain"}},
			},
		},
		"diet plan": {
			Kind: model.KindDietPlan,
			DietPlan: &model.DietPlanResult{
				Goal: model.GoalLose, CurrentWeight: 80, TargetWeight: 72, DailyCalorieTarget: 1800,
				MacroBreakdown: model.MacroBreakdown{Protein: 30, Carbs: 40, Fats: 30},
				WeeklyPlan: []model.DailyMealPlan{
					{Day: "Monday", TotalCalories: 1800, Meals: []model.Meal{{Name: "Oatmeal", Time: "08:00", Calories: 400}}},
				},
				GroceryList: []string{"Oats", "Spinach"},
			},
		},
		"drug comparison": {
			Kind: model.KindDrugComparison,
			DrugComparison: &model.DrugComparisonResult{
				OriginalDrug:        model.DrugInfo{Name: "Ibuprofen", GenericName: "ibuprofen", DrugClass: "NSAID"},
				SaferAlternatives:   []model.DrugAlternative{{Name: "Paracetamol", SafetyRating: "Safer", Reason: "Gentler on the stomach"}},
				NaturalAlternatives: []model.NaturalAlternative{{Name: "Ginger", Type: "Food", EvidenceLevel: "Limited"}},
			},
		},
		"recommendations": {
			Kind: model.KindRecommendations,
			Recommendations: &model.RecommendationsResult{
				Recommendations: []model.HealthRecommendation{
					{Category: "Exercise", Title: "Walk daily", Description: "30 minutes", Priority: "High", ActionItems: []string{"Morning walk"}},
				},
			},
		},
		"no result": {},
	}

	for name, record := range records {
		t.Run(name, func(t *testing.T) {
			record.ID = "c-" + name
			record.StartTime = consultedAt()

			pdfBytes, err := generator.Generate(&ReportData{Consultation: record})
			require.NoError(t, err)
			assert.Equal(t, "%PDF", string(pdfBytes[:4]))
		})
	}
}

func TestPDFGenerator_Generate_UnicodeText(t *testing.T) {
	generator := NewPDFGenerator(zap.NewNop())

	pdfBytes, err := generator.Generate(&ReportData{
		PatientName: "Zoë Müller",
		Consultation: model.ConsultationRecord{
			ID:        "c-2",
			StartTime: consultedAt(),
			Symptoms:  []model.Symptom{{Name: "Fièvre", Severity: model.SeverityMild}},
		},
	})

	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(pdfBytes[:4]))
}

func TestJoinOrNone(t *testing.T) {
	assert.Equal(t, "None reported", joinOrNone(nil))
	assert.Equal(t, "a, b", joinOrNone([]string{"a", "b"}))
}

package prompt

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vcscsvcscs/aidoctor-pro/internal/apperr"
	"github.com/vcscsvcscs/aidoctor-pro/pkg/model"
)

func testProfile() *model.HealthProfile {
	return &model.HealthProfile{
		Age:           54,
		Gender:        model.GenderMale,
		Weight:        92.5,
		Height:        178,
		Conditions:    []model.MedicalCondition{model.ConditionDiabetes, model.ConditionHypertension},
		Medications:   []string{"Metformin"},
		Allergies:     nil,
		FamilyHistory: []string{"Heart disease"},
		Lifestyle:     model.Lifestyle{Smoking: true, Alcohol: false, Exercise: model.ExerciseLight},
	}
}

func TestSymptomTriage_HeadacheWithoutProfile(t *testing.T) {
	req, err := SymptomTriage(nil, []model.Symptom{
		{Name: "Headache", Severity: model.SeverityModerate, Duration: "1 day"},
	}, "")
	require.NoError(t, err)

	assert.Contains(t, req.Instruction, "Headache")
	assert.Contains(t, req.Instruction, "Moderate")
	assert.Contains(t, req.Instruction, "No patient profile provided.")
	assert.Contains(t, req.Instruction, "- Headache (Moderate severity, duration: 1 day)")
	assert.NotContains(t, req.Instruction, "ADDITIONAL NOTES")

	assert.Equal(t, model.KindSymptomTriage, req.Kind)
	assert.Equal(t, 0.3, req.Temperature)
	assert.Equal(t, PersonaTriage, req.Persona)
	assert.ElementsMatch(t,
		[]string{"possibleConditions", "urgencyLevel", "recommendedActions", "disclaimer"},
		req.Schema.Required,
	)
}

func TestSymptomTriage_OmitsAbsentOptionalFields(t *testing.T) {
	req, err := SymptomTriage(nil, []model.Symptom{
		{Name: "Cough", Severity: model.SeverityMild},
		{Name: "Chest pain", Severity: model.SeveritySevere, Duration: "Few hours", Location: "Chest", Description: "sharp when breathing"},
	}, "Started after a cold")
	require.NoError(t, err)

	assert.Contains(t, req.Instruction, "- Cough (Mild severity)\n")
	assert.NotContains(t, req.Instruction, "duration: )")
	assert.NotContains(t, req.Instruction, " at :")
	assert.Contains(t, req.Instruction, "- Chest pain (Severe severity, duration: Few hours) at Chest: sharp when breathing")
	assert.Contains(t, req.Instruction, "ADDITIONAL NOTES: Started after a cold")
}

func TestSymptomTriage_IgnoresBlankRows(t *testing.T) {
	_, err := SymptomTriage(nil, []model.Symptom{{Name: "   "}, {Name: ""}}, "notes")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrValidation)
	assert.Equal(t, MsgNoSymptoms, apperr.UserMessage(err))

	_, err = SymptomTriage(nil, nil, "")
	assert.ErrorIs(t, err, apperr.ErrValidation)

	req, err := SymptomTriage(nil, []model.Symptom{{Name: ""}, {Name: "Fever", Severity: model.SeverityMild}}, "")
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(req.Instruction, "\n- "))
}

func TestFormatProfile(t *testing.T) {
	block := formatProfile(testProfile())

	assert.Contains(t, block, "PATIENT PROFILE:")
	assert.Contains(t, block, "- Age: 54 years old")
	assert.Contains(t, block, "- Weight: 92.5 kg, Height: 178 cm")
	assert.Contains(t, block, "- Existing Conditions: Diabetes, Hypertension")
	assert.Contains(t, block, "- Current Medications: Metformin")
	assert.Contains(t, block, "- Known Allergies: None reported")
	assert.Contains(t, block, "- Lifestyle: Smoker, No alcohol, Light activity level")
}

func TestSecondOpinion(t *testing.T) {
	_, err := SecondOpinion(SecondOpinionInput{ExistingDiagnosis: "  "})
	require.ErrorIs(t, err, apperr.ErrValidation)
	assert.Equal(t, MsgNoDiagnosis, apperr.UserMessage(err))

	req, err := SecondOpinion(SecondOpinionInput{ExistingDiagnosis: "Migraine"})
	require.NoError(t, err)
	assert.Contains(t, req.Instruction, "EXISTING DIAGNOSIS: Migraine")
	assert.NotContains(t, req.Instruction, "PRESCRIBED TREATMENT")
	assert.NotContains(t, req.Instruction, "CURRENT SYMPTOMS")
	assert.NotContains(t, req.Instruction, "PATIENT'S CONCERNS")
	assert.ElementsMatch(t,
		[]string{"originalDiagnosis", "analysisConfidence", "agreement", "analysis", "disclaimer"},
		req.Schema.Required,
	)

	req, err = SecondOpinion(SecondOpinionInput{
		ExistingDiagnosis: "Migraine",
		Treatment:         "Sumatriptan",
		Concerns:          "Side effects",
		Symptoms:          []model.Symptom{{Name: "Nausea", Severity: model.SeverityMild}},
		Profile:           testProfile(),
	})
	require.NoError(t, err)
	assert.Contains(t, req.Instruction, "PRESCRIBED TREATMENT: Sumatriptan")
	assert.Contains(t, req.Instruction, "CURRENT SYMPTOMS:\n- Nausea (Mild severity)")
	assert.Contains(t, req.Instruction, "PATIENT'S CONCERNS: Side effects")
	assert.Equal(t, PersonaSecondOpinion, req.Persona)
}

func TestDietPlan(t *testing.T) {
	dietReq := model.DietPlanRequest{Goal: model.GoalLose, TargetWeight: 85, Timeframe: "3 months", MealsPerDay: 3}

	_, err := DietPlan(nil, dietReq)
	require.ErrorIs(t, err, apperr.ErrValidation)
	assert.Equal(t, MsgNoProfile, apperr.UserMessage(err))

	_, err = DietPlan(testProfile(), model.DietPlanRequest{Goal: "bulk", TargetWeight: 85, MealsPerDay: 3})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	req, err := DietPlan(testProfile(), dietReq)
	require.NoError(t, err)
	assert.Contains(t, req.Instruction, "wants to lose weight")
	assert.Contains(t, req.Instruction, "- Target Weight: 85 kg")
	assert.Contains(t, req.Instruction, "- Dietary Restrictions: None reported")
	assert.Equal(t, model.KindDietPlan, req.Kind)
	assert.Contains(t, req.Schema.Required, "weeklyPlan")
}

func TestDrugComparison(t *testing.T) {
	_, err := DrugComparison(model.DrugComparisonRequest{DrugName: " "})
	require.ErrorIs(t, err, apperr.ErrValidation)
	assert.Equal(t, MsgNoDrugName, apperr.UserMessage(err))

	req, err := DrugComparison(model.DrugComparisonRequest{DrugName: "Ibuprofen", Allergies: []string{"Penicillin"}})
	require.NoError(t, err)
	assert.Contains(t, req.Instruction, `"Ibuprofen"`)
	assert.Contains(t, req.Instruction, "- Current Medications: None reported")
	assert.Contains(t, req.Instruction, "- Known Allergies: Penicillin")
	assert.Equal(t, PersonaPharmacist, req.Persona)
}

func TestRecommendations(t *testing.T) {
	_, err := Recommendations(nil)
	require.ErrorIs(t, err, apperr.ErrValidation)

	req, err := Recommendations(testProfile())
	require.NoError(t, err)
	assert.Equal(t, 0.5, req.Temperature)
	assert.Equal(t, []string{"recommendations"}, req.Schema.Required)
}

func TestSchemasSerialize(t *testing.T) {
	for name, schema := range map[string]func() interface{}{
		"triage":          func() interface{} { return TriageSchema() },
		"second opinion":  func() interface{} { return SecondOpinionSchema() },
		"diet plan":       func() interface{} { return DietPlanSchema() },
		"drug comparison": func() interface{} { return DrugComparisonSchema() },
		"recommendations": func() interface{} { return RecommendationsSchema() },
	} {
		t.Run(name, func(t *testing.T) {
			data, err := json.Marshal(schema())
			require.NoError(t, err)
			assert.Contains(t, string(data), `"required"`)
			assert.Contains(t, string(data), `"properties"`)
		})
	}
}

func TestTriageSchema_Enums(t *testing.T) {
	schema := TriageSchema()
	urgency := schema.Properties["urgencyLevel"].Value
	assert.Equal(t, []interface{}{"Low", "Medium", "High", "Emergency"}, urgency.Enum)

	likelihood := schema.Properties["possibleConditions"].Value.Items.Value.Properties["likelihood"].Value
	assert.Equal(t, []interface{}{"Low", "Moderate", "High"}, likelihood.Enum)
}

func TestSymptomTriage_Property(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	properties.Property("every named symptom and its severity appear in the instruction", prop.ForAll(
		func(name string, severity model.Severity) bool {
			req, err := SymptomTriage(nil, []model.Symptom{{Name: name, Severity: severity}}, "")
			if err != nil {
				return false
			}
			return strings.Contains(req.Instruction, name) &&
				strings.Contains(req.Instruction, string(severity)) &&
				!strings.Contains(req.Instruction, "duration:")
		},
		gen.Identifier(),
		gen.OneConstOf(model.SeverityMild, model.SeverityModerate, model.SeveritySevere, model.SeverityCritical),
	))

	properties.TestingRun(t)
}

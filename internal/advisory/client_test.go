package advisory

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/vcscsvcscs/aidoctor-pro/internal/apperr"
	"github.com/vcscsvcscs/aidoctor-pro/internal/llm"
	"github.com/vcscsvcscs/aidoctor-pro/internal/prompt"
	"github.com/vcscsvcscs/aidoctor-pro/pkg/model"
	"go.uber.org/zap"
)

// MockProvider is a mock implementation of llm.Provider
type MockProvider struct {
	mock.Mock
}

func (m *MockProvider) Complete(ctx context.Context, req llm.ChatRequest) (*llm.Completion, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*llm.Completion), args.Error(1)
}

const validTriage = `{
  "possibleConditions": [
    {"name": "Tension headache", "likelihood": "High", "confidenceScore": 72, "description": "Common headache caused by stress"}
  ],
  "urgencyLevel": "Low",
  "recommendedActions": ["Rest", "Drink water"],
  "warningSignsToWatch": null,
  "disclaimer": "Not a medical diagnosis."
}`

func triageRequest(t *testing.T) *prompt.Request {
	req, err := prompt.SymptomTriage(nil, []model.Symptom{
		{Name: "Headache", Severity: model.SeverityModerate, Duration: "1 day"},
	}, "")
	require.NoError(t, err)
	return req
}

func TestInvoke_NoProvider(t *testing.T) {
	client := NewClient(nil, zap.NewNop())
	assert.False(t, client.Available())

	result, err := client.Invoke(context.Background(), triageRequest(t))
	assert.Nil(t, result)
	assert.ErrorIs(t, err, apperr.ErrProviderUnavailable)
}

func TestInvoke_Success(t *testing.T) {
	provider := new(MockProvider)
	provider.On("Complete", mock.Anything, mock.MatchedBy(func(req llm.ChatRequest) bool {
		schema, ok := req.Schema.(map[string]interface{})
		return ok && req.SchemaName == "diagnosis_result" &&
			req.Temperature == 0.3 &&
			req.Persona == prompt.PersonaTriage &&
			schema["type"] == "object"
	})).Return(&llm.Completion{Content: validTriage, PromptTokens: 10, CompletionTokens: 20}, nil).Once()

	client := NewClient(provider, zap.NewNop())
	result, err := client.Invoke(context.Background(), triageRequest(t))
	require.NoError(t, err)

	diagnosis, ok := result.(*model.DiagnosisResult)
	require.True(t, ok)
	assert.Equal(t, model.KindSymptomTriage, result.Kind())
	assert.Equal(t, model.UrgencyLow, diagnosis.UrgencyLevel)
	require.Len(t, diagnosis.PossibleConditions, 1)
	assert.Equal(t, model.LikelihoodHigh, diagnosis.PossibleConditions[0].Likelihood)
	assert.Nil(t, diagnosis.WarningSignsToWatch)
	provider.AssertExpectations(t)
}

func TestInvoke_ProviderErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected error
	}{
		{"unauthorized", fmt.Errorf("%w: status 401", llm.ErrUnauthorized), apperr.ErrProviderUnavailable},
		{"breaker open", fmt.Errorf("%w: circuit breaker is open", llm.ErrUnavailable), apperr.ErrProviderUnavailable},
		{"empty content", llm.ErrEmptyContent, apperr.ErrEmptyResponse},
		{"transport", errors.New("connection reset by peer"), apperr.ErrProviderRequest},
		{"canceled", fmt.Errorf("chat completion request failed: %w", context.Canceled), apperr.ErrProviderRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := new(MockProvider)
			provider.On("Complete", mock.Anything, mock.Anything).Return(nil, tt.err).Once()

			result, err := NewClient(provider, zap.NewNop()).Invoke(context.Background(), triageRequest(t))
			assert.Nil(t, result)
			assert.ErrorIs(t, err, tt.expected)
			assert.Equal(t, apperr.CategoryProvider, apperr.CategoryOf(err))
			assert.NotEmpty(t, apperr.UserMessage(err))
			provider.AssertNumberOfCalls(t, "Complete", 1)
		})
	}
}

func TestInvoke_SchemaViolations(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"not json", "I think you have a headache."},
		{"missing required field", `{"possibleConditions": [], "urgencyLevel": "Low", "recommendedActions": []}`},
		{"required field null", `{"possibleConditions": [], "urgencyLevel": "Low", "recommendedActions": [], "disclaimer": null}`},
		{"value outside enum", `{"possibleConditions": [], "urgencyLevel": "Whenever", "recommendedActions": [], "disclaimer": "d"}`},
		{"wrong type", `{"possibleConditions": "none", "urgencyLevel": "Low", "recommendedActions": [], "disclaimer": "d"}`},
		{"nested enum", `{"possibleConditions": [{"name": "x", "likelihood": "Certain", "confidenceScore": 1, "description": "d"}], "urgencyLevel": "Low", "recommendedActions": [], "disclaimer": "d"}`},
		{"top level array", `[]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := new(MockProvider)
			provider.On("Complete", mock.Anything, mock.Anything).Return(&llm.Completion{Content: tt.content}, nil).Once()

			result, err := NewClient(provider, zap.NewNop()).Invoke(context.Background(), triageRequest(t))
			assert.Nil(t, result, "no partial result")
			assert.ErrorIs(t, err, apperr.ErrSchemaViolation)
		})
	}
}

func TestInvoke_PassesNumbersThrough(t *testing.T) {
	content := `{"possibleConditions": [{"name": "x", "likelihood": "Low", "confidenceScore": 250, "description": "d"}],
		"urgencyLevel": "Emergency", "recommendedActions": [], "disclaimer": "d"}`

	provider := new(MockProvider)
	provider.On("Complete", mock.Anything, mock.Anything).Return(&llm.Completion{Content: content}, nil)

	result, err := NewClient(provider, zap.NewNop()).Invoke(context.Background(), triageRequest(t))
	require.NoError(t, err)
	assert.Equal(t, 250.0, result.(*model.DiagnosisResult).PossibleConditions[0].ConfidenceScore)
}

func TestInvoke_EachKindDecodesToItsRecord(t *testing.T) {
	profile := &model.HealthProfile{Age: 30, Gender: model.GenderFemale, Weight: 60, Height: 165}

	secondOpinion, err := prompt.SecondOpinion(prompt.SecondOpinionInput{ExistingDiagnosis: "Migraine"})
	require.NoError(t, err)
	diet, err := prompt.DietPlan(profile, model.DietPlanRequest{Goal: model.GoalMaintain, TargetWeight: 60, MealsPerDay: 3})
	require.NoError(t, err)
	drug, err := prompt.DrugComparison(model.DrugComparisonRequest{DrugName: "Ibuprofen"})
	require.NoError(t, err)
	recs, err := prompt.Recommendations(profile)
	require.NoError(t, err)

	tests := []struct {
		req     *prompt.Request
		content string
		check   func(t *testing.T, r Result)
	}{
		{secondOpinion, `{"originalDiagnosis": "Migraine", "analysisConfidence": 80, "agreement": "Partially Agrees", "analysis": "a", "disclaimer": "d"}`,
			func(t *testing.T, r Result) {
				assert.Equal(t, model.AgreementPartial, r.(*model.SecondOpinionResult).Agreement)
			}},
		{diet, `{"goal": "maintain", "currentWeight": 60, "targetWeight": 60, "dailyCalorieTarget": 2000,
			"macroBreakdown": {"protein": 30, "carbs": 40, "fats": 30},
			"weeklyPlan": [{"day": "Monday", "totalCalories": 2000, "meals": []}],
			"progressMilestones": [{"week": 1, "expectedWeight": 60}], "disclaimer": "d"}`,
			func(t *testing.T, r Result) {
				plan := r.(*model.DietPlanResult)
				assert.Equal(t, model.GoalMaintain, plan.Goal)
				assert.Equal(t, 1, plan.ProgressMilestones[0].Week)
			}},
		{drug, `{"originalDrug": {"name": "Ibuprofen", "genericName": "ibuprofen", "drugClass": "NSAID", "prescription": false},
			"saferAlternatives": [{"name": "Paracetamol", "safetyRating": "Safer", "reason": "r"}],
			"naturalAlternatives": [], "disclaimer": "d"}`,
			func(t *testing.T, r Result) {
				assert.Equal(t, "NSAID", r.(*model.DrugComparisonResult).OriginalDrug.DrugClass)
			}},
		{recs, `{"recommendations": [{"category": "Diet", "title": "t", "description": "d", "priority": "High", "actionItems": ["a"]}]}`,
			func(t *testing.T, r Result) {
				assert.Len(t, r.(*model.RecommendationsResult).Recommendations, 1)
			}},
	}

	for _, tt := range tests {
		t.Run(string(tt.req.Kind), func(t *testing.T) {
			provider := new(MockProvider)
			provider.On("Complete", mock.Anything, mock.Anything).Return(&llm.Completion{Content: tt.content}, nil)

			result, err := NewClient(provider, zap.NewNop()).Invoke(context.Background(), tt.req)
			require.NoError(t, err)
			assert.Equal(t, tt.req.Kind, result.Kind())
			tt.check(t, result)
		})
	}
}

func TestInvoke_MissingRequiredFieldProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50

	properties := gopter.NewProperties(parameters)

	required := []string{"possibleConditions", "urgencyLevel", "recommendedActions", "disclaimer"}
	full := map[string]string{
		"possibleConditions": `[]`,
		"urgencyLevel":       `"Medium"`,
		"recommendedActions": `["See a doctor"]`,
		"disclaimer":         `"d"`,
	}

	properties.Property("dropping any required field yields SchemaViolation", prop.ForAll(
		func(idx int) bool {
			omit := required[idx]
			content := "{"
			first := true
			for _, name := range required {
				if name == omit {
					continue
				}
				if !first {
					content += ","
				}
				content += fmt.Sprintf("%q:%s", name, full[name])
				first = false
			}
			content += "}"

			provider := new(MockProvider)
			provider.On("Complete", mock.Anything, mock.Anything).Return(&llm.Completion{Content: content}, nil)

			result, err := NewClient(provider, zap.NewNop()).Invoke(context.Background(), triageRequest(t))
			return result == nil && errors.Is(err, apperr.ErrSchemaViolation)
		},
		gen.IntRange(0, len(required)-1),
	))

	properties.TestingRun(t)
}

func TestStripNulls(t *testing.T) {
	in := map[string]interface{}{
		"a": nil,
		"b": map[string]interface{}{"c": nil, "d": 1.0},
		"e": []interface{}{map[string]interface{}{"f": nil}},
	}
	out := stripNulls(in).(map[string]interface{})

	assert.NotContains(t, out, "a")
	assert.Equal(t, map[string]interface{}{"d": 1.0}, out["b"])
	assert.Equal(t, []interface{}{map[string]interface{}{}}, out["e"])
}

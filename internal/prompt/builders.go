package prompt

import (
	"fmt"
	"strings"

	"github.com/vcscsvcscs/aidoctor-pro/internal/apperr"
	"github.com/vcscsvcscs/aidoctor-pro/pkg/model"
)

// User-facing validation messages
const (
	MsgNoSymptoms   = "Please add at least one symptom"
	MsgNoDiagnosis  = "Please enter your existing diagnosis"
	MsgNoProfile    = "Please complete your health profile first"
	MsgNoDrugName   = "Please enter a drug name"
	MsgBadDietInput = "Please check your diet plan details"
)

// SecondOpinionInput is the aggregate collected by the second-opinion view
type SecondOpinionInput struct {
	ExistingDiagnosis string
	Treatment         string
	Concerns          string
	Symptoms          []model.Symptom
	Profile           *model.HealthProfile
}

// SymptomTriage builds the symptom analysis request. Rows without a name are
// ignored; at least one named symptom is required.
func SymptomTriage(profile *model.HealthProfile, symptoms []model.Symptom, notes string) (*Request, error) {
	named := model.NamedSymptoms(symptoms)
	if len(named) == 0 {
		return nil, apperr.Validation(MsgNoSymptoms)
	}

	instruction := assemble(
		"A patient is describing their symptoms and needs guidance.",
		formatProfile(profile),
		"REPORTED SYMPTOMS:\n"+formatSymptoms(named),
		section("ADDITIONAL NOTES", notes),
		`IMPORTANT GUIDELINES:
1. Use simple, everyday language that anyone can understand
2. Be helpful but always recommend consulting a real doctor
3. Consider the patient's profile when assessing risk factors
4. Provide practical, actionable recommendations
5. Be caring and reassuring while being honest about potential concerns`,
		`Analyze these symptoms and provide:
1. Possible conditions that could explain these symptoms, ranked by likelihood
2. The overall urgency level (Low/Medium/High/Emergency)
3. Recommended actions the patient should take
4. Warning signs to watch for
5. Questions they should ask their doctor`,
		"Remember: you are helping someone prepare for a doctor visit, not replacing a medical diagnosis.",
	)

	return &Request{
		Kind:        model.KindSymptomTriage,
		Persona:     PersonaTriage,
		Instruction: instruction,
		Temperature: analysisTemperature,
		SchemaName:  "diagnosis_result",
		Schema:      TriageSchema(),
	}, nil
}

// SecondOpinion builds the second opinion request; the existing diagnosis is required
func SecondOpinion(in SecondOpinionInput) (*Request, error) {
	if strings.TrimSpace(in.ExistingDiagnosis) == "" {
		return nil, apperr.Validation(MsgNoDiagnosis)
	}

	var symptomBlock string
	if named := model.NamedSymptoms(in.Symptoms); len(named) > 0 {
		symptomBlock = "CURRENT SYMPTOMS:\n" + formatSymptoms(named)
	}

	instruction := assemble(
		"You are helping a patient understand their diagnosis better.",
		formatProfile(in.Profile),
		section("EXISTING DIAGNOSIS", in.ExistingDiagnosis)+"\n"+section("PRESCRIBED TREATMENT", in.Treatment),
		symptomBlock,
		section("PATIENT'S CONCERNS", in.Concerns),
		"TASK: Provide a thoughtful second opinion analysis.",
		`GUIDELINES:
1. Be respectful of the original diagnosis; doctors have examined the patient
2. Explain whether the diagnosis aligns with the reported symptoms
3. Mention other conditions worth considering
4. Suggest questions the patient can ask for clarity
5. Recommend additional tests that might be helpful
6. Use simple, clear language`,
		"This is meant to help the patient have a more informed conversation with their healthcare provider, not to undermine their doctor.",
	)

	return &Request{
		Kind:        model.KindSecondOpinion,
		Persona:     PersonaSecondOpinion,
		Instruction: instruction,
		Temperature: analysisTemperature,
		SchemaName:  "second_opinion_result",
		Schema:      SecondOpinionSchema(),
	}, nil
}

// DietPlan builds the weekly meal plan request; a saved profile is required
func DietPlan(profile *model.HealthProfile, req model.DietPlanRequest) (*Request, error) {
	if profile == nil {
		return nil, apperr.Validation(MsgNoProfile)
	}
	if err := req.Validate(); err != nil {
		return nil, apperr.Wrap(apperr.CategoryValidation, apperr.CodeValidationFailed, MsgBadDietInput, err)
	}

	goal := map[model.WeightGoal]string{
		model.GoalLose:     "lose weight",
		model.GoalGain:     "gain weight",
		model.GoalMaintain: "maintain their current weight",
	}[req.Goal]

	timeframe := strings.TrimSpace(req.Timeframe)
	if timeframe == "" {
		timeframe = "No specific timeframe"
	}

	instruction := assemble(
		fmt.Sprintf("Create a personalized 7-day meal plan for a patient who wants to %s.", goal),
		formatProfile(profile),
		fmt.Sprintf(`DIET GOALS:
- Goal: %s
- Current Weight: %s kg
- Target Weight: %s kg
- Timeframe: %s
- Meals Per Day: %d
- Dietary Restrictions: %s
- Food Preferences: %s`,
			req.Goal, formatNumber(profile.Weight), formatNumber(req.TargetWeight), timeframe,
			req.MealsPerDay, joinOrNone(req.DietaryRestrictions), joinOrNone(req.FoodPreferences)),
		`GUIDELINES:
1. Set a safe daily calorie target; never recommend losing more than 1 kg per week
2. Respect every dietary restriction and avoid all known allergens
3. Adjust for existing conditions (for example limit sugar for diabetes and salt for hypertension)
4. Use affordable, easy to find ingredients and simple instructions
5. Give a macro breakdown in percent, a grocery list, practical tips and weekly progress milestones
6. Warn about anything that needs a doctor's supervision`,
	)

	return &Request{
		Kind:        model.KindDietPlan,
		Persona:     PersonaDietitian,
		Instruction: instruction,
		Temperature: analysisTemperature,
		SchemaName:  "diet_plan_result",
		Schema:      DietPlanSchema(),
	}, nil
}

// DrugComparison builds the medication comparison request; the drug name is required
func DrugComparison(req model.DrugComparisonRequest) (*Request, error) {
	drug := strings.TrimSpace(req.DrugName)
	if drug == "" {
		return nil, apperr.Validation(MsgNoDrugName)
	}

	instruction := assemble(
		fmt.Sprintf("A patient wants to understand the medication %q and whether safer or natural alternatives exist.", drug),
		fmt.Sprintf(`PATIENT CONTEXT:
- Current Medications: %s
- Existing Conditions: %s
- Known Allergies: %s`,
			joinOrNone(req.CurrentMedications), joinOrNone(req.Conditions), joinOrNone(req.Allergies)),
		`Provide:
1. Information about the drug: generic name, drug class, common uses, side effects, warnings, typical cost and whether it needs a prescription
2. Safer alternatives with a safety rating (Safer/Similar/Use Caution), the reason, and how cost and side effects compare
3. Natural alternatives (Food/Herb/Supplement/Lifestyle) with an honest evidence level (Strong/Moderate/Limited)
4. Interaction warnings with the current medications, conditions and allergies
5. General advice`,
		"Never suggest stopping or switching a medication without talking to a doctor or pharmacist.",
	)

	return &Request{
		Kind:        model.KindDrugComparison,
		Persona:     PersonaPharmacist,
		Instruction: instruction,
		Temperature: analysisTemperature,
		SchemaName:  "drug_comparison_result",
		Schema:      DrugComparisonSchema(),
	}, nil
}

// Recommendations builds the personalized wellness request; a saved profile is required
func Recommendations(profile *model.HealthProfile) (*Request, error) {
	if profile == nil {
		return nil, apperr.Validation(MsgNoProfile)
	}

	instruction := assemble(
		"Based on this patient's health profile, provide personalized wellness recommendations.",
		formatProfile(profile),
		`Generate practical, actionable health recommendations across these categories:
- Lifestyle improvements
- Diet suggestions
- Exercise recommendations
- Mental health tips
- Preventive care reminders`,
		"Focus on simple changes that can make a real difference. Prioritize based on their conditions and risk factors.",
	)

	return &Request{
		Kind:        model.KindRecommendations,
		Persona:     PersonaWellness,
		Instruction: instruction,
		Temperature: recommendationsTemperature,
		SchemaName:  "health_recommendations",
		Schema:      RecommendationsSchema(),
	}, nil
}

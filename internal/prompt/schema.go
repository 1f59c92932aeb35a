package prompt

import (
	"github.com/getkin/kin-openapi/openapi3"
)

func stringProp(description string) *openapi3.Schema {
	s := openapi3.NewStringSchema()
	s.Description = description
	return s
}

func enumProp(values ...string) *openapi3.Schema {
	enum := make([]interface{}, len(values))
	for i, v := range values {
		enum[i] = v
	}
	return openapi3.NewStringSchema().WithEnum(enum...)
}

func numberProp(description string) *openapi3.Schema {
	s := openapi3.NewFloat64Schema()
	s.Description = description
	return s
}

func integerProp(description string) *openapi3.Schema {
	s := openapi3.NewIntegerSchema()
	s.Description = description
	return s
}

func stringList() *openapi3.Schema {
	return openapi3.NewArraySchema().WithItems(openapi3.NewStringSchema())
}

func listOf(item *openapi3.Schema) *openapi3.Schema {
	return openapi3.NewArraySchema().WithItems(item)
}

type field struct {
	name   string
	schema *openapi3.Schema
}

// object builds an object schema from its fields and required names
func object(required []string, fields ...field) *openapi3.Schema {
	s := openapi3.NewObjectSchema()
	for _, f := range fields {
		s.WithProperty(f.name, f.schema)
	}
	s.Required = required
	return s
}

// TriageSchema describes a DiagnosisResult
func TriageSchema() *openapi3.Schema {
	condition := object(
		[]string{"name", "likelihood", "confidenceScore", "description"},
		field{"name", openapi3.NewStringSchema()},
		field{"likelihood", enumProp("Low", "Moderate", "High")},
		field{"confidenceScore", numberProp("0-100 confidence percentage")},
		field{"description", stringProp("Simple explanation of what this condition is")},
		field{"commonSymptoms", stringList()},
		field{"riskFactors", stringList()},
		field{"typicalTreatments", stringList()},
		field{"whenToSeek", stringProp("When to seek immediate care")},
	)

	return object(
		[]string{"possibleConditions", "urgencyLevel", "recommendedActions", "disclaimer"},
		field{"possibleConditions", listOf(condition)},
		field{"urgencyLevel", enumProp("Low", "Medium", "High", "Emergency")},
		field{"recommendedActions", stringList()},
		field{"warningSignsToWatch", stringList()},
		field{"questionsForDoctor", stringList()},
		field{"disclaimer", openapi3.NewStringSchema()},
	)
}

// SecondOpinionSchema describes a SecondOpinionResult
func SecondOpinionSchema() *openapi3.Schema {
	alternative := object(
		[]string{"name", "reason"},
		field{"name", openapi3.NewStringSchema()},
		field{"reason", openapi3.NewStringSchema()},
		field{"differentiatingFactors", stringList()},
	)

	return object(
		[]string{"originalDiagnosis", "analysisConfidence", "agreement", "analysis", "disclaimer"},
		field{"originalDiagnosis", openapi3.NewStringSchema()},
		field{"analysisConfidence", numberProp("0-100 confidence in analysis")},
		field{"agreement", enumProp("Fully Agrees", "Partially Agrees", "Suggests Review")},
		field{"analysis", stringProp("Detailed but simple analysis of the diagnosis")},
		field{"alternativeConsiderations", listOf(alternative)},
		field{"additionalTestsSuggested", stringList()},
		field{"questionsToAsk", stringList()},
		field{"secondOpinionSummary", openapi3.NewStringSchema()},
		field{"disclaimer", openapi3.NewStringSchema()},
	)
}

// DietPlanSchema describes a DietPlanResult
func DietPlanSchema() *openapi3.Schema {
	meal := object(
		[]string{"name", "time", "calories", "protein", "carbs", "fats"},
		field{"name", openapi3.NewStringSchema()},
		field{"time", stringProp("Suggested time of day, e.g. 08:00")},
		field{"calories", numberProp("kcal")},
		field{"protein", numberProp("grams")},
		field{"carbs", numberProp("grams")},
		field{"fats", numberProp("grams")},
		field{"ingredients", stringList()},
		field{"instructions", openapi3.NewStringSchema()},
		field{"alternatives", stringList()},
	)

	day := object(
		[]string{"day", "totalCalories", "meals"},
		field{"day", stringProp("Day of the week")},
		field{"totalCalories", numberProp("kcal for the whole day")},
		field{"meals", listOf(meal)},
		field{"snacks", stringList()},
		field{"waterIntake", openapi3.NewStringSchema()},
	)

	macros := object(
		[]string{"protein", "carbs", "fats"},
		field{"protein", numberProp("percentage of daily calories")},
		field{"carbs", numberProp("percentage of daily calories")},
		field{"fats", numberProp("percentage of daily calories")},
	)

	milestone := object(
		[]string{"week", "expectedWeight"},
		field{"week", integerProp("Week number from the start of the plan")},
		field{"expectedWeight", numberProp("kg")},
	)

	return object(
		[]string{"goal", "currentWeight", "targetWeight", "dailyCalorieTarget", "macroBreakdown", "weeklyPlan", "disclaimer"},
		field{"goal", enumProp("lose", "gain", "maintain")},
		field{"currentWeight", numberProp("kg")},
		field{"targetWeight", numberProp("kg")},
		field{"dailyCalorieTarget", numberProp("kcal")},
		field{"macroBreakdown", macros},
		field{"weeklyPlan", listOf(day)},
		field{"groceryList", stringList()},
		field{"tips", stringList()},
		field{"warnings", stringList()},
		field{"progressMilestones", listOf(milestone)},
		field{"disclaimer", openapi3.NewStringSchema()},
	)
}

// DrugComparisonSchema describes a DrugComparisonResult
func DrugComparisonSchema() *openapi3.Schema {
	drug := object(
		[]string{"name", "genericName", "drugClass", "prescription"},
		field{"name", openapi3.NewStringSchema()},
		field{"genericName", openapi3.NewStringSchema()},
		field{"drugClass", openapi3.NewStringSchema()},
		field{"commonUses", stringList()},
		field{"sideEffects", stringList()},
		field{"warnings", stringList()},
		field{"averageCost", stringProp("Typical price range")},
		field{"prescription", openapi3.NewBoolSchema()},
	)

	alternative := object(
		[]string{"name", "safetyRating", "reason"},
		field{"name", openapi3.NewStringSchema()},
		field{"genericName", openapi3.NewStringSchema()},
		field{"safetyRating", enumProp("Safer", "Similar", "Use Caution")},
		field{"reason", openapi3.NewStringSchema()},
		field{"costComparison", enumProp("Cheaper", "Similar", "More Expensive")},
		field{"sideEffectComparison", openapi3.NewStringSchema()},
		field{"effectiveness", openapi3.NewStringSchema()},
	)

	natural := object(
		[]string{"name", "type", "evidenceLevel"},
		field{"name", openapi3.NewStringSchema()},
		field{"type", enumProp("Food", "Herb", "Supplement", "Lifestyle")},
		field{"benefits", stringList()},
		field{"howToUse", openapi3.NewStringSchema()},
		field{"evidenceLevel", enumProp("Strong", "Moderate", "Limited")},
		field{"warnings", stringList()},
		field{"foodSources", stringList()},
	)

	return object(
		[]string{"originalDrug", "saferAlternatives", "naturalAlternatives", "disclaimer"},
		field{"originalDrug", drug},
		field{"saferAlternatives", listOf(alternative)},
		field{"naturalAlternatives", listOf(natural)},
		field{"interactionWarnings", stringList()},
		field{"generalAdvice", stringList()},
		field{"disclaimer", openapi3.NewStringSchema()},
	)
}

// RecommendationsSchema wraps the recommendation list in an object, since
// structured output requires an object at the top level
func RecommendationsSchema() *openapi3.Schema {
	recommendation := object(
		[]string{"category", "title", "description", "priority", "actionItems"},
		field{"category", enumProp("Lifestyle", "Diet", "Exercise", "Mental Health", "Preventive Care")},
		field{"title", openapi3.NewStringSchema()},
		field{"description", openapi3.NewStringSchema()},
		field{"priority", enumProp("High", "Medium", "Low")},
		field{"actionItems", stringList()},
	)

	return object(
		[]string{"recommendations"},
		field{"recommendations", listOf(recommendation)},
	)
}

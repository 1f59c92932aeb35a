package model

// Urgency is the overall urgency reported for a symptom triage
type Urgency string

const (
	UrgencyLow       Urgency = "Low"
	UrgencyMedium    Urgency = "Medium"
	UrgencyHigh      Urgency = "High"
	UrgencyEmergency Urgency = "Emergency"
)

// Likelihood of a possible condition
type Likelihood string

const (
	LikelihoodLow      Likelihood = "Low"
	LikelihoodModerate Likelihood = "Moderate"
	LikelihoodHigh     Likelihood = "High"
)

// Agreement of a second opinion with the existing diagnosis
type Agreement string

const (
	AgreementFull    Agreement = "Fully Agrees"
	AgreementPartial Agreement = "Partially Agrees"
	AgreementReview  Agreement = "Suggests Review"
)

// PossibleCondition is one ranked candidate explanation of the symptoms
type PossibleCondition struct {
	Name              string     `json:"name"`
	Likelihood        Likelihood `json:"likelihood"`
	ConfidenceScore   float64    `json:"confidenceScore"`
	Description       string     `json:"description"`
	CommonSymptoms    []string   `json:"commonSymptoms,omitempty"`
	RiskFactors       []string   `json:"riskFactors,omitempty"`
	TypicalTreatments []string   `json:"typicalTreatments,omitempty"`
	WhenToSeek        string     `json:"whenToSeek,omitempty"`
}

// DiagnosisResult is the structured answer to a symptom triage
type DiagnosisResult struct {
	PossibleConditions  []PossibleCondition `json:"possibleConditions"`
	UrgencyLevel        Urgency             `json:"urgencyLevel"`
	RecommendedActions  []string            `json:"recommendedActions"`
	WarningSignsToWatch []string            `json:"warningSignsToWatch,omitempty"`
	QuestionsForDoctor  []string            `json:"questionsForDoctor,omitempty"`
	Disclaimer          string              `json:"disclaimer"`
}

// Kind implements the advisory result sum type.
func (*DiagnosisResult) Kind() AnalysisKind { return KindSymptomTriage }

// AlternativeCondition is a condition worth considering besides the existing diagnosis
type AlternativeCondition struct {
	Name                   string   `json:"name"`
	Reason                 string   `json:"reason"`
	DifferentiatingFactors []string `json:"differentiatingFactors,omitempty"`
}

// SecondOpinionResult is the structured answer to a second-opinion request
type SecondOpinionResult struct {
	OriginalDiagnosis         string                 `json:"originalDiagnosis"`
	AnalysisConfidence        float64                `json:"analysisConfidence"`
	Agreement                 Agreement              `json:"agreement"`
	Analysis                  string                 `json:"analysis"`
	AlternativeConsiderations []AlternativeCondition `json:"alternativeConsiderations,omitempty"`
	AdditionalTestsSuggested  []string               `json:"additionalTestsSuggested,omitempty"`
	QuestionsToAsk            []string               `json:"questionsToAsk,omitempty"`
	SecondOpinionSummary      string                 `json:"secondOpinionSummary,omitempty"`
	Disclaimer                string                 `json:"disclaimer"`
}

func (*SecondOpinionResult) Kind() AnalysisKind { return KindSecondOpinion }

// WeightGoal is the direction of a diet plan
type WeightGoal string

const (
	GoalLose     WeightGoal = "lose"
	GoalGain     WeightGoal = "gain"
	GoalMaintain WeightGoal = "maintain"
)

// DietPlanRequest carries the diet-specific inputs of a diet plan analysis
type DietPlanRequest struct {
	Goal                WeightGoal `json:"goal"`
	TargetWeight        float64    `json:"targetWeight"`
	Timeframe           string     `json:"timeframe"`
	DietaryRestrictions []string   `json:"dietaryRestrictions"`
	FoodPreferences     []string   `json:"foodPreferences"`
	MealsPerDay         int        `json:"mealsPerDay"`
}

type Meal struct {
	Name         string   `json:"name"`
	Time         string   `json:"time"`
	Calories     float64  `json:"calories"`
	Protein      float64  `json:"protein"`
	Carbs        float64  `json:"carbs"`
	Fats         float64  `json:"fats"`
	Ingredients  []string `json:"ingredients,omitempty"`
	Instructions string   `json:"instructions,omitempty"`
	Alternatives []string `json:"alternatives,omitempty"`
}

type DailyMealPlan struct {
	Day           string   `json:"day"`
	TotalCalories float64  `json:"totalCalories"`
	Meals         []Meal   `json:"meals"`
	Snacks        []string `json:"snacks,omitempty"`
	WaterIntake   string   `json:"waterIntake,omitempty"`
}

type MacroBreakdown struct {
	Protein float64 `json:"protein"`
	Carbs   float64 `json:"carbs"`
	Fats    float64 `json:"fats"`
}

type ProgressMilestone struct {
	Week           int     `json:"week"`
	ExpectedWeight float64 `json:"expectedWeight"`
}

// DietPlanResult is the structured answer to a diet plan request
type DietPlanResult struct {
	Goal               WeightGoal          `json:"goal"`
	CurrentWeight      float64             `json:"currentWeight"`
	TargetWeight       float64             `json:"targetWeight"`
	DailyCalorieTarget float64             `json:"dailyCalorieTarget"`
	MacroBreakdown     MacroBreakdown      `json:"macroBreakdown"`
	WeeklyPlan         []DailyMealPlan     `json:"weeklyPlan"`
	GroceryList        []string            `json:"groceryList,omitempty"`
	Tips               []string            `json:"tips,omitempty"`
	Warnings           []string            `json:"warnings,omitempty"`
	ProgressMilestones []ProgressMilestone `json:"progressMilestones,omitempty"`
	Disclaimer         string              `json:"disclaimer"`
}

func (*DietPlanResult) Kind() AnalysisKind { return KindDietPlan }

// DrugComparisonRequest carries the inputs of a drug comparison
type DrugComparisonRequest struct {
	DrugName           string   `json:"drugName"`
	CurrentMedications []string `json:"currentMedications"`
	Conditions         []string `json:"conditions"`
	Allergies          []string `json:"allergies"`
}

type DrugInfo struct {
	Name         string   `json:"name"`
	GenericName  string   `json:"genericName"`
	DrugClass    string   `json:"drugClass"`
	CommonUses   []string `json:"commonUses,omitempty"`
	SideEffects  []string `json:"sideEffects,omitempty"`
	Warnings     []string `json:"warnings,omitempty"`
	AverageCost  string   `json:"averageCost,omitempty"`
	Prescription bool     `json:"prescription"`
}

type DrugAlternative struct {
	Name                 string `json:"name"`
	GenericName          string `json:"genericName,omitempty"`
	SafetyRating         string `json:"safetyRating"`
	Reason               string `json:"reason"`
	CostComparison       string `json:"costComparison,omitempty"`
	SideEffectComparison string `json:"sideEffectComparison,omitempty"`
	Effectiveness        string `json:"effectiveness,omitempty"`
}

type NaturalAlternative struct {
	Name          string   `json:"name"`
	Type          string   `json:"type"`
	Benefits      []string `json:"benefits,omitempty"`
	HowToUse      string   `json:"howToUse,omitempty"`
	EvidenceLevel string   `json:"evidenceLevel"`
	Warnings      []string `json:"warnings,omitempty"`
	FoodSources   []string `json:"foodSources,omitempty"`
}

// DrugComparisonResult is the structured answer to a drug comparison
type DrugComparisonResult struct {
	OriginalDrug        DrugInfo             `json:"originalDrug"`
	SaferAlternatives   []DrugAlternative    `json:"saferAlternatives"`
	NaturalAlternatives []NaturalAlternative `json:"naturalAlternatives"`
	InteractionWarnings []string             `json:"interactionWarnings,omitempty"`
	GeneralAdvice       []string             `json:"generalAdvice,omitempty"`
	Disclaimer          string               `json:"disclaimer"`
}

func (*DrugComparisonResult) Kind() AnalysisKind { return KindDrugComparison }

// HealthRecommendation is one personalized wellness suggestion
type HealthRecommendation struct {
	Category    string   `json:"category"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Priority    string   `json:"priority"`
	ActionItems []string `json:"actionItems"`
}

// RecommendationsResult wraps the recommendations list returned for a profile
type RecommendationsResult struct {
	Recommendations []HealthRecommendation `json:"recommendations"`
}

func (*RecommendationsResult) Kind() AnalysisKind { return KindRecommendations }

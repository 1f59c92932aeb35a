package model

import "time"

// Account represents a registered user. The credential verifier is never
// serialized into API responses.
type Account struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// Gender is the closed set of genders a profile may carry.
type Gender string

const (
	GenderMale        Gender = "Male"
	GenderFemale      Gender = "Female"
	GenderOther       Gender = "Other"
	GenderUnspecified Gender = "Prefer not to say"
)

// MedicalCondition is a pre-existing condition a patient can report.
type MedicalCondition string

const (
	ConditionDiabetes        MedicalCondition = "Diabetes"
	ConditionHypertension    MedicalCondition = "Hypertension"
	ConditionHeartDisease    MedicalCondition = "Heart Disease"
	ConditionAsthma          MedicalCondition = "Asthma"
	ConditionCOPD            MedicalCondition = "COPD"
	ConditionKidneyDisease   MedicalCondition = "Kidney Disease"
	ConditionLiverDisease    MedicalCondition = "Liver Disease"
	ConditionThyroidDisorder MedicalCondition = "Thyroid Disorder"
	ConditionArthritis       MedicalCondition = "Arthritis"
	ConditionDepression      MedicalCondition = "Depression"
	ConditionAnxiety         MedicalCondition = "Anxiety"
	ConditionMigraine        MedicalCondition = "Migraine"
	ConditionEpilepsy        MedicalCondition = "Epilepsy"
	ConditionCancer          MedicalCondition = "Cancer"
	ConditionNone            MedicalCondition = "None"
)

// ExerciseLevel is the 4-way activity scale used in the lifestyle record.
type ExerciseLevel string

const (
	ExerciseSedentary ExerciseLevel = "Sedentary"
	ExerciseLight     ExerciseLevel = "Light"
	ExerciseModerate  ExerciseLevel = "Moderate"
	ExerciseActive    ExerciseLevel = "Active"
)

// Lifestyle holds the lifestyle sub-record of a health profile
type Lifestyle struct {
	Smoking  bool          `json:"smoking"`
	Alcohol  bool          `json:"alcohol"`
	Exercise ExerciseLevel `json:"exercise"`
}

// HealthProfile is the single health profile owned by an account
type HealthProfile struct {
	ID            string             `json:"id,omitempty"`
	Age           int                `json:"age"`
	Gender        Gender             `json:"gender"`
	Weight        float64            `json:"weight"` // kg
	Height        float64            `json:"height"` // cm
	Conditions    []MedicalCondition `json:"conditions"`
	Medications   []string           `json:"medications"`
	Allergies     []string           `json:"allergies"`
	FamilyHistory []string           `json:"familyHistory"`
	Lifestyle     Lifestyle          `json:"lifestyle"`
	LastUpdated   time.Time          `json:"lastUpdated"`
}

// Severity is the 4-way symptom severity scale
type Severity string

const (
	SeverityMild     Severity = "Mild"
	SeverityModerate Severity = "Moderate"
	SeveritySevere   Severity = "Severe"
	SeverityCritical Severity = "Critical"
)

// Symptom is a single entry of the transient symptom list
type Symptom struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Duration    string   `json:"duration,omitempty"`
	Severity    Severity `json:"severity"`
	Location    string   `json:"location,omitempty"`
	Description string   `json:"description,omitempty"`
}

// AnalysisKind identifies the request/response contract used for an analysis
type AnalysisKind string

const (
	KindSymptomTriage   AnalysisKind = "symptom-triage"
	KindSecondOpinion   AnalysisKind = "second-opinion"
	KindDietPlan        AnalysisKind = "diet-plan"
	KindDrugComparison  AnalysisKind = "drug-comparison"
	KindRecommendations AnalysisKind = "health-recommendations"
)

// AnalysisKinds lists every supported kind in display order
var AnalysisKinds = []AnalysisKind{
	KindSymptomTriage,
	KindSecondOpinion,
	KindDietPlan,
	KindDrugComparison,
	KindRecommendations,
}

// ConsultationRecord is one saved interaction attributed to an account
type ConsultationRecord struct {
	ID              string                 `json:"id"`
	StartTime       time.Time              `json:"startTime"`
	Kind            AnalysisKind           `json:"kind,omitempty"`
	Symptoms        []Symptom              `json:"symptoms"`
	Diagnosis       *DiagnosisResult       `json:"diagnosis,omitempty"`
	SecondOpinion   *SecondOpinionResult   `json:"secondOpinion,omitempty"`
	DietPlan        *DietPlanResult        `json:"dietPlan,omitempty"`
	DrugComparison  *DrugComparisonResult  `json:"drugComparison,omitempty"`
	Recommendations *RecommendationsResult `json:"recommendations,omitempty"`
	PatientProfile  *HealthProfile         `json:"patientProfile,omitempty"`
}

// UserData is the per-account bucket persisted in the key-value store
type UserData struct {
	Profile       *HealthProfile       `json:"profile"`
	Consultations []ConsultationRecord `json:"consultations"`
}

// Clone returns a deep copy of the profile
func (p *HealthProfile) Clone() *HealthProfile {
	if p == nil {
		return nil
	}
	c := *p
	c.Conditions = append([]MedicalCondition(nil), p.Conditions...)
	c.Medications = append([]string(nil), p.Medications...)
	c.Allergies = append([]string(nil), p.Allergies...)
	c.FamilyHistory = append([]string(nil), p.FamilyHistory...)
	return &c
}

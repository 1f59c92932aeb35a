// Package controller holds the per-client session state machine that sequences
// profile, symptoms, analysis and history.
package controller

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vcscsvcscs/aidoctor-pro/internal/advisory"
	"github.com/vcscsvcscs/aidoctor-pro/internal/apperr"
	"github.com/vcscsvcscs/aidoctor-pro/internal/prompt"
	"github.com/vcscsvcscs/aidoctor-pro/pkg/model"
	"go.uber.org/zap"
)

// View is a named screen of the client
type View string

const (
	ViewHome          View = "home"
	ViewConsultation  View = "consultation"
	ViewSecondOpinion View = "second-opinion"
	ViewProfile       View = "profile"
	ViewHistory       View = "history"
	ViewDietPlan      View = "diet-plan"
	ViewDrugCompare   View = "drug-compare"
)

// Views lists every navigable view
var Views = []View{ViewHome, ViewConsultation, ViewSecondOpinion, ViewProfile, ViewHistory, ViewDietPlan, ViewDrugCompare}

// ErrSuperseded is returned by Submit when navigation or an account change
// happened while the provider call was in flight. The result was discarded.
var ErrSuperseded = errors.New("analysis superseded by a newer action")

// Repository is the per-account storage the controller reads and writes
type Repository interface {
	GetData(ctx context.Context, accountID string) model.UserData
	SaveProfile(ctx context.Context, accountID string, profile model.HealthProfile) (model.HealthProfile, error)
	SaveConsultation(ctx context.Context, accountID string, record model.ConsultationRecord) error
	DeleteConsultation(ctx context.Context, accountID, id string) error
}

// Advisor runs one analysis request
type Advisor interface {
	Invoke(ctx context.Context, req *prompt.Request) (advisory.Result, error)
}

// SecondOpinionForm holds the free-text fields of the second opinion view
type SecondOpinionForm struct {
	ExistingDiagnosis string `json:"existingDiagnosis"`
	Treatment         string `json:"treatment"`
	Concerns          string `json:"concerns"`
}

// AnalysisState is the per-kind submission state
type AnalysisState struct {
	Busy           bool            `json:"busy"`
	CanSubmit      bool            `json:"canSubmit"`
	Result         advisory.Result `json:"result,omitempty"`
	Error          string          `json:"error,omitempty"`
	SaveError      string          `json:"saveError,omitempty"`
	ConsultationID string          `json:"consultationId,omitempty"`
}

// Snapshot is a copy of the controller state safe to hand out
type Snapshot struct {
	View              View                                 `json:"view"`
	Account           *model.Account                       `json:"account,omitempty"`
	Profile           *model.HealthProfile                 `json:"profile,omitempty"`
	Symptoms          []model.Symptom                      `json:"symptoms"`
	Notes             string                               `json:"notes"`
	SecondOpinionForm SecondOpinionForm                    `json:"secondOpinionForm"`
	DietPlanForm      model.DietPlanRequest                `json:"dietPlanForm"`
	DrugForm          model.DrugComparisonRequest          `json:"drugForm"`
	Analyses          map[model.AnalysisKind]AnalysisState `json:"analyses"`
	Consultations     []model.ConsultationRecord           `json:"consultations"`
	Generation        uint64                               `json:"generation"`
}

type analysis struct {
	busy           bool
	result         advisory.Result
	errMessage     string
	saveError      string
	consultationID string
}

// Controller is the state machine of one client. All state is guarded by mu;
// provider calls run outside the lock.
type Controller struct {
	mu sync.Mutex

	repo    Repository
	advisor Advisor
	logger  *zap.Logger
	now     func() time.Time

	view          View
	generation    uint64
	account       *model.Account
	profile       *model.HealthProfile
	symptoms      []model.Symptom
	notes         string
	secondOpinion SecondOpinionForm
	dietForm      model.DietPlanRequest
	drugForm      model.DrugComparisonRequest
	analyses      map[model.AnalysisKind]*analysis
	consultations []model.ConsultationRecord
}

// New creates a guest controller on the home view
func New(repo Repository, advisor Advisor, logger *zap.Logger) *Controller {
	c := &Controller{
		repo:    repo,
		advisor: advisor,
		logger:  logger,
		now:     time.Now,
	}
	c.reset()
	return c
}

// reset returns every field except the account to its initial value
func (c *Controller) reset() {
	c.view = ViewHome
	c.profile = nil
	c.symptoms = []model.Symptom{}
	c.notes = ""
	c.secondOpinion = SecondOpinionForm{}
	c.dietForm = defaultDietForm(nil)
	c.drugForm = model.DrugComparisonRequest{}
	c.consultations = []model.ConsultationRecord{}
	c.analyses = make(map[model.AnalysisKind]*analysis, len(model.AnalysisKinds))
	for _, kind := range model.AnalysisKinds {
		c.analyses[kind] = &analysis{}
	}
}

func defaultDietForm(profile *model.HealthProfile) model.DietPlanRequest {
	target := 70.0
	if profile != nil && profile.Weight > 0 {
		target = profile.Weight
	}
	return model.DietPlanRequest{
		Goal:         model.GoalLose,
		TargetWeight: target,
		Timeframe:    "3 months",
		MealsPerDay:  3,
	}
}

// supersede invalidates every in-flight submission. Caller holds mu.
func (c *Controller) supersede() {
	c.generation++
	for _, a := range c.analyses {
		a.busy = false
	}
}

// Navigate switches the current view. Changing view discards in-flight results.
func (c *Controller) Navigate(view View) error {
	if !slices.Contains(Views, view) {
		return apperr.New(apperr.CategoryValidation, apperr.CodeUnknownView, "Unknown view")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if view == c.view {
		return nil
	}
	c.view = view
	c.supersede()
	return nil
}

// AttachAccount binds the controller to an authenticated account and loads its data
func (c *Controller) AttachAccount(ctx context.Context, account model.Account) {
	data := c.repo.GetData(ctx, account.ID)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.account != nil && c.account.ID == account.ID {
		c.consultations = data.Consultations
		return
	}

	c.supersede()
	c.reset()
	c.account = &account
	c.profile = data.Profile
	c.dietForm = defaultDietForm(data.Profile)
	c.consultations = data.Consultations
	if c.consultations == nil {
		c.consultations = []model.ConsultationRecord{}
	}

	c.logger.Info("account attached to session",
		zap.String("account_id", account.ID),
		zap.Uint64("generation", c.generation),
	)
}

// DetachAccount returns the controller to guest mode with a clean state
func (c *Controller) DetachAccount() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.account != nil {
		c.logger.Info("account detached from session", zap.String("account_id", c.account.ID))
	}
	c.supersede()
	c.account = nil
	c.reset()
}

// AccountID returns the attached account id, or "" for a guest
func (c *Controller) AccountID() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.account == nil {
		return ""
	}
	return c.account.ID
}

// SaveProfile validates and replaces the whole profile. Guests keep it in memory only.
func (c *Controller) SaveProfile(ctx context.Context, profile model.HealthProfile) (*model.HealthProfile, error) {
	if err := profile.Validate(); err != nil {
		return nil, apperr.Wrap(apperr.CategoryValidation, apperr.CodeValidationFailed, "Please check your health profile", err)
	}
	profile.LastUpdated = time.Time{}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.account != nil {
		saved, err := c.repo.SaveProfile(ctx, c.account.ID, profile)
		if err != nil {
			return nil, err
		}
		profile = saved
	} else {
		stamp := c.now().UTC()
		if c.profile != nil && stamp.Before(c.profile.LastUpdated) {
			stamp = c.profile.LastUpdated
		}
		if profile.ID == "" && c.profile != nil {
			profile.ID = c.profile.ID
		}
		if profile.ID == "" {
			profile.ID = uuid.New().String()
		}
		profile.LastUpdated = stamp
	}

	c.profile = &profile
	if c.analyses[model.KindDietPlan].result == nil {
		c.dietForm.TargetWeight = defaultDietForm(&profile).TargetWeight
	}
	return profile.Clone(), nil
}

func prepareSymptom(s model.Symptom) (model.Symptom, error) {
	s.Normalize()
	if err := s.Validate(); err != nil {
		return model.Symptom{}, apperr.Wrap(apperr.CategoryValidation, apperr.CodeValidationFailed, "Please check the symptom details", err)
	}
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	return s, nil
}

// SetSymptoms replaces the symptom list
func (c *Controller) SetSymptoms(symptoms []model.Symptom) ([]model.Symptom, error) {
	prepared := make([]model.Symptom, 0, len(symptoms))
	for _, s := range symptoms {
		p, err := prepareSymptom(s)
		if err != nil {
			return nil, err
		}
		prepared = append(prepared, p)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.symptoms = prepared
	return slices.Clone(prepared), nil
}

// AddSymptom appends one symptom and returns it with its id
func (c *Controller) AddSymptom(symptom model.Symptom) (model.Symptom, error) {
	symptom.ID = ""
	prepared, err := prepareSymptom(symptom)
	if err != nil {
		return model.Symptom{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.symptoms = append(c.symptoms, prepared)
	return prepared, nil
}

// UpdateSymptom replaces the symptom with the given id
func (c *Controller) UpdateSymptom(id string, symptom model.Symptom) (model.Symptom, error) {
	symptom.ID = id
	prepared, err := prepareSymptom(symptom)
	if err != nil {
		return model.Symptom{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.symptoms {
		if c.symptoms[i].ID == id {
			c.symptoms[i] = prepared
			return prepared, nil
		}
	}
	return model.Symptom{}, apperr.New(apperr.CategoryValidation, apperr.CodeNotFound, "Symptom not found")
}

// RemoveSymptom deletes the symptom with the given id; an unknown id is a no-op
func (c *Controller) RemoveSymptom(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.symptoms = slices.DeleteFunc(c.symptoms, func(s model.Symptom) bool {
		return s.ID == id
	})
}

func (c *Controller) SetNotes(notes string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.notes = notes
}

func (c *Controller) SetSecondOpinionForm(form SecondOpinionForm) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.secondOpinion = form
}

// SetDietPlanForm stores the diet inputs; they are validated on submit
func (c *Controller) SetDietPlanForm(form model.DietPlanRequest) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dietForm = form
}

func (c *Controller) SetDrugForm(form model.DrugComparisonRequest) {
	form.DrugName = strings.TrimSpace(form.DrugName)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.drugForm = form
}

// ViewConsultation re-hydrates a saved record into the view of its kind
// without calling the provider
func (c *Controller) ViewConsultation(ctx context.Context, id string) (*model.ConsultationRecord, error) {
	accountID := c.AccountID()
	if accountID == "" {
		return nil, apperr.New(apperr.CategoryAuth, apperr.CodeUnauthenticated, "Please sign in to view your history")
	}

	var record *model.ConsultationRecord
	for _, r := range c.repo.GetData(ctx, accountID).Consultations {
		if r.ID == id {
			record = &r
			break
		}
	}
	if record == nil {
		return nil, apperr.New(apperr.CategoryValidation, apperr.CodeNotFound, "Consultation not found")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.supersede()
	c.symptoms = slices.Clone(record.Symptoms)
	if c.symptoms == nil {
		c.symptoms = []model.Symptom{}
	}

	kind := record.Kind
	if kind == "" {
		kind = model.KindSymptomTriage
	}
	a := c.analyses[kind]
	a.errMessage = ""
	a.saveError = ""
	a.consultationID = record.ID

	switch kind {
	case model.KindSecondOpinion:
		c.view = ViewSecondOpinion
		if record.SecondOpinion != nil {
			a.result = record.SecondOpinion
			c.secondOpinion.ExistingDiagnosis = record.SecondOpinion.OriginalDiagnosis
		}
	case model.KindDietPlan:
		c.view = ViewDietPlan
		if record.DietPlan != nil {
			a.result = record.DietPlan
		}
	case model.KindDrugComparison:
		c.view = ViewDrugCompare
		if record.DrugComparison != nil {
			a.result = record.DrugComparison
		}
	case model.KindRecommendations:
		c.view = ViewHome
		if record.Recommendations != nil {
			a.result = record.Recommendations
		}
	default:
		c.view = ViewConsultation
		if record.Diagnosis != nil {
			a.result = record.Diagnosis
		}
	}

	return record, nil
}

// DeleteConsultation removes a saved record; an unknown id is a no-op
func (c *Controller) DeleteConsultation(ctx context.Context, id string) error {
	accountID := c.AccountID()
	if accountID == "" {
		return apperr.New(apperr.CategoryAuth, apperr.CodeUnauthenticated, "Please sign in to manage your history")
	}

	if err := c.repo.DeleteConsultation(ctx, accountID, id); err != nil {
		return err
	}

	data := c.repo.GetData(ctx, accountID)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.account != nil && c.account.ID == accountID {
		c.consultations = data.Consultations
	}
	return nil
}

// Snapshot returns a copy of the current state
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap := Snapshot{
		View:              c.view,
		Profile:           c.profile.Clone(),
		Symptoms:          slices.Clone(c.symptoms),
		Notes:             c.notes,
		SecondOpinionForm: c.secondOpinion,
		DietPlanForm:      c.dietForm,
		DrugForm:          c.drugForm,
		Analyses:          make(map[model.AnalysisKind]AnalysisState, len(c.analyses)),
		Consultations:     slices.Clone(c.consultations),
		Generation:        c.generation,
	}
	if c.account != nil {
		account := *c.account
		snap.Account = &account
	}
	for kind, a := range c.analyses {
		_, buildErr := c.buildRequest(kind)
		snap.Analyses[kind] = AnalysisState{
			Busy:           a.busy,
			CanSubmit:      !a.busy && buildErr == nil,
			Result:         a.result,
			Error:          a.errMessage,
			SaveError:      a.saveError,
			ConsultationID: a.consultationID,
		}
	}
	return snap
}

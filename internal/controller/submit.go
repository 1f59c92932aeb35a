package controller

import (
	"context"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/vcscsvcscs/aidoctor-pro/internal/advisory"
	"github.com/vcscsvcscs/aidoctor-pro/internal/apperr"
	"github.com/vcscsvcscs/aidoctor-pro/internal/prompt"
	"github.com/vcscsvcscs/aidoctor-pro/pkg/model"
	"go.uber.org/zap"
)

// buildRequest formats the request for kind from the current state. Caller holds mu.
func (c *Controller) buildRequest(kind model.AnalysisKind) (*prompt.Request, error) {
	switch kind {
	case model.KindSymptomTriage:
		return prompt.SymptomTriage(c.profile, c.symptoms, c.notes)
	case model.KindSecondOpinion:
		return prompt.SecondOpinion(prompt.SecondOpinionInput{
			ExistingDiagnosis: c.secondOpinion.ExistingDiagnosis,
			Treatment:         c.secondOpinion.Treatment,
			Concerns:          c.secondOpinion.Concerns,
			Symptoms:          c.symptoms,
			Profile:           c.profile,
		})
	case model.KindDietPlan:
		return prompt.DietPlan(c.profile, c.dietForm)
	case model.KindDrugComparison:
		return prompt.DrugComparison(c.drugForm)
	case model.KindRecommendations:
		return prompt.Recommendations(c.profile)
	}
	return nil, apperr.Validation("Unknown analysis type")
}

// CanSubmit reports whether kind has complete input and no submission in flight
func (c *Controller) CanSubmit(kind model.AnalysisKind) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	a, ok := c.analyses[kind]
	if !ok || a.busy {
		return false
	}
	_, err := c.buildRequest(kind)
	return err == nil
}

// submission is what Submit captures under the lock before calling the provider
type submission struct {
	generation uint64
	account    *model.Account
	profile    *model.HealthProfile
	symptoms   []model.Symptom
}

// Outcome is one completed submission and what happened to its record
type Outcome struct {
	Result         advisory.Result
	ConsultationID string
	SaveError      string
}

// Submit runs one analysis of kind. Incomplete input is rejected before the
// provider is called. The result is applied only if no navigation or account
// change happened meanwhile; with an attached account it is also saved.
func (c *Controller) Submit(ctx context.Context, kind model.AnalysisKind) (*Outcome, error) {
	c.mu.Lock()
	a, ok := c.analyses[kind]
	if !ok {
		c.mu.Unlock()
		return nil, apperr.Validation("Unknown analysis type")
	}
	if a.busy {
		c.mu.Unlock()
		return nil, apperr.New(apperr.CategoryValidation, apperr.CodeBusy, "An analysis is already in progress")
	}
	req, err := c.buildRequest(kind)
	if err != nil {
		c.mu.Unlock()
		return nil, err
	}

	a.busy = true
	a.result = nil
	a.errMessage = ""
	a.saveError = ""
	a.consultationID = ""

	sub := submission{
		generation: c.generation,
		profile:    c.profile.Clone(),
		symptoms:   slices.Clone(model.NamedSymptoms(c.symptoms)),
	}
	if c.account != nil {
		account := *c.account
		sub.account = &account
	}
	c.mu.Unlock()

	c.logger.Info("analysis submitted",
		zap.String("kind", string(kind)),
		zap.Uint64("generation", sub.generation),
		zap.Bool("guest", sub.account == nil),
	)

	result, invokeErr := c.advisor.Invoke(ctx, req)

	c.mu.Lock()
	defer c.mu.Unlock()

	if sub.generation != c.generation {
		c.logger.Info("discarding superseded analysis result",
			zap.String("kind", string(kind)),
			zap.Uint64("generation", sub.generation),
			zap.Uint64("current_generation", c.generation),
		)
		return nil, ErrSuperseded
	}

	a.busy = false
	if invokeErr != nil {
		a.errMessage = apperr.UserMessage(invokeErr)
		return nil, invokeErr
	}
	a.result = result
	outcome := &Outcome{Result: result}

	if sub.account == nil {
		return outcome, nil
	}

	record := newRecord(kind, result, sub, c.now())
	if err := c.repo.SaveConsultation(ctx, sub.account.ID, record); err != nil {
		c.logger.Error("failed to save consultation",
			zap.Error(err),
			zap.String("account_id", sub.account.ID),
			zap.String("kind", string(kind)),
		)
		a.saveError = apperr.UserMessage(err)
		outcome.SaveError = a.saveError
		return outcome, nil
	}

	a.consultationID = record.ID
	outcome.ConsultationID = record.ID
	// The repository applies the retention cap, so mirror its list.
	c.consultations = c.repo.GetData(ctx, sub.account.ID).Consultations
	return outcome, nil
}

func newRecord(kind model.AnalysisKind, result advisory.Result, sub submission, now time.Time) model.ConsultationRecord {
	record := model.ConsultationRecord{
		ID:             uuid.New().String(),
		StartTime:      now.UTC(),
		Kind:           kind,
		Symptoms:       sub.symptoms,
		PatientProfile: sub.profile,
	}
	if record.Symptoms == nil {
		record.Symptoms = []model.Symptom{}
	}

	switch r := result.(type) {
	case *model.DiagnosisResult:
		record.Diagnosis = r
	case *model.SecondOpinionResult:
		record.SecondOpinion = r
	case *model.DietPlanResult:
		record.DietPlan = r
	case *model.DrugComparisonResult:
		record.DrugComparison = r
	case *model.RecommendationsResult:
		record.Recommendations = r
	}
	return record
}

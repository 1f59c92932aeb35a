package pdf

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/vcscsvcscs/aidoctor-pro/pkg/model"
	"go.uber.org/zap"
)

// PDFGenerator renders a saved consultation as a printable report
type PDFGenerator struct {
	logger *zap.Logger
	now    func() time.Time
}

// NewPDFGenerator creates a new PDFGenerator
func NewPDFGenerator(logger *zap.Logger) *PDFGenerator {
	return &PDFGenerator{
		logger: logger,
		now:    time.Now,
	}
}

// ReportData contains all data needed for report generation
type ReportData struct {
	PatientName  string
	Consultation model.ConsultationRecord
}

var kindTitles = map[model.AnalysisKind]string{
	model.KindSymptomTriage:   "Symptom Analysis",
	model.KindSecondOpinion:   "Second Opinion",
	model.KindDietPlan:        "Diet Plan",
	model.KindDrugComparison:  "Medication Comparison",
	model.KindRecommendations: "Health Recommendations",
}

// Generate creates a PDF report for one consultation
func (g *PDFGenerator) Generate(data *ReportData) ([]byte, error) {
	record := data.Consultation
	g.logger.Info("generating consultation report",
		zap.String("consultation_id", record.ID),
		zap.String("kind", string(record.Kind)),
	)

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 20)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	title, ok := kindTitles[record.Kind]
	if !ok {
		title = kindTitles[model.KindSymptomTriage]
	}
	g.addTitle(pdf, tr, "AIDoctor Pro - "+title, data.PatientName, record.StartTime)

	g.addProfile(pdf, tr, record.PatientProfile)
	if len(record.Symptoms) > 0 {
		g.addSymptoms(pdf, tr, record.Symptoms)
	}

	disclaimer := ""
	switch {
	case record.Diagnosis != nil:
		g.addDiagnosis(pdf, tr, record.Diagnosis)
		disclaimer = record.Diagnosis.Disclaimer
	case record.SecondOpinion != nil:
		g.addSecondOpinion(pdf, tr, record.SecondOpinion)
		disclaimer = record.SecondOpinion.Disclaimer
	case record.DietPlan != nil:
		g.addDietPlan(pdf, tr, record.DietPlan)
		disclaimer = record.DietPlan.Disclaimer
	case record.DrugComparison != nil:
		g.addDrugComparison(pdf, tr, record.DrugComparison)
		disclaimer = record.DrugComparison.Disclaimer
	case record.Recommendations != nil:
		g.addRecommendations(pdf, tr, record.Recommendations)
	default:
		g.addSectionHeader(pdf, "Result")
		pdf.CellFormat(0, 8, "No analysis result stored for this consultation.", "", 1, "L", false, 0, "")
	}

	g.addDisclaimer(pdf, tr, disclaimer)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		g.logger.Error("failed to generate PDF", zap.Error(err))
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}

	g.logger.Info("PDF report generated successfully",
		zap.Int("size_bytes", buf.Len()),
	)

	return buf.Bytes(), nil
}

func (g *PDFGenerator) addTitle(pdf *gofpdf.Fpdf, tr func(string) string, title, patientName string, consulted time.Time) {
	pdf.SetFont("Arial", "B", 20)
	pdf.CellFormat(0, 10, tr(title), "", 1, "C", false, 0, "")
	pdf.Ln(5)

	pdf.SetFont("Arial", "", 12)
	if patientName != "" {
		pdf.CellFormat(0, 8, tr(fmt.Sprintf("Patient: %s", patientName)), "", 1, "L", false, 0, "")
	}
	pdf.CellFormat(0, 8, fmt.Sprintf("Consultation: %s", consulted.Format("2006-01-02 15:04")), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 8, fmt.Sprintf("Generated: %s", g.now().Format("2006-01-02 15:04")), "", 1, "L", false, 0, "")
	pdf.Ln(10)
}

// addSectionHeader adds a section header
func (g *PDFGenerator) addSectionHeader(pdf *gofpdf.Fpdf, title string) {
	pdf.SetFont("Arial", "B", 14)
	pdf.SetFillColor(230, 230, 230)
	pdf.CellFormat(0, 10, title, "", 1, "L", true, 0, "")
	pdf.Ln(3)
	pdf.SetFont("Arial", "", 10)
}

func (g *PDFGenerator) addSubheading(pdf *gofpdf.Fpdf, tr func(string) string, text string) {
	pdf.SetFont("Arial", "B", 10)
	pdf.MultiCell(0, 6, tr(text), "", "L", false)
	pdf.SetFont("Arial", "", 10)
}

func (g *PDFGenerator) addParagraph(pdf *gofpdf.Fpdf, tr func(string) string, text string) {
	if strings.TrimSpace(text) == "" {
		return
	}
	pdf.MultiCell(0, 5, tr(text), "", "L", false)
	pdf.Ln(2)
}

// addList writes a labelled bullet list; empty lists are skipped
func (g *PDFGenerator) addList(pdf *gofpdf.Fpdf, tr func(string) string, label string, items []string) {
	if len(items) == 0 {
		return
	}
	g.addSubheading(pdf, tr, label)
	for _, item := range items {
		pdf.MultiCell(0, 5, tr("  - "+item), "", "L", false)
	}
	pdf.Ln(2)
}

func (g *PDFGenerator) addProfile(pdf *gofpdf.Fpdf, tr func(string) string, profile *model.HealthProfile) {
	g.addSectionHeader(pdf, "Patient Profile")

	if profile == nil {
		pdf.CellFormat(0, 8, "No patient profile provided.", "", 1, "L", false, 0, "")
		pdf.Ln(5)
		return
	}

	conditions := make([]string, len(profile.Conditions))
	for i, c := range profile.Conditions {
		conditions[i] = string(c)
	}

	lines := []string{
		fmt.Sprintf("Age: %d, Gender: %s", profile.Age, profile.Gender),
		fmt.Sprintf("Weight: %.1f kg, Height: %.0f cm", profile.Weight, profile.Height),
		"Conditions: " + joinOrNone(conditions),
		"Medications: " + joinOrNone(profile.Medications),
		"Allergies: " + joinOrNone(profile.Allergies),
		"Family history: " + joinOrNone(profile.FamilyHistory),
	}
	for _, line := range lines {
		pdf.MultiCell(0, 5, tr(line), "", "L", false)
	}
	pdf.Ln(5)
}

func (g *PDFGenerator) addSymptoms(pdf *gofpdf.Fpdf, tr func(string) string, symptoms []model.Symptom) {
	g.addSectionHeader(pdf, "Reported Symptoms")

	for _, s := range symptoms {
		line := fmt.Sprintf("%s (%s)", s.Name, s.Severity)
		if s.Duration != "" {
			line += ", " + s.Duration
		}
		if s.Location != "" {
			line += ", " + s.Location
		}
		g.addSubheading(pdf, tr, line)
		g.addParagraph(pdf, tr, s.Description)
	}
	pdf.Ln(5)
}

func (g *PDFGenerator) addDiagnosis(pdf *gofpdf.Fpdf, tr func(string) string, result *model.DiagnosisResult) {
	g.addSectionHeader(pdf, "Analysis")
	g.addSubheading(pdf, tr, fmt.Sprintf("Urgency: %s", result.UrgencyLevel))
	pdf.Ln(2)

	for _, c := range result.PossibleConditions {
		g.addSubheading(pdf, tr, fmt.Sprintf("%s - %s likelihood (%.0f%%)", c.Name, c.Likelihood, c.ConfidenceScore))
		g.addParagraph(pdf, tr, c.Description)
		if c.WhenToSeek != "" {
			g.addParagraph(pdf, tr, "When to seek care: "+c.WhenToSeek)
		}
	}

	g.addList(pdf, tr, "Recommended actions", result.RecommendedActions)
	g.addList(pdf, tr, "Warning signs to watch", result.WarningSignsToWatch)
	g.addList(pdf, tr, "Questions for your doctor", result.QuestionsForDoctor)
}

func (g *PDFGenerator) addSecondOpinion(pdf *gofpdf.Fpdf, tr func(string) string, result *model.SecondOpinionResult) {
	g.addSectionHeader(pdf, "Second Opinion")
	g.addSubheading(pdf, tr, fmt.Sprintf("Diagnosis: %s", result.OriginalDiagnosis))
	g.addSubheading(pdf, tr, fmt.Sprintf("Assessment: %s (%.0f%% confidence)", result.Agreement, result.AnalysisConfidence))
	g.addParagraph(pdf, tr, result.Analysis)

	for _, alt := range result.AlternativeConsiderations {
		g.addSubheading(pdf, tr, "Also consider: "+alt.Name)
		g.addParagraph(pdf, tr, alt.Reason)
	}

	g.addList(pdf, tr, "Suggested tests", result.AdditionalTestsSuggested)
	g.addList(pdf, tr, "Questions to ask", result.QuestionsToAsk)
	g.addParagraph(pdf, tr, result.SecondOpinionSummary)
}

func (g *PDFGenerator) addDietPlan(pdf *gofpdf.Fpdf, tr func(string) string, result *model.DietPlanResult) {
	g.addSectionHeader(pdf, "Diet Plan")
	g.addSubheading(pdf, tr, fmt.Sprintf("Goal: %s weight, %.1f kg to %.1f kg", result.Goal, result.CurrentWeight, result.TargetWeight))
	g.addParagraph(pdf, tr, fmt.Sprintf("Daily target: %.0f kcal (protein %.0f%%, carbs %.0f%%, fats %.0f%%)",
		result.DailyCalorieTarget, result.MacroBreakdown.Protein, result.MacroBreakdown.Carbs, result.MacroBreakdown.Fats))

	for _, day := range result.WeeklyPlan {
		g.addSubheading(pdf, tr, fmt.Sprintf("%s - %.0f kcal", day.Day, day.TotalCalories))
		for _, meal := range day.Meals {
			pdf.MultiCell(0, 5, tr(fmt.Sprintf("  %s %s (%.0f kcal)", meal.Time, meal.Name, meal.Calories)), "", "L", false)
		}
		pdf.Ln(2)
	}

	g.addList(pdf, tr, "Grocery list", result.GroceryList)
	g.addList(pdf, tr, "Tips", result.Tips)
	g.addList(pdf, tr, "Warnings", result.Warnings)
}

func (g *PDFGenerator) addDrugComparison(pdf *gofpdf.Fpdf, tr func(string) string, result *model.DrugComparisonResult) {
	g.addSectionHeader(pdf, "Medication Comparison")

	drug := result.OriginalDrug
	g.addSubheading(pdf, tr, fmt.Sprintf("%s (%s), %s", drug.Name, drug.GenericName, drug.DrugClass))
	g.addList(pdf, tr, "Common uses", drug.CommonUses)
	g.addList(pdf, tr, "Side effects", drug.SideEffects)

	for _, alt := range result.SaferAlternatives {
		g.addSubheading(pdf, tr, fmt.Sprintf("%s - %s", alt.Name, alt.SafetyRating))
		g.addParagraph(pdf, tr, alt.Reason)
	}
	for _, alt := range result.NaturalAlternatives {
		g.addSubheading(pdf, tr, fmt.Sprintf("%s (%s, %s evidence)", alt.Name, alt.Type, alt.EvidenceLevel))
		g.addParagraph(pdf, tr, alt.HowToUse)
	}

	g.addList(pdf, tr, "Interaction warnings", result.InteractionWarnings)
	g.addList(pdf, tr, "General advice", result.GeneralAdvice)
}

func (g *PDFGenerator) addRecommendations(pdf *gofpdf.Fpdf, tr func(string) string, result *model.RecommendationsResult) {
	g.addSectionHeader(pdf, "Recommendations")

	for _, rec := range result.Recommendations {
		g.addSubheading(pdf, tr, fmt.Sprintf("[%s] %s - %s priority", rec.Category, rec.Title, rec.Priority))
		g.addParagraph(pdf, tr, rec.Description)
		for _, item := range rec.ActionItems {
			pdf.MultiCell(0, 5, tr("  - "+item), "", "L", false)
		}
		pdf.Ln(2)
	}
}

func (g *PDFGenerator) addDisclaimer(pdf *gofpdf.Fpdf, tr func(string) string, disclaimer string) {
	if disclaimer == "" {
		disclaimer = "This report is for information only and is not a medical diagnosis. Always consult a qualified healthcare professional."
	}
	pdf.Ln(5)
	pdf.SetFont("Arial", "I", 9)
	pdf.MultiCell(0, 5, tr(disclaimer), "", "L", false)
}

func joinOrNone(items []string) string {
	if len(items) == 0 {
		return "None reported"
	}
	return strings.Join(items, ", ")
}

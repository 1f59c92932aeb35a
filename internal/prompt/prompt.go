// Package prompt turns patient context into provider requests: one
// natural-language instruction plus the output schema the answer must satisfy.
// Builders are pure and reject incomplete input before any provider call.
package prompt

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/vcscsvcscs/aidoctor-pro/pkg/model"
)

// Request is one provider call: instruction, persona, sampling temperature and schema
type Request struct {
	Kind        model.AnalysisKind
	Persona     string
	Instruction string
	Temperature float64
	SchemaName  string
	Schema      *openapi3.Schema
}

const (
	analysisTemperature        = 0.3
	recommendationsTemperature = 0.5

	nonePlaceholder = "None reported"
	noProfile       = "No patient profile provided."
)

// Personas sent as the system message
const (
	PersonaTriage = "You are AIDoctor Pro, a compassionate AI health assistant. Explain medical concepts in everyday " +
		"language as if talking to a concerned family member. Always emphasize the importance of professional " +
		"medical care while providing helpful, accurate information."

	PersonaSecondOpinion = "You are AIDoctor Pro, providing thoughtful second opinion analysis. Be balanced: acknowledge " +
		"the original diagnosis while offering additional perspectives. Never tell a patient their doctor is wrong; " +
		"empower them with questions and considerations instead."

	PersonaDietitian = "You are AIDoctor Pro, a supportive nutrition assistant. Build realistic, culturally flexible meal " +
		"plans that respect medical conditions and allergies. Never promise results and always recommend checking " +
		"major diet changes with a doctor or registered dietitian."

	PersonaPharmacist = "You are AIDoctor Pro, a careful medication information assistant. Explain medicines in plain " +
		"language, be conservative about safety, and never advise starting, stopping or switching a medication " +
		"without a doctor or pharmacist."

	PersonaWellness = "You are AIDoctor Pro. Provide friendly, encouraging health recommendations. Focus on achievable " +
		"goals and positive changes, and recommend professional care where it matters."
)

// joinOrNone renders a list as comma-joined text with an explicit fallback
func joinOrNone[T ~string](items []T) string {
	parts := make([]string, 0, len(items))
	for _, item := range items {
		if s := strings.TrimSpace(string(item)); s != "" {
			parts = append(parts, s)
		}
	}
	if len(parts) == 0 {
		return nonePlaceholder
	}
	return strings.Join(parts, ", ")
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// formatProfile renders the patient block shared by every kind
func formatProfile(p *model.HealthProfile) string {
	if p == nil {
		return noProfile
	}

	smoking := "Non-smoker"
	if p.Lifestyle.Smoking {
		smoking = "Smoker"
	}
	alcohol := "No alcohol"
	if p.Lifestyle.Alcohol {
		alcohol = "Drinks alcohol"
	}

	var b strings.Builder
	b.WriteString("PATIENT PROFILE:\n")
	fmt.Fprintf(&b, "- Age: %d years old\n", p.Age)
	fmt.Fprintf(&b, "- Gender: %s\n", p.Gender)
	fmt.Fprintf(&b, "- Weight: %s kg, Height: %s cm\n", formatNumber(p.Weight), formatNumber(p.Height))
	fmt.Fprintf(&b, "- Existing Conditions: %s\n", joinOrNone(p.Conditions))
	fmt.Fprintf(&b, "- Current Medications: %s\n", joinOrNone(p.Medications))
	fmt.Fprintf(&b, "- Known Allergies: %s\n", joinOrNone(p.Allergies))
	fmt.Fprintf(&b, "- Family History: %s\n", joinOrNone(p.FamilyHistory))
	if p.Lifestyle.Exercise != "" {
		fmt.Fprintf(&b, "- Lifestyle: %s, %s, %s activity level", smoking, alcohol, p.Lifestyle.Exercise)
	} else {
		fmt.Fprintf(&b, "- Lifestyle: %s, %s", smoking, alcohol)
	}
	return b.String()
}

// formatSymptom renders one line; empty optional fields are left out
func formatSymptom(s model.Symptom) string {
	severity := s.Severity
	if severity == "" {
		severity = model.SeverityModerate
	}

	details := []string{fmt.Sprintf("%s severity", severity)}
	if s.Duration != "" {
		details = append(details, "duration: "+s.Duration)
	}

	line := fmt.Sprintf("- %s (%s)", strings.TrimSpace(s.Name), strings.Join(details, ", "))
	if s.Location != "" {
		line += " at " + s.Location
	}
	if d := strings.TrimSpace(s.Description); d != "" {
		line += ": " + d
	}
	return line
}

func formatSymptoms(symptoms []model.Symptom) string {
	lines := make([]string, 0, len(symptoms))
	for _, s := range symptoms {
		lines = append(lines, formatSymptom(s))
	}
	return strings.Join(lines, "\n")
}

// section renders "LABEL: value" or nothing when value is blank
func section(label, value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	return label + ": " + value
}

// assemble joins non-empty blocks with blank lines
func assemble(blocks ...string) string {
	kept := make([]string, 0, len(blocks))
	for _, block := range blocks {
		if strings.TrimSpace(block) != "" {
			kept = append(kept, strings.TrimSpace(block))
		}
	}
	return strings.Join(kept, "\n\n")
}

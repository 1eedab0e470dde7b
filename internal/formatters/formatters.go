package formatters

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"resumefit/internal/types"
)

// Formatter renders one result type in one output format
type Formatter interface {
	Format(data any) (string, error)
	SupportedType() string
}

// FormatterRegistry manages all available formatters
type FormatterRegistry struct {
	formatters map[string]map[string]Formatter // format -> type -> formatter
}

// NewFormatterRegistry creates a registry with the json, text and markdown
// formatters for fit results and skill reports.
func NewFormatterRegistry() *FormatterRegistry {
	registry := &FormatterRegistry{
		formatters: make(map[string]map[string]Formatter),
	}

	registry.RegisterFormatter("json", "any", &JSONFormatter{})
	registry.RegisterFormatter("text", "FitResult", &FitTextFormatter{})
	registry.RegisterFormatter("markdown", "FitResult", &FitMarkdownFormatter{})
	registry.RegisterFormatter("text", "SkillReport", &SkillsTextFormatter{})
	registry.RegisterFormatter("markdown", "SkillReport", &SkillsMarkdownFormatter{})

	return registry
}

// RegisterFormatter registers a new formatter for a specific format and data type
func (fr *FormatterRegistry) RegisterFormatter(format, dataType string, formatter Formatter) {
	if fr.formatters[format] == nil {
		fr.formatters[format] = make(map[string]Formatter)
	}
	fr.formatters[format][dataType] = formatter
}

// Format formats data using the appropriate formatter
func (fr *FormatterRegistry) Format(data any, format string) (string, error) {
	dataType := getDataType(data)

	if formatters, exists := fr.formatters[format]; exists {
		if formatter, exists := formatters[dataType]; exists {
			return formatter.Format(data)
		}
		if formatter, exists := formatters["any"]; exists {
			return formatter.Format(data)
		}
	}

	return "", fmt.Errorf("no formatter found for format '%s' and type '%s'", format, dataType)
}

// GetSupportedFormats returns all supported formats, sorted
func (fr *FormatterRegistry) GetSupportedFormats() []string {
	formats := make([]string, 0, len(fr.formatters))
	for format := range fr.formatters {
		formats = append(formats, format)
	}
	sort.Strings(formats)
	return formats
}

func getDataType(data any) string {
	switch data.(type) {
	case types.FitResult, *types.FitResult:
		return "FitResult"
	case types.SkillReport, *types.SkillReport:
		return "SkillReport"
	default:
		return "any"
	}
}

// JSONFormatter handles JSON formatting for any data type
type JSONFormatter struct{}

func (jf *JSONFormatter) Format(data any) (string, error) {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", err
	}
	return string(jsonData), nil
}

func (jf *JSONFormatter) SupportedType() string {
	return "any"
}

func asFitResult(data any) (types.FitResult, error) {
	switch v := data.(type) {
	case types.FitResult:
		return v, nil
	case *types.FitResult:
		if v != nil {
			return *v, nil
		}
	}
	return types.FitResult{}, fmt.Errorf("expected FitResult, got %T", data)
}

func asSkillReport(data any) (types.SkillReport, error) {
	switch v := data.(type) {
	case types.SkillReport:
		return v, nil
	case *types.SkillReport:
		if v != nil {
			return *v, nil
		}
	}
	return types.SkillReport{}, fmt.Errorf("expected SkillReport, got %T", data)
}

func score(x float64, places int) string {
	return strconv.FormatFloat(x, 'f', places, 64)
}

func listOrNone(items []string) string {
	if len(items) == 0 {
		return "None"
	}
	return strings.Join(items, ", ")
}

// FitTextFormatter handles text formatting for fit results
type FitTextFormatter struct{}

func (f *FitTextFormatter) Format(data any) (string, error) {
	result, err := asFitResult(data)
	if err != nil {
		return "", err
	}

	var output strings.Builder

	output.WriteString("=== RESUME FIT ===\n")
	output.WriteString("Fit Score: " + score(result.FitScore, 2) + "/100\n\n")

	output.WriteString("=== COMPONENT SCORES ===\n")
	output.WriteString("Semantic Similarity:  " + score(result.SemanticSimilarityScore, 3) + "\n")
	output.WriteString("Experience Alignment: " + score(result.ExperienceMatchScore, 3) + "\n\n")

	output.WriteString("=== SKILLS ===\n")
	output.WriteString("Matched: " + listOrNone(result.MatchedSkills) + "\n")
	output.WriteString("Missing: " + listOrNone(result.MissingSkills) + "\n\n")

	output.WriteString("=== EXPLANATION ===\n")
	output.WriteString(result.Explanation)
	output.WriteString("\n")

	return output.String(), nil
}

func (f *FitTextFormatter) SupportedType() string {
	return "FitResult"
}

// FitMarkdownFormatter handles markdown formatting for fit results
type FitMarkdownFormatter struct{}

func (f *FitMarkdownFormatter) Format(data any) (string, error) {
	result, err := asFitResult(data)
	if err != nil {
		return "", err
	}

	var output strings.Builder

	output.WriteString("# Resume Fit Report\n\n")
	output.WriteString("**Fit Score:** " + score(result.FitScore, 2) + "/100\n\n")

	output.WriteString("## Component Scores\n\n")
	output.WriteString("| Signal | Score |\n")
	output.WriteString("|--------|-------|\n")
	output.WriteString("| Semantic similarity | " + score(result.SemanticSimilarityScore, 3) + " |\n")
	output.WriteString("| Experience alignment | " + score(result.ExperienceMatchScore, 3) + " |\n\n")

	output.WriteString("## Skills\n\n")
	writeMarkdownList(&output, "Matched", result.MatchedSkills)
	writeMarkdownList(&output, "Missing", result.MissingSkills)

	output.WriteString("## Explanation\n\n")
	output.WriteString(result.Explanation)
	output.WriteString("\n")

	return output.String(), nil
}

func (f *FitMarkdownFormatter) SupportedType() string {
	return "FitResult"
}

func writeMarkdownList(output *strings.Builder, title string, items []string) {
	output.WriteString("### " + title + "\n\n")
	if len(items) == 0 {
		output.WriteString("_None_\n\n")
		return
	}
	for _, item := range items {
		output.WriteString("- `" + item + "`\n")
	}
	output.WriteString("\n")
}

// SkillsTextFormatter handles text formatting for skill reports
type SkillsTextFormatter struct{}

func (f *SkillsTextFormatter) Format(data any) (string, error) {
	report, err := asSkillReport(data)
	if err != nil {
		return "", err
	}

	var output strings.Builder
	output.WriteString("=== SKILLS ===\n")
	if report.Source != "" {
		output.WriteString("Source: " + report.Source + "\n")
	}
	output.WriteString(fmt.Sprintf("Found %d skill(s)\n\n", len(report.Skills)))
	for _, skill := range report.Skills {
		output.WriteString("  - " + skill + "\n")
	}
	return output.String(), nil
}

func (f *SkillsTextFormatter) SupportedType() string {
	return "SkillReport"
}

// SkillsMarkdownFormatter handles markdown formatting for skill reports
type SkillsMarkdownFormatter struct{}

func (f *SkillsMarkdownFormatter) Format(data any) (string, error) {
	report, err := asSkillReport(data)
	if err != nil {
		return "", err
	}

	var output strings.Builder
	output.WriteString("# Skills\n\n")
	if report.Source != "" {
		output.WriteString("**Source:** `" + report.Source + "`\n\n")
	}
	writeMarkdownList(&output, fmt.Sprintf("Found (%d)", len(report.Skills)), report.Skills)
	return output.String(), nil
}

func (f *SkillsMarkdownFormatter) SupportedType() string {
	return "SkillReport"
}

// GlobalRegistry is the registry used by the CLI.
var GlobalRegistry = NewFormatterRegistry()

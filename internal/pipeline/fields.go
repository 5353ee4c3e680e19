package pipeline

import (
	"regexp"
	"strings"

	"github.com/digibhoomi/record-translator/internal/models"
)

// FieldRule binds one field name to a label-anchored recognition pattern.
// The pattern's first capture group is the extracted value; each rule reads
// only the region its own labels delimit, so rules never steal text from one
// another.
type FieldRule struct {
	Field   string
	Pattern *regexp.Regexp
	// TitleCase normalizes person/place values ("ram lal" -> "Ram Lal").
	TitleCase bool
}

// FieldRulePattern is the serializable form used by the yaml config.
type FieldRulePattern struct {
	Field     string `yaml:"field"`
	Pattern   string `yaml:"pattern"`
	TitleCase bool   `yaml:"titleCase"`
}

// RuleTable is an ordered, read-only extraction table built once at startup.
type RuleTable struct {
	rules []FieldRule
}

func NewRuleTable(rules []FieldRule) *RuleTable {
	return &RuleTable{rules: rules}
}

// CompileRules builds a table from serialized patterns. A pattern that fails
// to compile is rejected rather than silently dropped.
func CompileRules(patterns []FieldRulePattern) (*RuleTable, error) {
	rules := make([]FieldRule, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile(p.Pattern)
		if err != nil {
			return nil, err
		}
		rules = append(rules, FieldRule{Field: p.Field, Pattern: re, TitleCase: p.TitleCase})
	}
	return &RuleTable{rules: rules}, nil
}

// Extract derives structured fields from translated text. Multiple matches
// for a field are appended in order of appearance without deduplication; a
// field with no match contributes no key at all. A rule that matches nothing
// never blocks the rest of the table.
func (t *RuleTable) Extract(text string) models.ExtractedFields {
	fields := models.ExtractedFields{}
	for _, rule := range t.rules {
		for _, m := range rule.Pattern.FindAllStringSubmatch(text, -1) {
			if len(m) < 2 {
				continue
			}
			value := cleanFieldValue(m[1])
			if len(value) < 2 && !isNumeric(value) {
				continue
			}
			if value == "" {
				continue
			}
			if rule.TitleCase {
				value = titleCase(value)
			}
			fields[rule.Field] = append(fields[rule.Field], value)
		}
	}
	return fields
}

func cleanFieldValue(v string) string {
	v = strings.TrimSpace(v)
	v = strings.Trim(v, ".,;:")
	return strings.TrimSpace(v)
}

func isNumeric(v string) bool {
	if v == "" {
		return false
	}
	for _, r := range v {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func titleCase(v string) string {
	words := strings.Fields(strings.ToLower(v))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// name matches a person/place value up to the next comma, period, line end
// or the next label.
const name = `([A-Za-z][A-Za-z .]*?)\s*(?:[,.\n]|$)`

// DefaultRuleTable is the built-in extraction table for land-record
// vocabulary. Label spellings cover the common transliteration variants.
func DefaultRuleTable() *RuleTable {
	return NewRuleTable([]FieldRule{
		{
			Field:   models.FieldSurveyNumber,
			Pattern: regexp.MustCompile(`(?im)(?:survey|khasra|khewat|plot)\s*(?:no\.?|number)?\s*[:\-]?\s*([0-9][0-9/\-A-Za-z]*)`),
		},
		{
			Field:     models.FieldOwnerName,
			Pattern:   regexp.MustCompile(`(?im)(?:owner(?:'s)?\s*name|owner|proprietor|pattadar|khatedar|title\s*holder)\s*[:\-]\s*` + name),
			TitleCase: true,
		},
		{
			Field:     models.FieldFatherName,
			Pattern:   regexp.MustCompile(`(?im)(?:father'?s?\s*name|son\s+of|s/o)\s*[:\-]?\s*` + name),
			TitleCase: true,
		},
		{
			Field:     models.FieldVillage,
			Pattern:   regexp.MustCompile(`(?im)(?:village|mauza|mouza|gram|gaon)\s*[:\-]?\s*` + name),
			TitleCase: true,
		},
		{
			Field:     models.FieldTehsil,
			Pattern:   regexp.MustCompile(`(?im)(?:tehsil|tahsil|taluka|taluk|mandal)\s*[:\-]?\s*` + name),
			TitleCase: true,
		},
		{
			Field:     models.FieldDistrict,
			Pattern:   regexp.MustCompile(`(?im)(?:district|zila|jila)\s*[:\-]?\s*` + name),
			TitleCase: true,
		},
		{
			Field:     models.FieldState,
			Pattern:   regexp.MustCompile(`(?im)state\s*[:\-]\s*` + name),
			TitleCase: true,
		},
		{
			Field:   models.FieldArea,
			Pattern: regexp.MustCompile(`(?im)([\d.,]+\s*(?:acres?|hectares?|kanal|marla|bigha|biswa|gunta|sq\.?\s*(?:ft|feet|m|meters?)))`),
		},
		{
			Field:   models.FieldLandType,
			Pattern: regexp.MustCompile(`(?im)(?:land\s*(?:type|classification|use)|category)\s*[:\-]\s*([A-Za-z ]+?)\s*(?:[,.\n]|$)`),
		},
		{
			Field:   models.FieldRevenue,
			Pattern: regexp.MustCompile(`(?im)(?:revenue|land\s*tax|lagaan|malia)\s*[:\-]?\s*(?:rs\.?|₹)?\s*([\d,]+(?:\.\d{1,2})?)`),
		},
		{
			Field:   models.FieldDate,
			Pattern: regexp.MustCompile(`(?im)(?:date|dated|on)\s*[:\-]?\s*(\d{1,2}[/\-.]\d{1,2}[/\-.]\d{2,4})`),
		},
		{
			Field:   models.FieldRegistrationNumber,
			Pattern: regexp.MustCompile(`(?im)(?:registration|deed|document)\s*(?:no\.?|number)\s*[:\-]?\s*([A-Za-z0-9/\-]+)`),
		},
	})
}

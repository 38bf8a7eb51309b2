package profile

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/pbaille/autoclass/internal/category"
	"github.com/pbaille/autoclass/internal/domain"
)

const maxMappings = domain.MaxTagMappings

const identPattern = `(?:[A-Za-z_][A-Za-z0-9_$]*|"(?:[^"]|"")+")`

var (
	profileIdent = regexp.MustCompile(`^` + identPattern + `$`)
	// A schema is SCHEMA or DATABASE.SCHEMA.
	schemaIdent = regexp.MustCompile(`^` + identPattern + `(?:\.` + identPattern + `)?$`)
)

// pairKey is the composite (tag, category) key of the conflict map.
type pairKey struct {
	tag      string
	category string
}

// ParseMaxDays reports the numeric value of a raw max-age input. Only
// non-empty all-digit text counts as numeric; anything else (signs, spaces,
// words) is treated as "not supplied".
func ParseMaxDays(raw string) (int, bool) {
	if raw == "" {
		return 0, false
	}
	for _, r := range raw {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Validate checks the profile name, the tag mappings and the raw max-age
// value. The first failure is returned as a *ValidationError; nil means the
// inputs are consistent.
//
// Mappings without an explicit value take their value from the semantic
// category at classification time and are not checked here.
func Validate(profileName string, mappings []domain.TagMapping, maxDaysRaw string) error {
	if n, ok := ParseMaxDays(maxDaysRaw); ok && n < 1 {
		return &ValidationError{Reason: ReasonInvalidMaxAge}
	}
	if strings.TrimSpace(profileName) == "" {
		return &ValidationError{Reason: ReasonEmptyProfileName}
	}

	seen := make(map[pairKey]string)
	for _, m := range mappings {
		if m.UseSemanticValue() {
			continue
		}
		value := m.Value()
		if strings.TrimSpace(value) == "" {
			return &ValidationError{Reason: ReasonMissingTagValue, TagName: m.TagName}
		}
		if len(m.SemanticCategories) == 0 {
			return &ValidationError{Reason: ReasonMissingCategories, TagName: m.TagName}
		}
		for _, c := range m.SemanticCategories {
			key := pairKey{tag: m.TagName, category: c}
			if prev, ok := seen[key]; ok && prev != value {
				return &ValidationError{Reason: ReasonConflictingTagValue, TagName: m.TagName, Category: c}
			}
			seen[key] = value
		}
	}
	return nil
}

// ValidateDraft runs Validate and then the structural checks that keep the
// generated statements well formed. The profile name, the profile schema and
// every attachment target are spliced into statements, so each must be a
// plain or double-quoted identifier.
func ValidateDraft(d domain.ProfileDraft) error {
	if err := Validate(d.ProfileName, d.TagMappings, d.MaxValidityDays); err != nil {
		return err
	}
	if strings.TrimSpace(d.ProfileSchema) == "" {
		return &ValidationError{Reason: ReasonMissingSchema}
	}
	if !schemaIdent.MatchString(d.ProfileSchema) {
		return &ValidationError{Reason: ReasonInvalidSchemaName, Schema: d.ProfileSchema}
	}
	if !profileIdent.MatchString(strings.TrimSpace(d.ProfileName)) {
		return &ValidationError{Reason: ReasonInvalidProfileName}
	}
	for _, schema := range d.AttachToSchemas {
		if !schemaIdent.MatchString(schema) {
			return &ValidationError{Reason: ReasonInvalidSchemaName, Schema: schema}
		}
	}
	if len(d.TagMappings) > maxMappings {
		return &ValidationError{Reason: ReasonTooManyMappings}
	}
	for _, m := range d.TagMappings {
		if strings.TrimSpace(m.TagName) == "" {
			return &ValidationError{Reason: ReasonMissingTagName}
		}
		for _, c := range m.SemanticCategories {
			if !category.IsKnown(c) {
				return &ValidationError{Reason: ReasonUnknownCategory, TagName: m.TagName, Category: c}
			}
		}
	}
	if d.MinObjectAgeDays < 0 {
		return &ValidationError{Reason: ReasonInvalidMinAge}
	}
	return nil
}

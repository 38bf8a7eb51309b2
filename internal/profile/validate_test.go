package profile

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pbaille/autoclass/internal/domain"
)

func valueMapping(tag, value string, categories ...string) domain.TagMapping {
	return domain.TagMapping{TagName: tag, TagValue: domain.StringPtr(value), SemanticCategories: categories}
}

func semanticMapping(tag string) domain.TagMapping {
	return domain.TagMapping{TagName: tag}
}

func requireReason(t *testing.T, err error, reason Reason) *ValidationError {
	t.Helper()
	require.Error(t, err)
	var verr *ValidationError
	require.True(t, errors.As(err, &verr), "expected *ValidationError, got %T", err)
	assert.Equal(t, reason, verr.Reason)
	return verr
}

func TestValidate_EmptyProfileName(t *testing.T) {
	for _, name := range []string{"", " ", "\t\n  "} {
		err := Validate(name, []domain.TagMapping{valueMapping("T1", "PII", "EMAIL")}, "30")
		requireReason(t, err, ReasonEmptyProfileName)
		assert.ErrorIs(t, err, ErrEmptyProfileName)
	}
}

func TestValidate_MaxAge(t *testing.T) {
	tests := []struct {
		raw     string
		invalid bool
	}{
		{"0", true},
		{"00", true},
		{"1", false},
		{"365", false},
		{"", false},
		{"abc", false},
		{"-1", false},
		{" 0", false},
		{"1.5", false},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			err := Validate("p1", nil, tt.raw)
			if tt.invalid {
				requireReason(t, err, ReasonInvalidMaxAge)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestValidate_MaxAgeCheckedBeforeName(t *testing.T) {
	err := Validate("", nil, "0")
	requireReason(t, err, ReasonInvalidMaxAge)
}

func TestValidate_MissingTagValue(t *testing.T) {
	err := Validate("p1", []domain.TagMapping{valueMapping("T1", "   ", "EMAIL")}, "")
	verr := requireReason(t, err, ReasonMissingTagValue)
	assert.Equal(t, "T1", verr.TagName)
	assert.Equal(t, "no tag value specified for T1", err.Error())
}

func TestValidate_MissingCategories(t *testing.T) {
	err := Validate("p1", []domain.TagMapping{valueMapping("T1", "PII")}, "")
	verr := requireReason(t, err, ReasonMissingCategories)
	assert.Equal(t, "T1", verr.TagName)
}

func TestValidate_ConflictingTagValue(t *testing.T) {
	mappings := []domain.TagMapping{
		valueMapping("T1", "PII", "EMAIL"),
		valueMapping("T1", "SENSITIVE", "EMAIL"),
	}
	err := Validate("p1", mappings, "")
	verr := requireReason(t, err, ReasonConflictingTagValue)
	assert.Equal(t, "T1", verr.TagName)
	assert.Equal(t, "EMAIL", verr.Category)
	assert.ErrorIs(t, err, ErrConflictingTagValue)
	assert.Equal(t, "multiple values provided for T1,EMAIL pair", err.Error())
}

func TestValidate_ConflictReportsFirstPair(t *testing.T) {
	mappings := []domain.TagMapping{
		valueMapping("T1", "PII", "EMAIL", "PHONE_NUMBER"),
		valueMapping("T1", "SENSITIVE", "PHONE_NUMBER", "EMAIL"),
	}
	verr := requireReason(t, Validate("p1", mappings, ""), ReasonConflictingTagValue)
	assert.Equal(t, "PHONE_NUMBER", verr.Category)
}

func TestValidate_AgreeingPairsPass(t *testing.T) {
	mappings := []domain.TagMapping{
		valueMapping("T1", "PII", "EMAIL"),
		valueMapping("T1", "PII", "EMAIL", "NAME"),
		valueMapping("T2", "SENSITIVE", "EMAIL"),
		valueMapping("T1", "OTHER", "AGE"),
	}
	assert.NoError(t, Validate("p1", mappings, "7"))
}

func TestValidate_SemanticMappingsExempt(t *testing.T) {
	mappings := []domain.TagMapping{
		semanticMapping("T1"),
		valueMapping("T1", "PII", "EMAIL"),
		semanticMapping("T1"),
	}
	assert.NoError(t, Validate("p1", mappings, ""))
}

func TestValidate_Idempotent(t *testing.T) {
	mappings := []domain.TagMapping{
		valueMapping("T1", "PII", "EMAIL"),
		valueMapping("T1", "SENSITIVE", "EMAIL"),
	}
	first := Validate("p1", mappings, "")
	second := Validate("p1", mappings, "")
	assert.Equal(t, first, second)
	assert.NoError(t, Validate("p1", mappings[:1], ""))
	assert.NoError(t, Validate("p1", mappings[:1], ""))
}

func validDraft() domain.ProfileDraft {
	return domain.ProfileDraft{
		ProfileSchema: "GOV.PROFILES",
		ProfileName:   "standard",
		AutoTag:       true,
		TagMappings: []domain.TagMapping{
			valueMapping("GOV.TAGS.PII", "HIGH", "EMAIL"),
		},
	}
}

func TestValidateDraft(t *testing.T) {
	assert.NoError(t, ValidateDraft(validDraft()))

	tests := []struct {
		name   string
		mutate func(*domain.ProfileDraft)
		reason Reason
	}{
		{"core checks first", func(d *domain.ProfileDraft) { d.ProfileName = ""; d.ProfileSchema = "" }, ReasonEmptyProfileName},
		{"missing schema", func(d *domain.ProfileDraft) { d.ProfileSchema = " " }, ReasonMissingSchema},
		{"invalid name", func(d *domain.ProfileDraft) { d.ProfileName = "p1; drop table x" }, ReasonInvalidProfileName},
		{"hyphenated name", func(d *domain.ProfileDraft) { d.ProfileName = "pii-profile" }, ReasonInvalidProfileName},
		{"invalid profile schema", func(d *domain.ProfileDraft) { d.ProfileSchema = "GOV.PROFILES; drop schema x" }, ReasonInvalidSchemaName},
		{"too many schema parts", func(d *domain.ProfileDraft) { d.ProfileSchema = "A.B.C" }, ReasonInvalidSchemaName},
		{"invalid attachment", func(d *domain.ProfileDraft) {
			d.AttachToSchemas = []string{"SALES.PUBLIC", "HR.PUBLIC set tag x"}
		}, ReasonInvalidSchemaName},
		{"too many mappings", func(d *domain.ProfileDraft) {
			for range 10 {
				d.TagMappings = append(d.TagMappings, semanticMapping("GOV.TAGS.PII"))
			}
		}, ReasonTooManyMappings},
		{"missing tag name", func(d *domain.ProfileDraft) { d.TagMappings = append(d.TagMappings, semanticMapping("")) }, ReasonMissingTagName},
		{"unknown category", func(d *domain.ProfileDraft) {
			d.TagMappings = append(d.TagMappings, valueMapping("GOV.TAGS.PII", "HIGH", "SHOE_SIZE"))
		}, ReasonUnknownCategory},
		{"negative min age", func(d *domain.ProfileDraft) { d.MinObjectAgeDays = -1 }, ReasonInvalidMinAge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := validDraft()
			tt.mutate(&d)
			requireReason(t, ValidateDraft(d), tt.reason)
		})
	}
}

func TestValidateDraft_QuotedIdentifier(t *testing.T) {
	d := validDraft()
	d.ProfileName = `"My Profile"`
	d.ProfileSchema = `GOV."Profiles ""v2"""`
	d.AttachToSchemas = []string{"PUBLIC", `"Sales DB".PUBLIC`}
	assert.NoError(t, ValidateDraft(d))
}

func TestValidateDraft_ReportsInvalidSchema(t *testing.T) {
	d := validDraft()
	d.AttachToSchemas = []string{"SALES-PUBLIC"}

	err := ValidateDraft(d)
	assert.ErrorIs(t, err, ErrInvalidSchemaName)
	assert.EqualError(t, err, "schema SALES-PUBLIC is not a valid identifier")
}

func TestSerialize_SucceedsForEveryValidatedDraft(t *testing.T) {
	drafts := []domain.ProfileDraft{validDraft()}
	d := validDraft()
	d.ProfileName = `"pii-profile"`
	d.AttachToSchemas = []string{"SALES.PUBLIC"}
	drafts = append(drafts, d)

	for _, d := range drafts {
		require.NoError(t, ValidateDraft(d))
		_, err := Serialize(d)
		assert.NoError(t, err)
	}
}

func TestParseMaxDays(t *testing.T) {
	n, ok := ParseMaxDays("42")
	assert.True(t, ok)
	assert.Equal(t, 42, n)

	_, ok = ParseMaxDays("99999999999999999999999")
	assert.False(t, ok)
}

package domain

import "strings"

// MaxTagMappings is the number of mapping rows a draft may carry.
const MaxTagMappings = 10

// Tag is a tag object listed by the catalog.
type Tag struct {
	Database string `json:"database_name"`
	Schema   string `json:"schema_name"`
	Name     string `json:"name"`
}

// QualifiedName returns database.schema.name, the form used in tag mappings.
func (t Tag) QualifiedName() string {
	return t.Database + "." + t.Schema + "." + t.Name
}

// Schema is a schema listed by the catalog.
type Schema struct {
	Database string `json:"database_name"`
	Name     string `json:"name"`
}

// QualifiedName returns database.name.
func (s Schema) QualifiedName() string {
	return s.Database + "." + s.Name
}

// TagMapping is one row of user input mapping a tag value to semantic categories.
// A nil TagValue means the row uses the semantic category itself as the value.
type TagMapping struct {
	TagName            string   `json:"tag_name" yaml:"tag_name"`
	TagValue           *string  `json:"tag_value,omitempty" yaml:"tag_value,omitempty"`
	SemanticCategories []string `json:"semantic_categories,omitempty" yaml:"semantic_categories,omitempty"`
}

// UseSemanticValue reports whether the mapping carries no explicit value.
func (m TagMapping) UseSemanticValue() bool {
	return m.TagValue == nil
}

// Value returns the explicit value, or "" in semantic-value mode.
func (m TagMapping) Value() string {
	if m.TagValue == nil {
		return ""
	}
	return *m.TagValue
}

// ProfileDraft aggregates the inputs of one authoring session.
type ProfileDraft struct {
	ProfileSchema    string       `json:"profile_schema" yaml:"profile_schema"`
	ProfileName      string       `json:"profile_name" yaml:"profile_name"`
	ReplaceIfExists  bool         `json:"replace_if_exists" yaml:"replace_if_exists"`
	MinObjectAgeDays int          `json:"min_object_age_days" yaml:"min_object_age_days"`
	MaxValidityDays  string       `json:"max_validity_days,omitempty" yaml:"max_validity_days,omitempty"`
	AutoTag          bool         `json:"auto_tag" yaml:"auto_tag"`
	TagMappings      []TagMapping `json:"tag_mappings,omitempty" yaml:"tag_mappings,omitempty"`
	AttachToSchemas  []string     `json:"attach_to_schemas,omitempty" yaml:"attach_to_schemas,omitempty"`
}

// NewProfileDraft returns an empty draft with the form defaults applied.
func NewProfileDraft() ProfileDraft {
	return ProfileDraft{AutoTag: true}
}

// QualifiedName returns schema.name for the profile being authored.
func (d ProfileDraft) QualifiedName() string {
	return d.ProfileSchema + "." + strings.TrimSpace(d.ProfileName)
}

// StringPtr is a helper for building mappings with explicit values.
func StringPtr(s string) *string {
	return &s
}

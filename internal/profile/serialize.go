package profile

import (
	"fmt"

	"github.com/pbaille/autoclass/internal/domain"
)

// ProfileType is the Snowflake class a classification profile instantiates.
const ProfileType = "snowflake.data_privacy.classification_profile"

// ColumnTagMapping is one entry of the profile's column_tag_map.
type ColumnTagMapping struct {
	TagName            string   `json:"tag_name"`
	TagValue           string   `json:"tag_value"`
	SemanticCategories []string `json:"semantic_categories"`
}

// TagMap groups the explicit tag mappings of a profile.
type TagMap struct {
	ColumnTagMap []ColumnTagMapping `json:"column_tag_map"`
}

// Config is the configuration object passed to the profile constructor.
type Config struct {
	TagMap               *TagMap `json:"tag_map,omitempty"`
	MinimumObjectAgeDays int     `json:"minimum_object_age_for_classification_days"`
	MaximumValidityDays  *int    `json:"maximum_classification_validity_days,omitempty"`
	AutoTag              bool    `json:"auto_tag"`
}

// Statements is everything generated for one draft, in execution order.
type Statements struct {
	QualifiedName string   `json:"qualified_name"`
	Config        Config   `json:"config"`
	Create        string   `json:"create"`
	Attach        []string `json:"attach,omitempty"`
	Describe      string   `json:"describe"`
}

// Writes returns the creation statement followed by the attachments.
func (s Statements) Writes() []string {
	out := make([]string, 0, 1+len(s.Attach))
	out = append(out, s.Create)
	return append(out, s.Attach...)
}

// BuildConfig maps a draft onto the profile configuration object. A
// non-numeric max age is dropped rather than rejected.
func BuildConfig(d domain.ProfileDraft) Config {
	cfg := Config{
		MinimumObjectAgeDays: d.MinObjectAgeDays,
		AutoTag:              d.AutoTag,
	}

	var entries []ColumnTagMapping
	for _, m := range d.TagMappings {
		if m.UseSemanticValue() {
			continue
		}
		entries = append(entries, ColumnTagMapping{
			TagName:            m.TagName,
			TagValue:           m.Value(),
			SemanticCategories: append([]string(nil), m.SemanticCategories...),
		})
	}
	if len(entries) > 0 {
		cfg.TagMap = &TagMap{ColumnTagMap: entries}
	}

	if n, ok := ParseMaxDays(d.MaxValidityDays); ok {
		cfg.MaximumValidityDays = &n
	}
	return cfg
}

// Serialize validates the draft and renders its statements. It performs no
// I/O and only fails for drafts ValidateDraft rejects.
func Serialize(d domain.ProfileDraft) (Statements, error) {
	if err := ValidateDraft(d); err != nil {
		return Statements{}, err
	}

	qn := d.QualifiedName()
	cfg := BuildConfig(d)

	replace := ""
	if d.ReplaceIfExists {
		replace = "or replace "
	}

	st := Statements{
		QualifiedName: qn,
		Config:        cfg,
		Create:        fmt.Sprintf("create %s%s %s(%s);", replace, ProfileType, qn, cfg.Literal()),
		Describe:      DescribeStatement(qn),
	}
	for _, schema := range d.AttachToSchemas {
		st.Attach = append(st.Attach, AttachStatement(schema, qn))
	}
	return st, nil
}

// AttachStatement binds schema to the profile qn.
func AttachStatement(schema, qn string) string {
	return fmt.Sprintf("alter schema %s set classification_profile=%s;", schema, quote(qn))
}

// DescribeStatement returns the introspection query for profile qn.
func DescribeStatement(qn string) string {
	return fmt.Sprintf("select %s!describe();", qn)
}

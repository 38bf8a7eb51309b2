package profile

import (
	"strconv"
	"strings"
)

// Literal renders the configuration as a Snowflake object constant.
// Keys keep a fixed order so the statement text is stable.
func (c Config) Literal() string {
	var fields []string
	if c.TagMap != nil {
		fields = append(fields, field("tag_map", c.TagMap.literal()))
	}
	fields = append(fields, field("minimum_object_age_for_classification_days", strconv.Itoa(c.MinimumObjectAgeDays)))
	if c.MaximumValidityDays != nil {
		fields = append(fields, field("maximum_classification_validity_days", strconv.Itoa(*c.MaximumValidityDays)))
	}
	fields = append(fields, field("auto_tag", strconv.FormatBool(c.AutoTag)))
	return object(fields)
}

func (t *TagMap) literal() string {
	entries := make([]string, len(t.ColumnTagMap))
	for i, e := range t.ColumnTagMap {
		entries[i] = e.literal()
	}
	return object([]string{field("column_tag_map", array(entries))})
}

func (m ColumnTagMapping) literal() string {
	categories := make([]string, len(m.SemanticCategories))
	for i, c := range m.SemanticCategories {
		categories[i] = quote(c)
	}
	return object([]string{
		field("tag_name", quote(m.TagName)),
		field("tag_value", quote(m.TagValue)),
		field("semantic_categories", array(categories)),
	})
}

func field(key, value string) string {
	return quote(key) + ": " + value
}

func object(fields []string) string {
	return "{" + strings.Join(fields, ", ") + "}"
}

func array(items []string) string {
	return "[" + strings.Join(items, ", ") + "]"
}

// quote renders a single-quoted string constant. Backslash is the escape
// character inside Snowflake string constants, so it is doubled too.
func quote(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `'`, `''`)
	return "'" + s + "'"
}

package profile

import "fmt"

// Reason identifies why a draft was rejected.
type Reason string

const (
	ReasonInvalidMaxAge       Reason = "invalid_max_age"
	ReasonEmptyProfileName    Reason = "empty_profile_name"
	ReasonMissingTagValue     Reason = "missing_tag_value"
	ReasonMissingCategories   Reason = "missing_categories"
	ReasonConflictingTagValue Reason = "conflicting_tag_value"

	ReasonMissingSchema      Reason = "missing_schema"
	ReasonInvalidProfileName Reason = "invalid_profile_name"
	ReasonInvalidSchemaName  Reason = "invalid_schema_name"
	ReasonTooManyMappings    Reason = "too_many_mappings"
	ReasonMissingTagName     Reason = "missing_tag_name"
	ReasonUnknownCategory    Reason = "unknown_category"
	ReasonInvalidMinAge      Reason = "invalid_min_age"
	ReasonUnknownTag         Reason = "unknown_tag"
	ReasonUnknownSchema      Reason = "unknown_schema"
)

// ValidationError is a single user-input failure, suitable for display.
type ValidationError struct {
	Reason   Reason
	TagName  string
	Category string
	Schema   string
}

func (e *ValidationError) Error() string {
	switch e.Reason {
	case ReasonInvalidMaxAge:
		return "max days for reclassification must be at least 1"
	case ReasonEmptyProfileName:
		return "profile name is empty"
	case ReasonMissingTagValue:
		return fmt.Sprintf("no tag value specified for %s", e.TagName)
	case ReasonMissingCategories:
		return fmt.Sprintf("no semantic category specified for %s", e.TagName)
	case ReasonConflictingTagValue:
		return fmt.Sprintf("multiple values provided for %s,%s pair", e.TagName, e.Category)
	case ReasonMissingSchema:
		return "profile schema is empty"
	case ReasonInvalidProfileName:
		return "profile name is not a valid identifier"
	case ReasonInvalidSchemaName:
		return fmt.Sprintf("schema %s is not a valid identifier", e.Schema)
	case ReasonTooManyMappings:
		return fmt.Sprintf("at most %d tag mappings are allowed", maxMappings)
	case ReasonMissingTagName:
		return "tag mapping has no tag selected"
	case ReasonUnknownCategory:
		return fmt.Sprintf("unknown semantic category %s for %s", e.Category, e.TagName)
	case ReasonInvalidMinAge:
		return "minimum object age must be 0 or more"
	case ReasonUnknownTag:
		return fmt.Sprintf("tag %s not found in catalog", e.TagName)
	case ReasonUnknownSchema:
		return fmt.Sprintf("schema %s not found in catalog", e.Schema)
	default:
		return string(e.Reason)
	}
}

// Is matches any ValidationError with the same reason, so callers can use
// errors.Is(err, profile.ErrConflictingTagValue).
func (e *ValidationError) Is(target error) bool {
	t, ok := target.(*ValidationError)
	return ok && t.Reason == e.Reason
}

var (
	ErrInvalidMaxAge       = &ValidationError{Reason: ReasonInvalidMaxAge}
	ErrEmptyProfileName    = &ValidationError{Reason: ReasonEmptyProfileName}
	ErrMissingTagValue     = &ValidationError{Reason: ReasonMissingTagValue}
	ErrMissingCategories   = &ValidationError{Reason: ReasonMissingCategories}
	ErrConflictingTagValue = &ValidationError{Reason: ReasonConflictingTagValue}
	ErrMissingSchema       = &ValidationError{Reason: ReasonMissingSchema}
	ErrInvalidProfileName  = &ValidationError{Reason: ReasonInvalidProfileName}
	ErrInvalidSchemaName   = &ValidationError{Reason: ReasonInvalidSchemaName}
	ErrTooManyMappings     = &ValidationError{Reason: ReasonTooManyMappings}
	ErrMissingTagName      = &ValidationError{Reason: ReasonMissingTagName}
	ErrUnknownCategory     = &ValidationError{Reason: ReasonUnknownCategory}
	ErrInvalidMinAge       = &ValidationError{Reason: ReasonInvalidMinAge}
	ErrUnknownTag          = &ValidationError{Reason: ReasonUnknownTag}
	ErrUnknownSchema       = &ValidationError{Reason: ReasonUnknownSchema}
)

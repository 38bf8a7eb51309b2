// Package authoring drives one classification profile authoring session:
// catalog lookups for the form, validation, statement generation and the
// ordered dispatch of statements to the data platform.
package authoring

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/pbaille/autoclass/internal/catalog"
	"github.com/pbaille/autoclass/internal/domain"
	"github.com/pbaille/autoclass/internal/profile"
	"github.com/pbaille/autoclass/internal/warehouse"
)

const (
	createLabel          = "Create profile"
	createAndAttachLabel = "Create and attach profile"
)

// History records what a submission sent to the platform.
type History interface {
	RecordSubmission(sub domain.Submission) (*domain.Submission, error)
}

// Options tunes a Session. The zero value records nothing and checks
// mappings against the catalog.
type Options struct {
	History          History
	SkipCatalogCheck bool
}

// Session is one authoring session. Catalog lookups are cached for its
// lifetime.
type Session struct {
	catalog *catalog.Cache
	exec    warehouse.Executor
	opts    Options
	logger  *zap.Logger
}

// Result describes a submission that reached the platform.
type Result struct {
	SubmissionID string             `json:"submission_id,omitempty"`
	Statements   profile.Statements `json:"statements"`
	Executed     []string           `json:"executed"`
	Description  any                `json:"description,omitempty"`
}

// NewSession creates a session reading the catalog from lister and
// executing statements with exec.
func NewSession(lister catalog.Lister, exec warehouse.Executor, opts Options, logger *zap.Logger) *Session {
	return &Session{
		catalog: catalog.NewCache(lister),
		exec:    exec,
		opts:    opts,
		logger:  logger,
	}
}

// Tags returns the qualified names offered by the tag selector.
func (s *Session) Tags(ctx context.Context) ([]string, error) {
	tags, err := s.catalog.ListTags(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(tags))
	for i, t := range tags {
		names[i] = t.QualifiedName()
	}
	return names, nil
}

// Schemas returns the qualified names offered by the schema selectors.
func (s *Session) Schemas(ctx context.Context) ([]string, error) {
	schemas, err := s.catalog.ListSchemas(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(schemas))
	for i, sc := range schemas {
		names[i] = sc.QualifiedName()
	}
	return names, nil
}

// Preview validates the draft and returns its statements without sending
// anything.
func (s *Session) Preview(d domain.ProfileDraft) (profile.Statements, error) {
	return profile.Serialize(d)
}

// CheckCatalog rejects tags and schemas the catalog does not list.
// Unquoted identifiers are case-insensitive, so names compare that way.
func (s *Session) CheckCatalog(ctx context.Context, d domain.ProfileDraft) error {
	tags, err := s.Tags(ctx)
	if err != nil {
		return fmt.Errorf("check catalog: %w", err)
	}
	schemas, err := s.Schemas(ctx)
	if err != nil {
		return fmt.Errorf("check catalog: %w", err)
	}

	knownTags := nameSet(tags)
	for _, m := range d.TagMappings {
		if !knownTags[strings.ToUpper(m.TagName)] {
			return &profile.ValidationError{Reason: profile.ReasonUnknownTag, TagName: m.TagName}
		}
	}

	knownSchemas := nameSet(schemas)
	for _, sc := range append([]string{d.ProfileSchema}, d.AttachToSchemas...) {
		if !knownSchemas[strings.ToUpper(sc)] {
			return &profile.ValidationError{Reason: profile.ReasonUnknownSchema, Schema: sc}
		}
	}
	return nil
}

// Submit validates the draft, creates the profile, attaches it to each
// requested schema in order and describes the result. Nothing is sent for
// an invalid draft. The first failing statement stops the batch; statements
// already applied stay applied and are listed in the returned Result. A
// failing describe after every write is returned too; the submission is
// then recorded as unverified.
func (s *Session) Submit(ctx context.Context, d domain.ProfileDraft) (*Result, error) {
	st, err := profile.Serialize(d)
	if err != nil {
		return nil, err
	}
	if !s.opts.SkipCatalogCheck {
		if err := s.CheckCatalog(ctx, d); err != nil {
			return nil, err
		}
	}

	res := &Result{Statements: st, Executed: []string{}}
	for _, stmt := range st.Writes() {
		if _, err := s.exec.Execute(ctx, stmt); err != nil {
			s.logger.Warn("profile submission stopped",
				zap.String("profile", st.QualifiedName),
				zap.Int("applied", len(res.Executed)),
				zap.Error(err),
			)
			s.record(res, err)
			return res, err
		}
		res.Executed = append(res.Executed, stmt)
	}

	s.logger.Info("profile created",
		zap.String("profile", st.QualifiedName),
		zap.Int("attachments", len(st.Attach)),
	)

	desc, err := s.describe(ctx, st.Describe)
	if err != nil {
		s.logger.Warn("describe created profile",
			zap.String("profile", st.QualifiedName),
			zap.Error(err),
		)
		s.record(res, err)
		return res, err
	}
	res.Description = desc
	s.record(res, nil)
	return res, nil
}

// Describe returns the description of an existing profile.
func (s *Session) Describe(ctx context.Context, qualifiedName string) (any, error) {
	return s.describe(ctx, profile.DescribeStatement(qualifiedName))
}

func (s *Session) describe(ctx context.Context, stmt string) (any, error) {
	rows, err := s.exec.Execute(ctx, stmt)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return decodeDescription(rows[0].Value(0)), nil
}

func (s *Session) record(res *Result, runErr error) {
	if s.opts.History == nil {
		return
	}

	sub := domain.Submission{QualifiedName: res.Statements.QualifiedName}
	writes := res.Statements.Writes()
	switch {
	case len(res.Executed) == len(writes) && runErr != nil:
		sub.Status = domain.SubmissionUnverified
	case len(res.Executed) == len(writes):
		sub.Status = domain.SubmissionApplied
	case len(res.Executed) == 0:
		sub.Status = domain.SubmissionFailed
	default:
		sub.Status = domain.SubmissionPartial
	}
	if runErr != nil {
		sub.Error = runErr.Error()
	}
	for i, stmt := range writes {
		sub.Statements = append(sub.Statements, domain.StatementRecord{
			Position:  i,
			Statement: stmt,
			Applied:   i < len(res.Executed),
		})
	}

	rec, err := s.opts.History.RecordSubmission(sub)
	if err != nil {
		s.logger.Warn("record submission", zap.Error(err))
		return
	}
	res.SubmissionID = rec.ID
}

// SubmitLabel is the caption of the submit action for the chosen targets.
func SubmitLabel(attachTo []string) string {
	if len(attachTo) == 0 {
		return createLabel
	}
	return createAndAttachLabel
}

// IsValidationError reports whether err is a local input failure rather
// than a platform failure.
func IsValidationError(err error) bool {
	var verr *profile.ValidationError
	return errors.As(err, &verr)
}

func decodeDescription(v any) any {
	var raw []byte
	switch t := v.(type) {
	case string:
		raw = []byte(t)
	case []byte:
		raw = t
	default:
		return v
	}

	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return string(raw)
	}
	return out
}

func nameSet(names []string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[strings.ToUpper(n)] = true
	}
	return set
}

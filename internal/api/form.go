package api

import (
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/pbaille/autoclass/internal/authoring"
	"github.com/pbaille/autoclass/internal/category"
	"github.com/pbaille/autoclass/internal/domain"
)

//go:embed templates/*.html
var templateFS embed.FS

var pages = template.Must(template.ParseFS(templateFS, "templates/*.html"))

type formPage struct {
	SessionID   string
	Schemas     []string
	Tags        []string
	Categories  []string
	Rows        []int
	CreateLabel string
	AttachLabel string
}

type resultPage struct {
	Error       string
	Executed    []string
	Skipped     []string
	Description string
}

// form starts a session and renders an empty authoring form
func (s *Server) form(w http.ResponseWriter, r *http.Request) {
	id, sess := s.startSession()

	schemas, err := sess.Schemas(r.Context())
	if err != nil {
		s.renderResult(w, http.StatusBadGateway, resultPage{Error: err.Error()})
		return
	}
	tags, err := sess.Tags(r.Context())
	if err != nil {
		s.renderResult(w, http.StatusBadGateway, resultPage{Error: err.Error()})
		return
	}

	rows := make([]int, domain.MaxTagMappings)
	for i := range rows {
		rows[i] = i
	}

	s.render(w, http.StatusOK, "form.html", formPage{
		SessionID:   id,
		Schemas:     schemas,
		Tags:        tags,
		Categories:  category.All(),
		Rows:        rows,
		CreateLabel: authoring.SubmitLabel(nil),
		AttachLabel: authoring.SubmitLabel([]string{""}),
	})
}

// submitForm handles a posted authoring form. The session ends with the
// result page, which links to a fresh form.
func (s *Server) submitForm(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(r)
	if !ok {
		s.renderResult(w, http.StatusNotFound, resultPage{Error: "session not found"})
		return
	}
	if err := r.ParseForm(); err != nil {
		s.renderResult(w, http.StatusBadRequest, resultPage{Error: "invalid form"})
		return
	}

	d, err := parseDraftForm(r.PostForm)
	if err != nil {
		s.renderResult(w, http.StatusBadRequest, resultPage{Error: err.Error()})
		return
	}

	res, err := sess.Submit(r.Context(), d)
	s.endSession(r.PathValue("id"))

	page := resultPage{}
	status := http.StatusCreated
	if err != nil {
		page.Error = err.Error()
		status = http.StatusBadGateway
		if authoring.IsValidationError(err) {
			status = http.StatusUnprocessableEntity
		}
	}
	if res != nil {
		page.Executed = res.Executed
		page.Skipped = res.Statements.Writes()[len(res.Executed):]
		if res.Description != nil {
			desc, _ := json.MarshalIndent(res.Description, "", "  ")
			page.Description = string(desc)
		}
	}

	s.renderResult(w, status, page)
}

// parseDraftForm maps the posted fields onto a draft. Rows without a
// selected tag are unused and skipped.
func parseDraftForm(form url.Values) (domain.ProfileDraft, error) {
	d := domain.ProfileDraft{
		ProfileSchema:   form.Get("profile_schema"),
		ProfileName:     form.Get("profile_name"),
		ReplaceIfExists: form.Has("replace_if_exists"),
		MaxValidityDays: form.Get("max_validity_days"),
		AutoTag:         form.Has("auto_tag"),
		AttachToSchemas: form["attach_to_schemas"],
	}

	if raw := strings.TrimSpace(form.Get("min_object_age_days")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return domain.ProfileDraft{}, fmt.Errorf("minimum object age must be a whole number")
		}
		d.MinObjectAgeDays = n
	}

	for i := range domain.MaxTagMappings {
		tag := form.Get(fmt.Sprintf("tag_%d", i))
		if tag == "" {
			continue
		}
		m := domain.TagMapping{TagName: tag}
		if !form.Has(fmt.Sprintf("semantic_%d", i)) {
			m.TagValue = domain.StringPtr(form.Get(fmt.Sprintf("value_%d", i)))
			m.SemanticCategories = form[fmt.Sprintf("categories_%d", i)]
		}
		d.TagMappings = append(d.TagMappings, m)
	}

	return d, nil
}

func (s *Server) renderResult(w http.ResponseWriter, status int, page resultPage) {
	s.render(w, status, "result.html", page)
}

func (s *Server) render(w http.ResponseWriter, status int, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := pages.ExecuteTemplate(w, name, data); err != nil {
		s.logger.Error("render page", zap.String("page", name), zap.Error(err))
	}
}

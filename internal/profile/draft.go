package profile

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/pbaille/autoclass/internal/domain"
)

// LoadDraft reads a YAML draft file from path.
func LoadDraft(path string) (domain.ProfileDraft, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.ProfileDraft{}, fmt.Errorf("read draft %s: %w", path, err)
	}
	return ParseDraft(data)
}

// ParseDraft decodes a YAML draft. auto_tag defaults to true when absent;
// a mapping without tag_value uses the semantic category as its value.
// Unknown keys are rejected.
func ParseDraft(data []byte) (domain.ProfileDraft, error) {
	d := domain.NewProfileDraft()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&d); err != nil {
		if errors.Is(err, io.EOF) {
			return domain.ProfileDraft{}, fmt.Errorf("parse draft: empty document")
		}
		return domain.ProfileDraft{}, fmt.Errorf("parse draft: %w", err)
	}
	return d, nil
}

// MarshalDraft renders a draft back to YAML, e.g. for a starter template.
func MarshalDraft(d domain.ProfileDraft) ([]byte, error) {
	out, err := yaml.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("marshal draft: %w", err)
	}
	return out, nil
}

package types

import (
	"fmt"
	"strings"
)

// ModelRef identifies a judge candidate as a provider/model pair.
// It is an immutable value type; identity is the "provider/model" key.
type ModelRef struct {
	Provider string `json:"provider" yaml:"provider"`
	Model    string `json:"model" yaml:"model"`
}

// Key returns the canonical identity key "provider/model".
func (r ModelRef) Key() string {
	return r.Provider + "/" + r.Model
}

// String returns the same representation as Key.
func (r ModelRef) String() string {
	return r.Key()
}

// IsZero reports whether the ref carries no provider and no model.
func (r ModelRef) IsZero() bool {
	return r.Provider == "" && r.Model == ""
}

// ParseModelRef parses a "provider/model" pair. The model part may itself
// contain slashes (e.g. openrouter model paths); only the first slash splits.
func ParseModelRef(s string) (ModelRef, error) {
	s = strings.TrimSpace(s)
	provider, model, found := strings.Cut(s, "/")
	if !found || strings.TrimSpace(provider) == "" || strings.TrimSpace(model) == "" {
		return ModelRef{}, fmt.Errorf("invalid model reference %q: want provider/model", s)
	}
	return ModelRef{
		Provider: strings.TrimSpace(provider),
		Model:    strings.TrimSpace(model),
	}, nil
}

// ParseModelRefList parses a comma-separated list of "provider/model" pairs.
// Empty entries are skipped; malformed entries are dropped rather than
// failing the whole list, since operator config is best-effort here.
func ParseModelRefList(s string) []ModelRef {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var refs []ModelRef
	for _, part := range strings.Split(s, ",") {
		ref, err := ParseModelRef(part)
		if err != nil {
			continue
		}
		refs = append(refs, ref)
	}
	return refs
}

// ParseModelRefs parses a slice of "provider/model" strings, dropping
// malformed entries.
func ParseModelRefs(items []string) []ModelRef {
	var refs []ModelRef
	for _, item := range items {
		ref, err := ParseModelRef(item)
		if err != nil {
			continue
		}
		refs = append(refs, ref)
	}
	return refs
}

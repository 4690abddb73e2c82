package ruleset

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"

	"stratum-hq/ganymede/pkg/sim/rule"
)

// newStrictDecoder returns a YAML decoder that rejects unknown fields.
func newStrictDecoder(data []byte) *yaml.Decoder {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	return dec
}

// Spec is one declarative rule definition.
type Spec struct {
	// Name uniquely identifies the rule within the set.
	Name string `yaml:"name"`

	// Kind selects the rule behavior; it must be registered with the
	// factory used to build the set.
	Kind string `yaml:"kind"`

	// Scope optionally asserts the rule's scope ("model" or "agent").
	// When set it must match the scope of the built rule; it exists so a
	// rule-set author can state their expectation and fail loudly on a
	// kind mismatch.
	Scope rule.Scope `yaml:"scope,omitempty"`

	// Priority is the explicit conflict priority. Zero leaves conflict
	// ordering to registration order.
	Priority int `yaml:"priority,omitempty"`

	// Enabled gates the rule; disabled specs are parsed and validated
	// but not built. Defaults to true.
	Enabled *bool `yaml:"enabled,omitempty"`

	// Params holds kind-specific parameters.
	Params map[string]any `yaml:"params,omitempty"`
}

// IsEnabled reports whether the spec should be built. Unset means enabled.
func (s *Spec) IsEnabled() bool {
	return s.Enabled == nil || *s.Enabled
}

// Validate checks the spec's structural fields.
func (s *Spec) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("%w: rule spec has no name", ErrInvalidSpec)
	}
	if s.Kind == "" {
		return fmt.Errorf("%w: rule %s has no kind", ErrInvalidSpec, s.Name)
	}
	if s.Scope != "" && !s.Scope.Valid() {
		return fmt.Errorf("%w: rule %s has unknown scope %q", ErrInvalidSpec, s.Name, s.Scope)
	}
	return nil
}

// DecodeParams unmarshals the spec's params into a typed parameter struct.
// Unknown keys are rejected so typos in rule files surface at load time
// rather than silently using defaults.
func (s *Spec) DecodeParams(out any) error {
	if len(s.Params) == 0 {
		return nil
	}
	data, err := yaml.Marshal(s.Params)
	if err != nil {
		return fmt.Errorf("rule %s: marshal params: %w", s.Name, err)
	}
	dec := newStrictDecoder(data)
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("%w: rule %s: %v", ErrInvalidSpec, s.Name, err)
	}
	return nil
}

// Document is a rule-set file: an ordered list of rule specs. Order in the
// file is registration order, which makes file-defined rule sets
// deterministic.
type Document struct {
	Rules []Spec `yaml:"rules"`
}

// Validate validates every spec and checks name uniqueness across the
// document.
func (d *Document) Validate() error {
	seen := make(map[string]struct{}, len(d.Rules))
	for i := range d.Rules {
		s := &d.Rules[i]
		if err := s.Validate(); err != nil {
			return err
		}
		if _, ok := seen[s.Name]; ok {
			return fmt.Errorf("%w: duplicate rule name %q", ErrInvalidSpec, s.Name)
		}
		seen[s.Name] = struct{}{}
	}
	return nil
}

// ParseDocument parses one YAML rule-set document.
func ParseDocument(data []byte) (*Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSpec, err)
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

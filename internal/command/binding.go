package command

// InputSpec is the configuration form of an Input: a type ("Key" or
// "Button") and a human-readable value.
type InputSpec struct {
	Type  string `json:"type" yaml:"type" toml:"type"`
	Value string `json:"value" yaml:"value" toml:"value"`
}

// Binding is one configured command before resolution. An absent Range
// selects the press-once action variant; a present one selects
// click-repeat.
type Binding struct {
	Listen InputSpec `json:"listen" yaml:"listen" toml:"listen"`
	Action InputSpec `json:"action" yaml:"action" toml:"action"`
	Method string    `json:"method" yaml:"method" toml:"method"`
	Range  *Rate     `json:"range,omitempty" yaml:"range,omitempty" toml:"range,omitempty"`
}

// KeyResolver canonicalizes human-readable key names. It returns false for
// names that do not denote a known key.
type KeyResolver interface {
	Canonical(name string) (string, bool)
}

// Resolve converts the spec to an Input, canonicalizing key names with
// keys. Failures are ConfigErrors.
func (s InputSpec) Resolve(keys KeyResolver) (Input, error) {
	return resolveInput(s, "input", keys)
}

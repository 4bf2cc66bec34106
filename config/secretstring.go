package config

// SecretStringValue is what gets written instead of the actual secret.
const SecretStringValue = "<secret>"

// SecretString is a string which must never be visible in logs, dumped
// configuration or debug reports.
type SecretString string

// Value returns actual secret, to be used only where secret is consumed.
func (s SecretString) Value() string {
	return string(s)
}

// String makes sure secret does not leak through fmt or zap.Stringer.
func (s SecretString) String() string {
	if len(s) == 0 {
		return ""
	}
	return SecretStringValue
}

func (s SecretString) MarshalJSON() ([]byte, error) {
	if len(s) == 0 {
		return []byte("null"), nil
	}
	return []byte("\"" + SecretStringValue + "\""), nil
}

func (s SecretString) MarshalYAML() (any, error) {
	if len(s) == 0 {
		return nil, nil
	}
	return SecretStringValue, nil
}

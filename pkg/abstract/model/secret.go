package model

const secretMask = "<masked>"

// SecretString is a credential that must never leak into logs or marshalled
// output. Unwrap explicitly with string(s) at the single place the DSN is
// built.
type SecretString string

func (s SecretString) String() string {
	if s == "" {
		return ""
	}
	return secretMask
}

func (s SecretString) GoString() string {
	return s.String()
}

func (s SecretString) MarshalJSON() ([]byte, error) {
	return []byte(`"` + secretMask + `"`), nil
}

func (s SecretString) MarshalYAML() (interface{}, error) {
	return secretMask, nil
}

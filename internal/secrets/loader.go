package secrets

import (
	"fmt"
	"os"
	"strings"
)

// Source names a credential and the places it may come from: an inline
// configuration value or a file path. App passwords and API keys are loaded
// through it so error messages can say which credential is missing.
type Source struct {
	// Name identifies the credential in error messages.
	Name string
	// Value is the credential as configured inline.
	Value string
	// File is a path to a file holding the credential. A set File wins over
	// Value.
	File string
}

// Load resolves the credential, preferring the file over the inline value,
// and trims surrounding whitespace. It fails when the file cannot be read or
// when no source yields a non-blank credential.
func Load(src Source) (string, error) {
	name := strings.TrimSpace(src.Name)
	if name == "" {
		name = "secret"
	}

	value := src.Value
	file := strings.TrimSpace(src.File)
	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("reading %s from file %q: %w", name, file, err)
		}
		value = string(data)
	}

	secret := strings.TrimSpace(value)
	if secret != "" {
		return secret, nil
	}

	if file != "" {
		return "", fmt.Errorf("%s file %q is empty", name, file)
	}
	return "", fmt.Errorf("%s is not configured", name)
}

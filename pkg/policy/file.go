package policy

import (
	"embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

// schemaFS embeds the JSON Schema a policy file must satisfy.
//
//go:embed policy-schema.json
var schemaFS embed.FS

// ErrInvalidPolicyFile is returned when a policy file fails schema
// validation.
var ErrInvalidPolicyFile = errors.New("invalid policy file")

// policyFile is the on-disk shape of a policy file.
type policyFile struct {
	Aliases map[string][]string `yaml:"aliases"`
}

// LoadFile reads a YAML policy file, validates it against the embedded
// schema, and returns the policy it declares. Repeated aliases per name
// are de-duplicated; alias order follows the file.
func LoadFile(path string) (Policy, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read policy file %s: %w", path, err)
	}

	err = validate(content)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	var file policyFile

	err = yaml.Unmarshal(content, &file)
	if err != nil {
		return nil, fmt.Errorf("parse policy file %s: %w", path, err)
	}

	p := make(Policy, len(file.Aliases))
	for qualname, aliases := range file.Aliases {
		p.Add(qualname, aliases...)
	}

	return p, nil
}

// validate checks the decoded document against the embedded schema so a
// malformed file is rejected with field-level diagnostics before any of
// it takes effect.
func validate(content []byte) error {
	var doc any

	err := yaml.Unmarshal(content, &doc)
	if err != nil {
		return fmt.Errorf("parse policy file: %w", err)
	}

	schemaBytes, err := schemaFS.ReadFile("policy-schema.json")
	if err != nil {
		return fmt.Errorf("read embedded policy schema: %w", err)
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(schemaBytes),
		gojsonschema.NewGoLoader(doc),
	)
	if err != nil {
		return fmt.Errorf("validate policy file: %w", err)
	}

	if !result.Valid() {
		details := make([]string, 0, len(result.Errors()))
		for _, verr := range result.Errors() {
			details = append(details, verr.String())
		}

		return fmt.Errorf("%w: %s", ErrInvalidPolicyFile, strings.Join(details, "; "))
	}

	return nil
}

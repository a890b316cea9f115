// Package policy defines the alias policy — the mapping from
// fully-qualified import name to its permitted aliases — and its two
// sources: repeated CLI groupings and a YAML policy file.
package policy

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMissingAlias is returned for a policy grouping that names a
// qualified name but no aliases.
var ErrMissingAlias = errors.New("policy entry needs at least one alias")

// Policy maps a fully-qualified import name to its permitted aliases,
// first-seen order, de-duplicated. It is built once at startup and read
// only afterwards; that is what makes sharing it by reference across
// concurrent evaluations safe.
type Policy map[string][]string

// Add appends aliases for qualname, accumulating across calls (union),
// never replacing.
func (p Policy) Add(qualname string, aliases ...string) {
	for _, alias := range aliases {
		if !contains(p[qualname], alias) {
			p[qualname] = append(p[qualname], alias)
		}
	}
}

// Merge folds other into p, accumulating aliases per qualified name.
func (p Policy) Merge(other Policy) {
	for qualname, aliases := range other {
		p.Add(qualname, aliases...)
	}
}

// ParseGrouping parses one "-a" grouping: whitespace-separated tokens,
// the first the qualified name, the rest its permitted aliases. A
// grouping without any alias token is a configuration error.
func ParseGrouping(grouping string) (qualname string, aliases []string, err error) {
	fields := strings.Fields(grouping)
	if len(fields) < 2 {
		return "", nil, fmt.Errorf("%w: %q", ErrMissingAlias, grouping)
	}

	return fields[0], fields[1:], nil
}

// FromGroupings builds a policy from repeated "-a" groupings, unioning
// aliases for repeated qualified names.
func FromGroupings(groupings []string) (Policy, error) {
	p := make(Policy, len(groupings))

	for _, grouping := range groupings {
		qualname, aliases, err := ParseGrouping(grouping)
		if err != nil {
			return nil, err
		}

		p.Add(qualname, aliases...)
	}

	return p, nil
}

func contains(values []string, v string) bool {
	for _, existing := range values {
		if existing == v {
			return true
		}
	}

	return false
}

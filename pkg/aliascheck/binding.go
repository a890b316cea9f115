// Package aliascheck implements the import alias policy evaluator: it
// compares the aliases a source file binds for each fully-qualified import
// name against a caller-supplied policy and produces a lazy stream of
// violations.
package aliascheck

import "sort"

// Binding is one observed import alias occurrence: a fully-qualified name
// bound under a local alias at a source line.
//
// For every policy comparison a Binding is identified by its Alias alone;
// two Bindings with the same alias are interchangeable for membership tests
// against an allowed-alias set regardless of qualified name or line. Call
// sites make this explicit through AliasKey rather than relying on struct
// equality.
type Binding struct {
	Qualname string `json:"qualname"`
	Alias    string `json:"alias"`
	Line     int    `json:"line"`
}

// AliasKey returns the comparison key for policy membership tests.
func (b Binding) AliasKey() string {
	return b.Alias
}

// ImportTable maps each fully-qualified import name to the Bindings a
// single file holds for it. It is built once per file evaluation and never
// mutated afterwards.
type ImportTable map[string][]Binding

// Add records a binding, de-duplicating by alias within its qualified name.
func (t ImportTable) Add(b Binding) {
	for _, existing := range t[b.Qualname] {
		if existing.AliasKey() == b.AliasKey() {
			return
		}
	}

	t[b.Qualname] = append(t[b.Qualname], b)
}

// Qualnames returns the table's qualified names in sorted order. Go map
// iteration order varies between passes even within one process, so the
// evaluator sorts to keep violation order stable across repeated runs of
// the same file.
func (t ImportTable) Qualnames() []string {
	names := make([]string, 0, len(t))
	for name := range t {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// aliasSetEqual reports whether the observed bindings and the allowed
// aliases are equal as sets under alias-only comparison.
func aliasSetEqual(observed []Binding, allowed []string) bool {
	if len(observed) != len(allowed) {
		return false
	}

	allowedSet := make(map[string]struct{}, len(allowed))
	for _, a := range allowed {
		allowedSet[a] = struct{}{}
	}

	if len(allowedSet) != len(observed) {
		return false
	}

	for _, b := range observed {
		if _, ok := allowedSet[b.AliasKey()]; !ok {
			return false
		}
	}

	return true
}

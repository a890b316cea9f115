package aliascheck

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

// Violation is one reported policy breach: a Binding observed in File that
// does not satisfy the policy entry for its qualified name. Allowed holds
// the full permitted alias set for context; it is empty when no aliases
// are permitted for the name at all. Violations are plain values so they
// survive a process boundary intact.
type Violation struct {
	File     string   `json:"file"`
	Qualname string   `json:"qualname"`
	Binding  Binding  `json:"binding"`
	Allowed  []string `json:"allowed,omitempty"`
}

var (
	qualnameColor = color.New(color.FgBlue, color.Bold)
	actualColor   = color.New(color.FgRed, color.Bold)
	allowedColor  = color.New(color.FgGreen, color.Bold)
)

// Message renders the diagnostic line:
//
//	<file>:<line>: <qualname> is aliased as <alias>. <allowed clause>
//
// Coloring follows the fatih/color NoColor global, so --no-color and
// non-TTY output degrade to plain text.
func (v Violation) Message() string {
	var clause string

	switch len(v.Allowed) {
	case 0:
		clause = "There are no allowed aliases."
	case 1:
		clause = fmt.Sprintf("The only allowed alias is %s.", allowedColor.Sprint(v.Allowed[0]))
	default:
		clause = fmt.Sprintf("The only allowed aliases are %s.", allowedColor.Sprint(strings.Join(v.Allowed, ", ")))
	}

	return fmt.Sprintf("%s:%d: %s is aliased as %s. %s",
		v.File,
		v.Binding.Line,
		qualnameColor.Sprint(v.Qualname),
		actualColor.Sprint(v.Binding.Alias),
		clause,
	)
}

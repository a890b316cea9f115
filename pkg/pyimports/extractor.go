// Package pyimports extracts aliased import bindings from Python source
// using the tree-sitter Python grammar. It is the import extraction
// collaborator of the alias policy checker: given file content it produces
// the mapping from fully-qualified import name to the aliases the file
// binds for it, with source lines.
package pyimports

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	forest "github.com/alexaandru/go-sitter-forest/python"
	sitter "github.com/alexaandru/go-tree-sitter-bare"
	"github.com/src-d/enry/v2"

	"github.com/Sumatoshi-tech/aliasfang/pkg/aliascheck"
)

// pythonLang is the enry language name gating extraction.
const pythonLang = "Python"

var (
	// ErrNotPython is returned for files whose detected language is not
	// Python. Extraction must fail loudly rather than report zero
	// bindings for input it cannot read.
	ErrNotPython = errors.New("not a python source file")

	// ErrNoRootNode is returned when parsing yields no syntax tree.
	ErrNoRootNode = errors.New("no root node in parse tree")

	// ErrSyntaxError is returned when the source is not structurally
	// valid Python. tree-sitter parses error-tolerantly, so without
	// this check garbage input would evaluate as a clean file.
	ErrSyntaxError = errors.New("python syntax error")
)

// language is shared by all parsers; tree-sitter language objects are
// immutable.
var language = sitter.NewLanguage(forest.GetLanguage())

// ExtractFile reads and parses a Python file and returns its import
// table. A read failure or non-Python content is a fatal error for this
// file; it never degrades to an empty table.
func ExtractFile(ctx context.Context, path string) (aliascheck.ImportTable, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	if lang := enry.GetLanguage(filepath.Base(path), content); lang != pythonLang {
		return nil, fmt.Errorf("%s: %w (detected %q)", path, ErrNotPython, lang)
	}

	table, err := ExtractSource(ctx, content)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return table, nil
}

// ExtractSource parses Python source and returns its import table.
// Structurally invalid source fails with ErrSyntaxError. Only
// aliased imports are recorded: `import a.b as x` binds qualname "a.b" and
// `from m import n as x` binds qualname "m.n"; imports without an `as`
// clause are never checked and do not appear in the table.
func ExtractSource(ctx context.Context, content []byte) (aliascheck.ImportTable, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(language)

	tree, err := parser.ParseString(ctx, nil, content)
	if err != nil {
		return nil, fmt.Errorf("parse python source: %w", err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.IsNull() {
		return nil, ErrNoRootNode
	}

	if root.HasError() {
		return nil, ErrSyntaxError
	}

	table := make(aliascheck.ImportTable)
	collectImports(root, content, table)

	return table, nil
}

// collectImports walks the tree and records aliased bindings from every
// import statement, including those nested inside functions or classes.
func collectImports(n sitter.Node, source []byte, table aliascheck.ImportTable) {
	switch n.Type() {
	case "import_statement":
		line := int(n.StartPoint().Row) + 1

		for idx := range n.NamedChildCount() {
			child := n.NamedChild(idx)
			if !child.IsNull() && child.Type() == "aliased_import" {
				addAliased(child, source, "", line, table)
			}
		}

		return
	case "import_from_statement":
		module := n.ChildByFieldName("module_name")
		if module.IsNull() {
			return
		}

		prefix := module.Content(source) + "."
		line := int(n.StartPoint().Row) + 1

		for idx := range n.NamedChildCount() {
			child := n.NamedChild(idx)
			if child.IsNull() || child.StartByte() == module.StartByte() {
				continue
			}

			if child.Type() == "aliased_import" {
				addAliased(child, source, prefix, line, table)
			}
		}

		return
	}

	for idx := range n.NamedChildCount() {
		child := n.NamedChild(idx)
		if !child.IsNull() {
			collectImports(child, source, table)
		}
	}
}

// addAliased records one `<name> as <alias>` clause under prefix+name.
func addAliased(n sitter.Node, source []byte, prefix string, line int, table aliascheck.ImportTable) {
	name := n.ChildByFieldName("name")
	alias := n.ChildByFieldName("alias")

	if name.IsNull() || alias.IsNull() {
		return
	}

	qualname := prefix + name.Content(source)

	table.Add(aliascheck.Binding{
		Qualname: qualname,
		Alias:    alias.Content(source),
		Line:     line,
	})
}

package ast

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
)

const (
	// DefaultMaxFileSize is the largest file the extractor accepts.
	DefaultMaxFileSize = 10 * 1024 * 1024

	// WarnFileSize is the threshold above which a warning is logged.
	WarnFileSize = 1024 * 1024
)

// mainGuardRe recognizes the conventional script entry-point guard.
// Textual best-effort check, not a parse-level one.
var mainGuardRe = regexp.MustCompile(`if\s+__name__\s*==\s*['"]__main__['"]`)

// ExtractorOption configures an Extractor instance.
type ExtractorOption func(*Extractor)

// WithMaxFileSize sets the maximum file size the extractor will accept.
func WithMaxFileSize(bytes int64) ExtractorOption {
	return func(e *Extractor) {
		if bytes > 0 {
			e.maxFileSize = bytes
		}
	}
}

// Extractor parses Python source with tree-sitter and extracts import
// declarations.
//
// Extractor instances are safe for concurrent use: each Extract call
// creates its own tree-sitter parser internally.
type Extractor struct {
	maxFileSize int64
}

// NewExtractor creates an Extractor with the given options.
func NewExtractor(opts ...ExtractorOption) *Extractor {
	e := &Extractor{maxFileSize: DefaultMaxFileSize}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract parses one file's content and returns its import
// declarations in source order.
//
// # Inputs
//
//   - ctx: Context for cancellation. Checked before and after parsing;
//     tree-sitter parsing itself cannot be interrupted mid-parse.
//   - content: Raw Python source bytes. Must be valid UTF-8.
//   - filePath: Project-relative path using forward slashes, used only
//     for reporting.
//
// # Outputs
//
//   - *FileImports: Extracted declarations plus file metadata.
//   - error: ErrFileTooLarge, ErrInvalidContent, ErrSyntax for files
//     with syntax errors, or a context error. A non-nil error means
//     the file must be excluded from the index.
//
// Imports nested inside functions or conditionals are extracted like
// top-level ones; whether they fire at runtime is out of scope.
func (e *Extractor) Extract(ctx context.Context, content []byte, filePath string) (*FileImports, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("extract canceled before start: %w", err)
	}

	if int64(len(content)) > e.maxFileSize {
		return nil, fmt.Errorf("%w: size %d exceeds limit %d", ErrFileTooLarge, len(content), e.maxFileSize)
	}

	if len(content) > WarnFileSize {
		slog.Warn("parsing large file",
			slog.String("file", filePath),
			slog.Int("size_bytes", len(content)))
	}

	if !utf8.Valid(content) {
		return nil, fmt.Errorf("%w: content is not valid UTF-8", ErrInvalidContent)
	}

	// New parser instance per call for thread safety.
	parser := sitter.NewParser()
	parser.SetLanguage(python.GetLanguage())

	tree, err := parser.ParseCtx(ctx, nil, content)
	if err != nil {
		return nil, fmt.Errorf("tree-sitter parse failed: %w", err)
	}
	defer tree.Close()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("extract canceled after parse: %w", err)
	}

	root := tree.RootNode()
	if root == nil {
		return nil, fmt.Errorf("%w: tree-sitter returned nil root node", ErrSyntax)
	}
	if root.HasError() {
		// Soft failure at the caller: file is excluded from the index.
		return nil, ErrSyntax
	}

	result := &FileImports{
		FilePath:     filePath,
		Imports:      make([]ImportDecl, 0, 8),
		LineCount:    countLines(content),
		HasMainGuard: mainGuardRe.Match(content),
	}

	e.walk(root, content, result)
	return result, nil
}

// walk traverses the whole tree collecting import statements. Imports
// can appear at any nesting depth, so the walk does not stop at the
// module level.
func (e *Extractor) walk(node *sitter.Node, content []byte, result *FileImports) {
	switch node.Type() {
	case "import_statement":
		e.processImport(node, content, result)
		return
	case "import_from_statement":
		e.processFromImport(node, content, result)
		return
	}

	for i := 0; i < int(node.ChildCount()); i++ {
		e.walk(node.Child(i), content, result)
	}
}

// processImport handles "import a.b" and "import a.b as ab" statements.
// Each imported module yields one declaration.
func (e *Extractor) processImport(node *sitter.Node, content []byte, result *FileImports) {
	line := int(node.StartPoint().Row + 1)

	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Type() {
		case "dotted_name":
			result.Imports = append(result.Imports, ImportDecl{
				Kind:   KindImport,
				Module: text(child, content),
				Line:   line,
			})
		case "aliased_import":
			var module, alias string
			for j := 0; j < int(child.ChildCount()); j++ {
				grandchild := child.Child(j)
				switch grandchild.Type() {
				case "dotted_name":
					module = text(grandchild, content)
				case "identifier":
					alias = text(grandchild, content)
				}
			}
			if module != "" {
				result.Imports = append(result.Imports, ImportDecl{
					Kind:   KindImport,
					Module: module,
					Alias:  alias,
					Line:   line,
				})
			}
		}
	}
}

// importedName is one name from the clause after the "import" keyword.
type importedName struct {
	name  string
	alias string
}

// processFromImport handles "from X import ..." statements, including
// relative ("from ..pkg import x") and wildcard ("from x import *")
// forms. Each imported name yields one declaration sharing the same
// base module and relative level.
func (e *Extractor) processFromImport(node *sitter.Node, content []byte, result *FileImports) {
	line := int(node.StartPoint().Row + 1)

	var (
		module    string
		level     int
		names     []importedName
		wildcard  bool
		sawImport bool
	)

	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Type() {
		case "import":
			sawImport = true
		case "relative_import":
			// relative_import holds import_prefix (the dots) and an
			// optional dotted_name after them.
			for j := 0; j < int(child.ChildCount()); j++ {
				grandchild := child.Child(j)
				switch grandchild.Type() {
				case "import_prefix":
					level = strings.Count(text(grandchild, content), ".")
				case "dotted_name":
					module = text(grandchild, content)
				}
			}
		case "dotted_name":
			if !sawImport {
				module = text(child, content)
			} else {
				names = append(names, importedName{name: text(child, content)})
			}
		case "identifier":
			if sawImport {
				names = append(names, importedName{name: text(child, content)})
			}
		case "wildcard_import":
			wildcard = true
		case "aliased_import":
			var name, alias string
			for j := 0; j < int(child.ChildCount()); j++ {
				grandchild := child.Child(j)
				switch grandchild.Type() {
				case "dotted_name":
					name = text(grandchild, content)
				case "identifier":
					if name == "" {
						name = text(grandchild, content)
					} else {
						alias = text(grandchild, content)
					}
				}
			}
			if name != "" {
				names = append(names, importedName{name: name, alias: alias})
			}
		}
	}

	if wildcard {
		result.Imports = append(result.Imports, ImportDecl{
			Kind:   KindFromImport,
			Module: module,
			Name:   WildcardName,
			Level:  level,
			Line:   line,
		})
		return
	}

	for _, n := range names {
		result.Imports = append(result.Imports, ImportDecl{
			Kind:   KindFromImport,
			Module: module,
			Name:   n.name,
			Alias:  n.alias,
			Level:  level,
			Line:   line,
		})
	}
}

// text returns the source bytes covered by a node as a string.
func text(node *sitter.Node, content []byte) string {
	return string(content[node.StartByte():node.EndByte()])
}

// countLines matches Python's splitlines semantics: a trailing newline
// does not start a new line.
func countLines(content []byte) int {
	if len(content) == 0 {
		return 0
	}
	n := bytes.Count(content, []byte("\n"))
	if content[len(content)-1] != '\n' {
		n++
	}
	return n
}

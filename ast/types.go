// Package ast extracts import declarations from Python source files.
//
// The extractor is purely syntactic: it parses one file with
// tree-sitter and returns the import statements it finds, in source
// order, without evaluating anything. Resolution of imports to project
// files lives in the resolve package.
package ast

// WildcardName is the imported-name marker for "from module import *".
const WildcardName = "*"

// ImportKind distinguishes the two Python import statement forms.
type ImportKind int

const (
	// KindImport is a plain absolute import: "import a.b" or
	// "import a.b as ab".
	KindImport ImportKind = iota

	// KindFromImport is a from-style import: "from a.b import c",
	// "from . import c", or "from a import *".
	KindFromImport
)

// String returns the string representation of the ImportKind.
func (k ImportKind) String() string {
	switch k {
	case KindImport:
		return "import"
	case KindFromImport:
		return "from_import"
	default:
		return "unknown"
	}
}

// ImportDecl is one extracted import declaration.
//
// A statement importing several names ("from a import b, c" or
// "import x, y") produces one ImportDecl per name, matching how the
// resolver consumes them. Immutable once extracted.
type ImportDecl struct {
	// Kind selects which fields are meaningful.
	Kind ImportKind `json:"kind"`

	// Module is the dotted module reference. For KindImport it is the
	// imported module itself. For KindFromImport it is the base module
	// after "from", and may be empty for pure relative imports such as
	// "from . import x".
	Module string `json:"module,omitempty"`

	// Name is the imported name for KindFromImport, or WildcardName
	// for star imports. Empty for KindImport.
	Name string `json:"name,omitempty"`

	// Alias is the local alias ("as" clause), if any.
	Alias string `json:"alias,omitempty"`

	// Level is the number of leading relative dots for KindFromImport.
	// Zero means absolute; 1 means "from .", 2 means "from ..", etc.
	Level int `json:"level,omitempty"`

	// Line is the 1-indexed source line of the statement.
	Line int `json:"line"`
}

// FileImports is the extraction result for a single source file.
type FileImports struct {
	// FilePath is the project-relative path of the parsed file,
	// slash-normalized.
	FilePath string `json:"file_path"`

	// Imports lists the extracted declarations in source order.
	Imports []ImportDecl `json:"imports"`

	// LineCount is the number of lines in the file.
	LineCount int `json:"line_count"`

	// HasMainGuard reports whether the raw text contains an
	// `if __name__ == "__main__"` guard. Best-effort textual check,
	// used by the unimported-files query to keep scripts out of the
	// result.
	HasMainGuard bool `json:"has_main_guard,omitempty"`
}

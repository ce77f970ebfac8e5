// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package index maps project files onto the Python module namespace.
//
// Every indexed file gets exactly one dotted module name derived from
// its path within a source root. The index keeps two synchronized
// mappings (module -> file and file -> module) that the resolver uses
// to turn import references into concrete files.
//
// # Collision Policy
//
// When two files derive the same module name, the first-indexed file
// keeps the mapping and the later file is reported as a collision.
// Resolution stays deterministic but may under-link the shadowed file.
package index

// PackageUnitFile is the filename that marks a directory as an
// importable package. Its module name is the directory's dotted path.
const PackageUnitFile = "__init__.py"

// ModuleIndex is the bidirectional module-name <-> file-path mapping.
//
// ModuleIndex is NOT safe for concurrent use. It is populated by a
// single goroutine in lexical path order during the index phase, then
// read-only during resolution.
type ModuleIndex struct {
	moduleToFile map[string]string
	fileToModule map[string]string
}

// NewModuleIndex returns an empty index.
func NewModuleIndex() *ModuleIndex {
	return &ModuleIndex{
		moduleToFile: make(map[string]string),
		fileToModule: make(map[string]string),
	}
}

// Add registers a file under a module name.
//
// If the module name is already claimed by a different file, the
// existing mapping is kept (first-wins) and Add returns the earlier
// claimant with collided=true so the caller can emit a diagnostic.
// The file -> module direction is recorded either way: the shadowed
// file still knows its own name for relative-import resolution.
func (x *ModuleIndex) Add(module, path string) (prev string, collided bool) {
	x.fileToModule[path] = module

	if existing, ok := x.moduleToFile[module]; ok && existing != path {
		return existing, true
	}
	x.moduleToFile[module] = path
	return "", false
}

// AddFileOnly records a file with no module name. Used for files whose
// derived name is empty; they participate as graph nodes by path but
// can never be the target of an import.
func (x *ModuleIndex) AddFileOnly(path string) {
	x.fileToModule[path] = ""
}

// FileFor returns the file registered under a module name.
func (x *ModuleIndex) FileFor(module string) (string, bool) {
	path, ok := x.moduleToFile[module]
	return path, ok
}

// ModuleFor returns the module name of an indexed file. The name may
// be empty for files indexed by path only.
func (x *ModuleIndex) ModuleFor(path string) (string, bool) {
	module, ok := x.fileToModule[path]
	return module, ok
}

// ModuleCount returns the number of registered module names.
func (x *ModuleIndex) ModuleCount() int {
	return len(x.moduleToFile)
}

// FileCount returns the number of indexed files.
func (x *ModuleIndex) FileCount() int {
	return len(x.fileToModule)
}

package store

import "path/filepath"

// Kind names a class of persisted document.
type Kind string

const (
	KindArchitecture Kind = "architecture"
	KindModule       Kind = "module"
	KindScript       Kind = "script"
)

const (
	architectureFile = "architecture.json"
	modulesDir       = "modules"
	scriptsDir       = "scripts"
	docExt           = ".json"
)

// Layout maps project ids and document ids to paths under a fixed base
// directory:
//
//	<base>/<projectId>/architecture.json
//	<base>/<projectId>/modules/<moduleId>.json
//	<base>/<projectId>/scripts/<scriptId>.json
//
// Project ids must already be normalized.
type Layout struct {
	base string
}

// NewLayout returns a layout rooted at base.
func NewLayout(base string) Layout {
	return Layout{base: filepath.Clean(base)}
}

// Base returns the root directory.
func (l Layout) Base() string { return l.base }

// ProjectDir returns <base>/<projectId>.
func (l Layout) ProjectDir(projectID string) string {
	return filepath.Join(l.base, projectID)
}

// Dir returns the directory holding documents of the given kind.
// Architecture documents live directly in the project directory.
func (l Layout) Dir(projectID string, kind Kind) string {
	switch kind {
	case KindModule:
		return filepath.Join(l.ProjectDir(projectID), modulesDir)
	case KindScript:
		return filepath.Join(l.ProjectDir(projectID), scriptsDir)
	default:
		return l.ProjectDir(projectID)
	}
}

// Path returns the document path for (projectId, kind, id). The id is
// ignored for KindArchitecture.
func (l Layout) Path(projectID string, kind Kind, id string) string {
	if kind == KindArchitecture {
		return filepath.Join(l.ProjectDir(projectID), architectureFile)
	}
	return filepath.Join(l.Dir(projectID, kind), id+docExt)
}

// ArchitecturePath returns <base>/<projectId>/architecture.json.
func (l Layout) ArchitecturePath(projectID string) string {
	return l.Path(projectID, KindArchitecture, "")
}

// ModulePath returns <base>/<projectId>/modules/<moduleId>.json.
func (l Layout) ModulePath(projectID, moduleID string) string {
	return l.Path(projectID, KindModule, moduleID)
}

// ScriptPath returns <base>/<projectId>/scripts/<scriptId>.json.
func (l Layout) ScriptPath(projectID, scriptID string) string {
	return l.Path(projectID, KindScript, scriptID)
}

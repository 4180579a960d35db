package project

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	perrors "github.com/p-blackswan/designstore/internal/errors"
	"github.com/p-blackswan/designstore/internal/metrics"
	"github.com/p-blackswan/designstore/internal/store"
)

// timestampLayout is ISO-8601 with millisecond precision, always UTC.
const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

// Store persists architecture, module and script documents for projects
// and keeps each architecture's module list consistent with the module
// detail documents.
//
// Updates that touch two documents (UpsertModule, DeleteModuleByName) are
// two sequential file writes with no lock between them. A crash, or a
// concurrent call for the same project, between the two writes can leave
// the module list and the module documents out of step. Readers tolerate
// a summary whose details document is missing.
type Store struct {
	ds      *store.Store
	logger  zerolog.Logger
	metrics *metrics.Metrics
	newID   func() string
	now     func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithIDSource overrides the id generator (uuid v4 by default).
func WithIDSource(fn func() string) Option {
	return func(s *Store) { s.newID = fn }
}

// WithClock overrides the time source.
func WithClock(fn func() time.Time) Option {
	return func(s *Store) { s.now = fn }
}

// WithMetrics records every operation on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Store) { s.metrics = m }
}

// NewStore creates a new project store on top of a document store.
func NewStore(ds *store.Store, logger zerolog.Logger, opts ...Option) *Store {
	s := &Store{
		ds:     ds,
		logger: logger.With().Str("component", "project.store").Logger(),
		newID:  func() string { return uuid.New().String() },
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Documents returns the underlying document store.
func (s *Store) Documents() *store.Store {
	return s.ds
}

// SetArchitecture creates or replaces the project's architecture document.
//
// The original createdAt is kept. Each supplied module reuses the id and
// createdAt of an existing summary with the same name. A nil Modules (or
// DataFlow) keeps the current value; an empty one clears it.
func (s *Store) SetArchitecture(projectID string, in SetArchitectureInput) (arch *ProjectArchitecture, err error) {
	start := time.Now()
	defer func() { s.record("set_architecture", start, true, err) }()

	if err := checkID(projectID); err != nil {
		return nil, err
	}
	for _, m := range in.Modules {
		if m.Name == "" {
			return nil, fmt.Errorf("%w: module name is required", perrors.ErrInvalidInput)
		}
	}
	if err := s.ds.EnsureProjectLayout(projectID); err != nil {
		return nil, fmt.Errorf("failed to prepare project %s: %w", projectID, err)
	}

	path := s.ds.Layout().ArchitecturePath(projectID)
	existing, found, err := store.Get[ProjectArchitecture](s.ds, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read architecture: %w", err)
	}

	now := s.timestamp()
	arch = &ProjectArchitecture{
		ProjectID:   projectID,
		Description: in.Description,
		Modules:     []ModuleSummary{},
		DataFlow:    in.DataFlow,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if found {
		arch.CreatedAt = existing.CreatedAt
		if in.DataFlow == nil {
			arch.DataFlow = existing.DataFlow
		}
		if in.Modules == nil && existing.Modules != nil {
			arch.Modules = existing.Modules
		}
	}

	reused := make(map[string]bool, len(in.Modules))
	for _, m := range in.Modules {
		summary := ModuleSummary{
			Name:        m.Name,
			Description: m.Description,
			Inputs:      m.Inputs,
			Outputs:     m.Outputs,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if prev := firstUnused(existing.Modules, m.Name, reused); found && prev != nil {
			summary.ID = prev.ID
			summary.CreatedAt = prev.CreatedAt
			reused[prev.ID] = true
		} else {
			summary.ID = s.newID()
		}
		arch.Modules = append(arch.Modules, summary)
	}

	if err := s.ds.Write(path, arch); err != nil {
		return nil, fmt.Errorf("failed to save architecture: %w", err)
	}

	s.logger.Info().
		Str("project_id", projectID).
		Int("modules", len(arch.Modules)).
		Bool("created", !found).
		Msg("architecture saved")
	return arch, nil
}

// GetArchitecture returns the project's architecture document, or false if
// none has been written yet.
func (s *Store) GetArchitecture(projectID string) (arch *ProjectArchitecture, found bool, err error) {
	start := time.Now()
	defer func() { s.record("get_architecture", start, found, err) }()

	if err := checkID(projectID); err != nil {
		return nil, false, err
	}
	return s.readArchitecture(projectID)
}

// UpsertModule writes the details document for the named module and, when
// an architecture document exists, creates or refreshes the matching
// summary. It returns the module id, which is reused for a name already in
// the module list and minted otherwise.
//
// An existing summary only has its description and updatedAt refreshed;
// its inputs and outputs belong to SetArchitecture. Without an
// architecture document the details are written anyway, under a new id.
//
// The architecture is written before the details document; see Store for
// what happens if the second write does not land.
func (s *Store) UpsertModule(projectID string, in ModuleInput) (moduleID string, err error) {
	start := time.Now()
	defer func() { s.record("upsert_module", start, true, err) }()

	if err := checkID(projectID); err != nil {
		return "", err
	}
	if in.Name == "" {
		return "", fmt.Errorf("%w: module name is required", perrors.ErrInvalidInput)
	}
	if err := s.ds.EnsureProjectLayout(projectID); err != nil {
		return "", fmt.Errorf("failed to prepare project %s: %w", projectID, err)
	}

	arch, found, err := s.readArchitecture(projectID)
	if err != nil {
		return "", err
	}

	now := s.timestamp()
	createdAt := now
	if found {
		if summary := findSummary(arch.Modules, in.Name); summary != nil {
			moduleID = summary.ID
			createdAt = summary.CreatedAt
			summary.Description = in.Description
			summary.UpdatedAt = now
		} else {
			moduleID = s.newID()
			arch.Modules = append(arch.Modules, ModuleSummary{
				ID:          moduleID,
				Name:        in.Name,
				Description: in.Description,
				CreatedAt:   now,
				UpdatedAt:   now,
			})
		}
		arch.UpdatedAt = now
		if err := s.ds.Write(s.ds.Layout().ArchitecturePath(projectID), arch); err != nil {
			return "", fmt.Errorf("failed to save architecture: %w", err)
		}
	} else {
		moduleID = s.newID()
		s.logger.Warn().
			Str("project_id", projectID).
			Str("module", in.Name).
			Msg("no architecture document; module details will not be listed")
	}

	details := ModuleDetails{
		ModuleID:      moduleID,
		Name:          in.Name,
		Description:   in.Description,
		Inputs:        orEmpty(in.Inputs),
		Outputs:       orEmpty(in.Outputs),
		Dependencies:  in.Dependencies,
		Files:         in.Files,
		UsageExamples: in.UsageExamples,
		Notes:         in.Notes,
		CreatedAt:     createdAt,
		UpdatedAt:     now,
	}
	if err := s.ds.Write(s.ds.Layout().ModulePath(projectID, moduleID), details); err != nil {
		return "", fmt.Errorf("failed to save module %q: %w", in.Name, err)
	}

	s.logger.Info().
		Str("project_id", projectID).
		Str("module", in.Name).
		Str("module_id", moduleID).
		Msg("module saved")
	return moduleID, nil
}

// FindModuleByName returns the first summary in the architecture's module
// list whose name matches.
func (s *Store) FindModuleByName(projectID, name string) (summary *ModuleSummary, found bool, err error) {
	start := time.Now()
	defer func() { s.record("find_module", start, found, err) }()

	if err := checkID(projectID); err != nil {
		return nil, false, err
	}
	arch, ok, err := s.readArchitecture(projectID)
	if err != nil || !ok {
		return nil, false, err
	}
	if m := findSummary(arch.Modules, name); m != nil {
		cp := *m
		return &cp, true, nil
	}
	return nil, false, nil
}

// GetModuleByName resolves name through the architecture's module list and
// returns the details document. A missing architecture, summary or details
// document all yield false.
func (s *Store) GetModuleByName(projectID, name string) (details *ModuleDetails, found bool, err error) {
	start := time.Now()
	defer func() { s.record("get_module", start, found, err) }()

	if err := checkID(projectID); err != nil {
		return nil, false, err
	}
	arch, ok, err := s.readArchitecture(projectID)
	if err != nil || !ok {
		return nil, false, err
	}
	m := findSummary(arch.Modules, name)
	if m == nil {
		return nil, false, nil
	}

	doc, ok, err := store.Get[ModuleDetails](s.ds, s.ds.Layout().ModulePath(projectID, m.ID))
	if err != nil {
		return nil, false, fmt.Errorf("failed to read module %q: %w", name, err)
	}
	if !ok {
		return nil, false, nil
	}
	return &doc, true, nil
}

// ListModuleIDs returns the ids of the module documents on disk.
func (s *Store) ListModuleIDs(projectID string) (ids []string, err error) {
	start := time.Now()
	defer func() { s.record("list_module_ids", start, true, err) }()

	if err := checkID(projectID); err != nil {
		return nil, err
	}
	return s.ds.List(s.ds.Layout().Dir(projectID, store.KindModule))
}

// ListModules returns every module details document on disk, including
// ones no longer referenced by the architecture. Order is unspecified.
func (s *Store) ListModules(projectID string) (modules []ModuleDetails, err error) {
	start := time.Now()
	defer func() { s.record("list_modules", start, true, err) }()

	if err := checkID(projectID); err != nil {
		return nil, err
	}
	return listDocuments[ModuleDetails](s.ds, projectID, store.KindModule)
}

// DeleteModuleByName removes the named module's details document and its
// summary. It returns ErrArchitectureNotFound when the project has no
// architecture and ErrModuleNotFound, leaving the architecture untouched,
// when no summary has that name.
//
// The details document is deleted before the architecture is rewritten;
// see Store for what happens if the second write does not land.
func (s *Store) DeleteModuleByName(projectID, name string) (err error) {
	start := time.Now()
	defer func() { s.record("delete_module", start, true, err) }()

	if err := checkID(projectID); err != nil {
		return err
	}
	arch, found, err := s.readArchitecture(projectID)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("%w: project %s", perrors.ErrArchitectureNotFound, projectID)
	}

	idx := indexOfSummary(arch.Modules, name)
	if idx < 0 {
		return fmt.Errorf("%w: %q", perrors.ErrModuleNotFound, name)
	}
	moduleID := arch.Modules[idx].ID

	if err := s.ds.Delete(s.ds.Layout().ModulePath(projectID, moduleID)); err != nil {
		return fmt.Errorf("failed to delete module %q: %w", name, err)
	}

	arch.Modules = append(arch.Modules[:idx], arch.Modules[idx+1:]...)
	arch.UpdatedAt = s.timestamp()
	if err := s.ds.Write(s.ds.Layout().ArchitecturePath(projectID), arch); err != nil {
		return fmt.Errorf("failed to save architecture: %w", err)
	}

	s.logger.Info().
		Str("project_id", projectID).
		Str("module", name).
		Str("module_id", moduleID).
		Msg("module deleted")
	return nil
}

// SetScript stores a new script document. Every call mints a new id, even
// for a script name that already exists.
func (s *Store) SetScript(projectID string, in ScriptInput) (doc *ScriptDocumentation, err error) {
	start := time.Now()
	defer func() { s.record("set_script", start, true, err) }()

	if err := checkID(projectID); err != nil {
		return nil, err
	}
	if in.ScriptName == "" {
		return nil, fmt.Errorf("%w: script name is required", perrors.ErrInvalidInput)
	}

	params := in.Parameters
	if params == nil {
		params = map[string]string{}
	}
	now := s.timestamp()
	doc = &ScriptDocumentation{
		ScriptID:    s.newID(),
		ScriptName:  in.ScriptName,
		Description: in.Description,
		Usage:       in.Usage,
		Examples:    orEmpty(in.Examples),
		Parameters:  params,
		Notes:       in.Notes,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.ds.Write(s.ds.Layout().ScriptPath(projectID, doc.ScriptID), doc); err != nil {
		return nil, fmt.Errorf("failed to save script %q: %w", in.ScriptName, err)
	}

	s.logger.Info().
		Str("project_id", projectID).
		Str("script", in.ScriptName).
		Str("script_id", doc.ScriptID).
		Msg("script saved")
	return doc, nil
}

// GetScriptByName returns the first script document found with the given
// name. When several share a name, which one wins depends on directory
// order.
func (s *Store) GetScriptByName(projectID, name string) (doc *ScriptDocumentation, found bool, err error) {
	start := time.Now()
	defer func() { s.record("get_script", start, found, err) }()

	if err := checkID(projectID); err != nil {
		return nil, false, err
	}
	scripts, err := listDocuments[ScriptDocumentation](s.ds, projectID, store.KindScript)
	if err != nil {
		return nil, false, err
	}
	for i := range scripts {
		if scripts[i].ScriptName == name {
			return &scripts[i], true, nil
		}
	}
	return nil, false, nil
}

// ListScripts returns every script document for the project.
func (s *Store) ListScripts(projectID string) (scripts []ScriptDocumentation, err error) {
	start := time.Now()
	defer func() { s.record("list_scripts", start, true, err) }()

	if err := checkID(projectID); err != nil {
		return nil, err
	}
	return listDocuments[ScriptDocumentation](s.ds, projectID, store.KindScript)
}

func (s *Store) readArchitecture(projectID string) (*ProjectArchitecture, bool, error) {
	arch, found, err := store.Get[ProjectArchitecture](s.ds, s.ds.Layout().ArchitecturePath(projectID))
	if err != nil {
		return nil, false, fmt.Errorf("failed to read architecture: %w", err)
	}
	if !found {
		return nil, false, nil
	}
	return &arch, true, nil
}

// listDocuments reads every document of kind. Files that vanish between
// the listing and the read are skipped.
func listDocuments[T any](ds *store.Store, projectID string, kind store.Kind) ([]T, error) {
	ids, err := ds.List(ds.Layout().Dir(projectID, kind))
	if err != nil {
		return nil, err
	}
	docs := make([]T, 0, len(ids))
	for _, id := range ids {
		doc, ok, err := store.Get[T](ds, ds.Layout().Path(projectID, kind, id))
		if err != nil {
			return nil, fmt.Errorf("failed to read %s %s: %w", kind, id, err)
		}
		if ok {
			docs = append(docs, doc)
		}
	}
	return docs, nil
}

func (s *Store) timestamp() string {
	return s.now().UTC().Format(timestampLayout)
}

func (s *Store) record(op string, start time.Time, found bool, err error) {
	result := metrics.ResultOK
	switch {
	case err == nil && !found, perrors.IsNotFound(err):
		result = metrics.ResultNotFound
	case errors.Is(err, perrors.ErrInvalidIdentifier), errors.Is(err, perrors.ErrInvalidInput):
		result = metrics.ResultInvalid
	case err != nil:
		result = metrics.ResultError
		s.logger.Error().Err(err).Str("op", op).Msg("store operation failed")
	}
	s.metrics.RecordOp(op, result, time.Since(start))
}

func findSummary(modules []ModuleSummary, name string) *ModuleSummary {
	if i := indexOfSummary(modules, name); i >= 0 {
		return &modules[i]
	}
	return nil
}

// firstUnused returns the first summary named name whose id is not in used.
func firstUnused(modules []ModuleSummary, name string, used map[string]bool) *ModuleSummary {
	for i := range modules {
		if modules[i].Name == name && !used[modules[i].ID] {
			return &modules[i]
		}
	}
	return nil
}

func indexOfSummary(modules []ModuleSummary, name string) int {
	for i := range modules {
		if modules[i].Name == name {
			return i
		}
	}
	return -1
}

func orEmpty(xs []string) []string {
	if xs == nil {
		return []string{}
	}
	return xs
}

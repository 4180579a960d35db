package api

import (
	"fmt"
	"net/url"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/p-blackswan/designstore/internal/project"
)

// WorkdirHeader carries the raw project context for the implicit-project routes.
const WorkdirHeader = "X-Workdir"

// Handlers holds dependencies for the design store API handlers.
type Handlers struct {
	designs        *project.Store
	defaultProject string
	logger         zerolog.Logger
}

// NewHandlers creates new API handlers.
func NewHandlers(designs *project.Store, defaultProject string, logger zerolog.Logger) *Handlers {
	return &Handlers{
		designs:        designs,
		defaultProject: defaultProject,
		logger:         logger.With().Str("component", "api_handlers").Logger(),
	}
}

// RegisterRoutes registers the document routes on a project-scoped group.
func (h *Handlers) RegisterRoutes(pg fiber.Router) {
	pg.Put("/architecture", h.SetArchitecture)
	pg.Get("/architecture", h.GetArchitecture)

	pg.Get("/modules", h.ListModules)
	pg.Put("/modules/:name", h.UpsertModule)
	pg.Get("/modules/:name", h.GetModule)
	pg.Delete("/modules/:name", h.DeleteModule)

	pg.Get("/scripts", h.ListScripts)
	pg.Post("/scripts", h.SetScript)
	pg.Get("/scripts/:name", h.GetScript)
}

// ModuleResponse is returned by PUT .../modules/:name.
type ModuleResponse struct {
	ProjectID string `json:"projectId"`
	ModuleID  string `json:"moduleId"`
}

// ModuleListResponse is returned by GET .../modules.
type ModuleListResponse struct {
	Modules []project.ModuleDetails `json:"modules"`
	Total   int                     `json:"total"`
}

// ScriptListResponse is returned by GET .../scripts.
type ScriptListResponse struct {
	Scripts []project.ScriptDocumentation `json:"scripts"`
	Total   int                           `json:"total"`
}

func (h *Handlers) SetArchitecture(c *fiber.Ctx) error {
	projectID, err := h.projectID(c)
	if err != nil {
		return h.storeError(c, err)
	}
	var req project.SetArchitectureInput
	if err := c.BodyParser(&req); err != nil {
		return problemResponse(c, fiber.StatusBadRequest, "invalid_body", "invalid request body")
	}

	arch, err := h.designs.SetArchitecture(projectID, req)
	if err != nil {
		return h.storeError(c, err)
	}
	return h.render(c, arch)
}

func (h *Handlers) GetArchitecture(c *fiber.Ctx) error {
	projectID, err := h.projectID(c)
	if err != nil {
		return h.storeError(c, err)
	}
	arch, found, err := h.designs.GetArchitecture(projectID)
	if err != nil {
		return h.storeError(c, err)
	}
	if !found {
		return problemResponse(c, fiber.StatusNotFound, "architecture_not_found",
			fmt.Sprintf("project %s has no architecture", projectID))
	}
	return h.render(c, arch)
}

func (h *Handlers) UpsertModule(c *fiber.Ctx) error {
	projectID, err := h.projectID(c)
	if err != nil {
		return h.storeError(c, err)
	}
	var req project.ModuleInput
	if err := c.BodyParser(&req); err != nil {
		return problemResponse(c, fiber.StatusBadRequest, "invalid_body", "invalid request body")
	}
	req.Name = param(c, "name")

	moduleID, err := h.designs.UpsertModule(projectID, req)
	if err != nil {
		return h.storeError(c, err)
	}
	return c.JSON(ModuleResponse{ProjectID: projectID, ModuleID: moduleID})
}

func (h *Handlers) GetModule(c *fiber.Ctx) error {
	projectID, err := h.projectID(c)
	if err != nil {
		return h.storeError(c, err)
	}
	name := param(c, "name")
	details, found, err := h.designs.GetModuleByName(projectID, name)
	if err != nil {
		return h.storeError(c, err)
	}
	if !found {
		return problemResponse(c, fiber.StatusNotFound, "module_not_found",
			fmt.Sprintf("module %q not found", name))
	}
	return h.render(c, details)
}

func (h *Handlers) ListModules(c *fiber.Ctx) error {
	projectID, err := h.projectID(c)
	if err != nil {
		return h.storeError(c, err)
	}
	modules, err := h.designs.ListModules(projectID)
	if err != nil {
		return h.storeError(c, err)
	}
	return h.render(c, ModuleListResponse{Modules: modules, Total: len(modules)})
}

func (h *Handlers) DeleteModule(c *fiber.Ctx) error {
	projectID, err := h.projectID(c)
	if err != nil {
		return h.storeError(c, err)
	}
	if err := h.designs.DeleteModuleByName(projectID, param(c, "name")); err != nil {
		return h.storeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handlers) SetScript(c *fiber.Ctx) error {
	projectID, err := h.projectID(c)
	if err != nil {
		return h.storeError(c, err)
	}
	var req project.ScriptInput
	if err := c.BodyParser(&req); err != nil {
		return problemResponse(c, fiber.StatusBadRequest, "invalid_body", "invalid request body")
	}

	doc, err := h.designs.SetScript(projectID, req)
	if err != nil {
		return h.storeError(c, err)
	}
	c.Status(fiber.StatusCreated)
	return h.render(c, doc)
}

func (h *Handlers) GetScript(c *fiber.Ctx) error {
	projectID, err := h.projectID(c)
	if err != nil {
		return h.storeError(c, err)
	}
	name := param(c, "name")
	doc, found, err := h.designs.GetScriptByName(projectID, name)
	if err != nil {
		return h.storeError(c, err)
	}
	if !found {
		return problemResponse(c, fiber.StatusNotFound, "script_not_found",
			fmt.Sprintf("script %q not found", name))
	}
	return h.render(c, doc)
}

func (h *Handlers) ListScripts(c *fiber.Ctx) error {
	projectID, err := h.projectID(c)
	if err != nil {
		return h.storeError(c, err)
	}
	scripts, err := h.designs.ListScripts(projectID)
	if err != nil {
		return h.storeError(c, err)
	}
	return h.render(c, ScriptListResponse{Scripts: scripts, Total: len(scripts)})
}

// projectID resolves the request's project from the path, the X-Workdir
// header, the workdir query parameter or the configured default, in that
// order, and normalizes it.
func (h *Handlers) projectID(c *fiber.Ctx) (string, error) {
	raw := param(c, "project")
	if raw == "" {
		raw = c.Get(WorkdirHeader)
	}
	if raw == "" {
		raw = c.Query("workdir")
	}
	return project.ResolveID(raw, h.defaultProject)
}

// render writes v in the format requested by ?format=, JSON by default.
func (h *Handlers) render(c *fiber.Ctx, v any) error {
	format, err := project.ParseFormat(c.Query("format"))
	if err != nil {
		return h.storeError(c, err)
	}
	body, err := project.Render(v, format)
	if err != nil {
		return h.storeError(c, err)
	}
	if format == project.FormatYAML {
		c.Set(fiber.HeaderContentType, "application/yaml")
	} else {
		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSONCharsetUTF8)
	}
	return c.Send(body)
}

// param returns the unescaped route parameter, so a workdir such as
// /home/me/proj can be sent as %2Fhome%2Fme%2Fproj.
func param(c *fiber.Ctx, key string) string {
	raw := c.Params(key)
	if v, err := url.PathUnescape(raw); err == nil {
		return v
	}
	return raw
}

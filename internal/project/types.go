package project

// ProjectArchitecture is the per-project root document. Its Modules list
// is the authoritative index of which modules exist.
type ProjectArchitecture struct {
	ProjectID   string                   `json:"projectId" yaml:"projectId"`
	Description string                   `json:"description" yaml:"description"`
	Modules     []ModuleSummary          `json:"modules" yaml:"modules"`
	DataFlow    map[string]DataFlowEntry `json:"dataFlow,omitempty" yaml:"dataFlow,omitempty"`
	CreatedAt   string                   `json:"createdAt" yaml:"createdAt"`
	UpdatedAt   string                   `json:"updatedAt" yaml:"updatedAt"`
}

// DataFlowEntry describes how one module exchanges data with the others.
type DataFlowEntry struct {
	DependsOn          []string `json:"dependsOn,omitempty" yaml:"dependsOn,omitempty"`
	ProvidesTo         []string `json:"providesTo,omitempty" yaml:"providesTo,omitempty"`
	DataTransformation string   `json:"dataTransformation,omitempty" yaml:"dataTransformation,omitempty"`
}

// ModuleSummary is the short form of a module embedded in the architecture.
// ID joins it to the ModuleDetails document.
type ModuleSummary struct {
	ID          string   `json:"id" yaml:"id"`
	Name        string   `json:"name" yaml:"name"`
	Description string   `json:"description" yaml:"description"`
	Inputs      []string `json:"inputs,omitempty" yaml:"inputs,omitempty"`
	Outputs     []string `json:"outputs,omitempty" yaml:"outputs,omitempty"`
	CreatedAt   string   `json:"createdAt" yaml:"createdAt"`
	UpdatedAt   string   `json:"updatedAt" yaml:"updatedAt"`
}

// ModuleDetails is the long form of a module, stored at modules/<moduleId>.json.
type ModuleDetails struct {
	ModuleID      string         `json:"moduleId" yaml:"moduleId"`
	Name          string         `json:"name" yaml:"name"`
	Description   string         `json:"description" yaml:"description"`
	Inputs        []string       `json:"inputs" yaml:"inputs"`
	Outputs       []string       `json:"outputs" yaml:"outputs"`
	Dependencies  []string       `json:"dependencies,omitempty" yaml:"dependencies,omitempty"`
	Files         []string       `json:"files,omitempty" yaml:"files,omitempty"`
	UsageExamples []UsageExample `json:"usageExamples,omitempty" yaml:"usageExamples,omitempty"`
	Notes         string         `json:"notes,omitempty" yaml:"notes,omitempty"`
	CreatedAt     string         `json:"createdAt" yaml:"createdAt"`
	UpdatedAt     string         `json:"updatedAt" yaml:"updatedAt"`
}

// UsageExample shows one way to use a module.
type UsageExample struct {
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Command     string `json:"command,omitempty" yaml:"command,omitempty"`
	Input       string `json:"input,omitempty" yaml:"input,omitempty"`
	Output      string `json:"output,omitempty" yaml:"output,omitempty"`
	Notes       string `json:"notes,omitempty" yaml:"notes,omitempty"`
}

// ScriptDocumentation documents a script or command. It is not referenced
// from the architecture.
type ScriptDocumentation struct {
	ScriptID    string            `json:"scriptId" yaml:"scriptId"`
	ScriptName  string            `json:"scriptName" yaml:"scriptName"`
	Description string            `json:"description" yaml:"description"`
	Usage       string            `json:"usage" yaml:"usage"`
	Examples    []string          `json:"examples" yaml:"examples"`
	Parameters  map[string]string `json:"parameters" yaml:"parameters"`
	Notes       string            `json:"notes,omitempty" yaml:"notes,omitempty"`
	CreatedAt   string            `json:"createdAt" yaml:"createdAt"`
	UpdatedAt   string            `json:"updatedAt" yaml:"updatedAt"`
}

// SetArchitectureInput holds the parameters for SetArchitecture.
type SetArchitectureInput struct {
	Description string                   `json:"description" yaml:"description"`
	Modules     []ModuleSummaryInput     `json:"modules,omitempty" yaml:"modules,omitempty"`
	DataFlow    map[string]DataFlowEntry `json:"dataFlow,omitempty" yaml:"dataFlow,omitempty"`
}

// ModuleSummaryInput is a module entry supplied with SetArchitecture.
type ModuleSummaryInput struct {
	Name        string   `json:"name" yaml:"name"`
	Description string   `json:"description" yaml:"description"`
	Inputs      []string `json:"inputs,omitempty" yaml:"inputs,omitempty"`
	Outputs     []string `json:"outputs,omitempty" yaml:"outputs,omitempty"`
}

// ModuleInput holds the parameters for UpsertModule.
type ModuleInput struct {
	Name          string         `json:"name" yaml:"name"`
	Description   string         `json:"description" yaml:"description"`
	Inputs        []string       `json:"inputs,omitempty" yaml:"inputs,omitempty"`
	Outputs       []string       `json:"outputs,omitempty" yaml:"outputs,omitempty"`
	Dependencies  []string       `json:"dependencies,omitempty" yaml:"dependencies,omitempty"`
	Files         []string       `json:"files,omitempty" yaml:"files,omitempty"`
	UsageExamples []UsageExample `json:"usageExamples,omitempty" yaml:"usageExamples,omitempty"`
	Notes         string         `json:"notes,omitempty" yaml:"notes,omitempty"`
}

// ScriptInput holds the parameters for SetScript.
type ScriptInput struct {
	ScriptName  string            `json:"scriptName" yaml:"scriptName"`
	Description string            `json:"description" yaml:"description"`
	Usage       string            `json:"usage" yaml:"usage"`
	Examples    []string          `json:"examples,omitempty" yaml:"examples,omitempty"`
	Parameters  map[string]string `json:"parameters,omitempty" yaml:"parameters,omitempty"`
	Notes       string            `json:"notes,omitempty" yaml:"notes,omitempty"`
}

package domain

// ParamType is the JSON type of a tool parameter.
type ParamType string

// Parameter types.
const (
	ParamString  ParamType = "string"
	ParamInteger ParamType = "integer"
	ParamNumber  ParamType = "number"
	ParamBoolean ParamType = "boolean"
)

// ParamSpec declares one tool parameter.
type ParamSpec struct {
	Name        string
	Type        ParamType
	Description string
	Default     interface{} // nil when the parameter has no default
	Required    bool
}

// ToolDefinition describes one operation in the tool catalog.
type ToolDefinition struct {
	Name        string
	Title       string
	Description string
	Params      []ParamSpec
}

// RequiredParams returns the names of required parameters in declaration order.
func (d ToolDefinition) RequiredParams() []string {
	var out []string
	for _, p := range d.Params {
		if p.Required {
			out = append(out, p.Name)
		}
	}
	return out
}

// Param returns the named parameter declaration.
func (d ToolDefinition) Param(name string) (ParamSpec, bool) {
	for _, p := range d.Params {
		if p.Name == name {
			return p, true
		}
	}
	return ParamSpec{}, false
}

// pkg/registry/registry.go
package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

func LoadRegistry(path string) (*CommandRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var reg CommandRegistry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, err
	}
	return &reg, nil
}

// Find matches by command name or alias, case-insensitive.
func (r *CommandRegistry) Find(name string) (*Command, bool) {
	name = strings.ToLower(name)
	for i := range r.Commands {
		cmd := &r.Commands[i]
		if strings.ToLower(cmd.Name) == name {
			return cmd, true
		}
		for _, alias := range cmd.Aliases {
			if strings.ToLower(alias) == name {
				return cmd, true
			}
		}
	}
	return nil, false
}

// Names returns every command name and alias in the registry.
func (r *CommandRegistry) Names() []string {
	var names []string
	for _, cmd := range r.Commands {
		names = append(names, cmd.Name)
		names = append(names, cmd.Aliases...)
	}
	return names
}

// ValidateInput checks the payload against the command's input schema.
// Commands without a schema accept any payload.
func (c *Command) ValidateInput(data map[string]interface{}) error {
	if len(c.InputSchema) == 0 {
		return nil
	}

	schemaLoader := gojsonschema.NewGoLoader(c.InputSchema)
	documentLoader := gojsonschema.NewGoLoader(data)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("validation error: %w", err)
	}

	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, e := range result.Errors() {
			errs[i] = e.String()
		}
		return fmt.Errorf("input validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

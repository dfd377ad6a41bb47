// pkg/registry/schema.go
package registry

type CommandRegistry struct {
	Version     string    `json:"version"`
	LastUpdated string    `json:"lastUpdated"`
	Commands    []Command `json:"commands"`
}

type Command struct {
	Name        string                 `json:"name"`
	Aliases     []string               `json:"aliases"`
	Description string                 `json:"description"`
	Usage       string                 `json:"usage"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

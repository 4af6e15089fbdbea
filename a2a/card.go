package a2a

// AgentProvider identifies the organization operating the agent.
type AgentProvider struct {
	Organization string `json:"organization"`
	URL          string `json:"url,omitempty"`
}

// AgentCapabilities advertises protocol features the agent supports.
type AgentCapabilities struct {
	Streaming              bool `json:"streaming"`
	PushNotifications      bool `json:"pushNotifications"`
	StateTransitionHistory bool `json:"stateTransitionHistory"`
}

// InputParameter describes one parameter of an agent skill.
type InputParameter struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Required    bool   `json:"required"`
	Type        string `json:"type"`
}

// AgentSkill describes one capability the agent offers.
type AgentSkill struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description,omitempty"`
	Tags        []string         `json:"tags,omitempty"`
	Examples    []string         `json:"examples,omitempty"`
	InputModes  []string         `json:"inputModes,omitempty"`
	OutputModes []string         `json:"outputModes,omitempty"`
	Parameters  []InputParameter `json:"parameters,omitempty"`
}

// AgentCard is the discovery document served under /.well-known/agent.json.
type AgentCard struct {
	Name               string            `json:"name"`
	Description        string            `json:"description"`
	URL                string            `json:"url"`
	Provider           *AgentProvider    `json:"provider,omitempty"`
	Version            string            `json:"version"`
	DocumentationURL   string            `json:"documentationUrl,omitempty"`
	Capabilities       AgentCapabilities `json:"capabilities"`
	DefaultInputModes  []string          `json:"defaultInputModes"`
	DefaultOutputModes []string          `json:"defaultOutputModes"`
	Skills             []AgentSkill      `json:"skills"`
}

// DefaultAgentCard returns the card describing the script generation agent.
func DefaultAgentCard() *AgentCard {
	return &AgentCard{
		Name:        "Movie Script Generator Agent",
		Description: "Agent that generates detailed movie scripts with scenes, characters and technical directions based on input parameters",
		URL:         "http://localhost:8000",
		Version:     "1.0.0",
		Capabilities: AgentCapabilities{
			Streaming:              true,
			PushNotifications:      true,
			StateTransitionHistory: true,
		},
		DefaultInputModes:  []string{"text/plain", "application/json"},
		DefaultOutputModes: []string{"application/json", "text/plain", "text/markdown"},
		Skills: []AgentSkill{
			{
				ID:          "generate-script",
				Name:        "Generate Movie Script",
				Description: "Generates a detailed movie script with scenes, characters, and technical directions based on provided parameters",
				Tags:        []string{"movie", "script", "generation", "creative", "screenplay"},
				InputModes:  []string{"application/json"},
				OutputModes: []string{"application/json", "text/markdown"},
				Parameters: []InputParameter{
					{Name: "title", Description: "The title of the movie", Required: true, Type: "string"},
					{Name: "tags", Description: "Genre tags describing the movie", Required: true, Type: "array"},
					{Name: "idea", Description: "The story idea the script is based on", Required: true, Type: "string"},
					{Name: "lyrics", Description: "Song lyrics to incorporate into the script", Required: false, Type: "string"},
					{Name: "duration", Description: "Target duration in seconds", Required: false, Type: "integer"},
				},
			},
		},
	}
}

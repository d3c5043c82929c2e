package models

// GenerateRequest represents the main application state for one generation run
type GenerateRequest struct {
	ConfigPath    string
	RootDir       string
	BuildDir      string
	Layers        []string
	Target        string
	LogLevel      string
	EnableRules   bool
	RulesFromLabs bool
	NoDiscover    bool
	Interactive   bool

	ForceInteractive    bool
	ForceNonInteractive bool
}

// NewGenerateRequest creates a request with default values
func NewGenerateRequest() *GenerateRequest {
	return &GenerateRequest{}
}

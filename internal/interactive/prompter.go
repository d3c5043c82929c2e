package interactive

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"golang.org/x/term"

	"vuetifyconf-cli/internal/config"
	"vuetifyconf-cli/internal/interfaces"
	"vuetifyconf-cli/internal/source"
	"vuetifyconf-cli/pkg/models"
)

// AskFunc runs a single survey prompt.
type AskFunc func(prompt survey.Prompt, response interface{}, opts ...survey.AskOpt) error

// Prompter handles interactive collection of manifest values
type Prompter struct {
	rootDir      string
	numberSelect bool

	ask        AskFunc
	in         io.Reader
	out        io.Writer
	isTerminal func() bool
}

// NewPrompter creates a new interactive prompter for the project in rootDir
func NewPrompter(rootDir string, numberSelect bool) *Prompter {
	return &Prompter{
		rootDir:      rootDir,
		numberSelect: numberSelect,
		ask:          survey.AskOne,
		in:           os.Stdin,
		out:          os.Stdout,
		isTerminal:   IsTerminal,
	}
}

// IsTerminal reports whether stdin is attached to a terminal
func IsTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// ResolveInteractive determines the interactive mode from the flags. Without
// either flag prompts are shown only when stdin is a terminal.
func ResolveInteractive(request *models.GenerateRequest, terminal bool) {
	switch {
	case request.ForceInteractive:
		request.Interactive = true
	case request.ForceNonInteractive:
		request.Interactive = false
	default:
		request.Interactive = terminal
	}
}

// CollectManifest asks for the manifest values that init writes. cfg holds
// the defaults and receives the answers.
func (p *Prompter) CollectManifest(cfg *interfaces.Config) error {
	if err := p.promptForBuildDir(cfg); err != nil {
		return fmt.Errorf("failed to collect build directory: %w", err)
	}

	if err := p.promptForLayers(cfg); err != nil {
		return fmt.Errorf("failed to collect layers: %w", err)
	}

	discover, err := p.selectYesNo(
		"Follow the extends entries of nuxt.config?",
		"Layers listed in extends are merged below the project configuration",
		cfg.DiscoverLayers,
	)
	if err != nil {
		return fmt.Errorf("failed to collect layer discovery: %w", err)
	}
	cfg.DiscoverLayers = discover

	if cfg.EnableRules, err = p.selectYesNo(
		"Generate the validation rules module?",
		"Merges the vuetify.rules files of every layer into rules-configuration.mjs",
		cfg.EnableRules,
	); err != nil {
		return fmt.Errorf("failed to collect rules option: %w", err)
	}

	if cfg.EnableRules {
		if cfg.RulesFromLabs, err = p.selectYesNo(
			"Are the rules imported from vuetify/labs?",
			"Writes labs-rules-configuration.mjs instead",
			cfg.RulesFromLabs,
		); err != nil {
			return fmt.Errorf("failed to collect labs option: %w", err)
		}
	}

	if err := p.promptForTarget(cfg); err != nil {
		return fmt.Errorf("failed to collect target: %w", err)
	}

	return nil
}

// promptForBuildDir asks for the Nuxt build directory
func (p *Prompter) promptForBuildDir(cfg *interfaces.Config) error {
	prompt := &survey.Input{
		Message: "Build directory:",
		Default: cfg.BuildDir,
		Help:    "Generated modules are written to <build dir>/vuetify",
	}

	var buildDir string
	if err := p.ask(prompt, &buildDir, survey.WithValidator(survey.Required)); err != nil {
		return err
	}

	cfg.BuildDir = strings.TrimSpace(buildDir)
	return nil
}

// promptForLayers offers the layer directories found below the root
func (p *Prompter) promptForLayers(cfg *interfaces.Config) error {
	candidates, err := FindLayerCandidates(p.rootDir)
	if err != nil {
		return err
	}
	if len(candidates) == 0 {
		return nil
	}

	prompt := &survey.MultiSelect{
		Message: "Select additional layers (base-most first):",
		Options: candidates,
		Default: cfg.Layers,
		Help:    "Layers not reachable through extends; they are merged in the listed order",
	}

	var layers []string
	if err := p.ask(prompt, &layers); err != nil {
		return err
	}

	cfg.Layers = layers
	return nil
}

// promptForTarget asks where generated modules go
func (p *Prompter) promptForTarget(cfg *interfaces.Config) error {
	options := []string{config.TargetFile, config.TargetStdout, config.TargetClipboard}

	if p.numberSelect {
		selected, err := p.selectWithNumbers(options, "Select the output target:")
		if err != nil {
			return err
		}
		cfg.Target = selected
		return nil
	}

	prompt := &survey.Select{
		Message: "Select the output target:",
		Options: options,
		Default: cfg.Target,
		Help:    "file writes into the build directory, stdout and clipboard print both modules",
	}

	var selected string
	if err := p.ask(prompt, &selected); err != nil {
		return err
	}

	cfg.Target = selected
	return nil
}

// selectYesNo wraps survey's confirm prompt
func (p *Prompter) selectYesNo(message, help string, defaultValue bool) (bool, error) {
	prompt := &survey.Confirm{
		Message: message,
		Help:    help,
		Default: defaultValue,
	}

	var result bool
	if err := p.ask(prompt, &result); err != nil {
		return false, err
	}

	return result, nil
}

// selectWithNumbers displays numbered options and allows instant selection by number key
func (p *Prompter) selectWithNumbers(options []string, message string) (string, error) {
	fmt.Fprintf(p.out, "\n%s\n\n", message)
	for i, option := range options {
		fmt.Fprintf(p.out, "  %d. %s\n", i+1, option)
	}
	fmt.Fprintln(p.out)

	if !p.isTerminal() {
		return p.fallbackNumberSelection(options)
	}

	fd := int(os.Stdin.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return p.fallbackNumberSelection(options)
	}
	defer term.Restore(fd, oldState)

	fmt.Fprint(p.out, "Select option: ")

	buffer := make([]byte, 1)
	for {
		if _, err := p.in.Read(buffer); err != nil {
			return "", err
		}

		char := buffer[0]
		if char >= '1' && char <= '9' {
			selectedIndex := int(char - '1')
			if selectedIndex < len(options) {
				fmt.Fprintf(p.out, "%c\r\n", char)
				return options[selectedIndex], nil
			}
		}

		// Enter picks the first option
		if char == '\r' || char == '\n' {
			fmt.Fprint(p.out, "\r\n")
			return options[0], nil
		}

		// Escape or Ctrl+C
		if char == 27 || char == 3 {
			fmt.Fprint(p.out, "\r\n")
			return "", fmt.Errorf("selection cancelled")
		}
	}
}

// fallbackNumberSelection reads a line when raw terminal mode is not available
func (p *Prompter) fallbackNumberSelection(options []string) (string, error) {
	fmt.Fprintf(p.out, "Enter number (1-%d) or press Enter for first option: ", len(options))

	reader := bufio.NewReader(p.in)
	input, err := reader.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}

	input = strings.TrimSpace(input)
	if input == "" {
		return options[0], nil
	}

	selectedIndex, err := strconv.Atoi(input)
	if err != nil {
		return "", fmt.Errorf("invalid input: please enter a number between 1 and %d", len(options))
	}
	if selectedIndex < 1 || selectedIndex > len(options) {
		return "", fmt.Errorf("invalid selection: please enter a number between 1 and %d", len(options))
	}

	return options[selectedIndex-1], nil
}

// FindLayerCandidates lists directories below rootDir/layers that carry a
// nuxt.config or a vuetify configuration file, as slash separated paths
// relative to rootDir.
func FindLayerCandidates(rootDir string) ([]string, error) {
	layersDir := filepath.Join(rootDir, "layers")
	entries, err := os.ReadDir(layersDir)
	if os.IsNotExist(err) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read layers directory %s: %w", layersDir, err)
	}

	var candidates []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		dir := filepath.Join(layersDir, entry.Name())
		if hasLayerFile(dir) {
			candidates = append(candidates, "layers/"+entry.Name())
		}
	}
	sort.Strings(candidates)
	return candidates, nil
}

func hasLayerFile(dir string) bool {
	for _, base := range []string{"nuxt.config", "vuetify.config", "vuetify.rules"} {
		for _, ext := range source.Extensions {
			if _, err := os.Stat(filepath.Join(dir, base+"."+ext)); err == nil {
				return true
			}
		}
	}
	return false
}

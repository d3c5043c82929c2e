package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/spf13/cobra"

	"vuetifyconf-cli/internal/app"
	"vuetifyconf-cli/pkg/models"
)

// Build-time variables injected via ldflags
var (
	version   = "dev"
	commit    = "unknown"
	date      = "unknown"
	goVersion = runtime.Version()
)

var rootCmd = &cobra.Command{
	Use:   "vuetifyconf",
	Short: "Merge layered Vuetify configuration into generated modules",
	Long: `vuetifyconf merges the Vuetify configuration of a Nuxt project and its layers
into vuetify/configuration.mjs (and vuetify/rules-configuration.mjs) inside the
build directory.

Configuration comes from the inline vuetify.vuetifyOptions of each nuxt.config and
from vuetify.config.* files that export { config: true, ... }. Layers are found
through the extends entries of nuxt.config and the layers listed in vuetifyconf.toml;
the root project wins over its layers. Source files are parsed, never evaluated.

Running vuetifyconf without a subcommand is the same as vuetifyconf generate.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if versionFlag, _ := cmd.Flags().GetBool("version"); versionFlag {
			versionCmd.Run(cmd, args)
			return nil
		}
		return generateCmd.RunE(cmd, args)
	},
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate the configuration modules once",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		request, err := buildRequestFromFlags(cmd)
		if err != nil {
			return fmt.Errorf("invalid arguments: %w", err)
		}
		return newApp().Generate(cmd.Context(), request)
	},
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Regenerate whenever a configuration file changes",
	Long:  "Generate the configuration modules, then watch every file that contributed to them and regenerate on change until interrupted.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		request, err := buildRequestFromFlags(cmd)
		if err != nil {
			return fmt.Errorf("invalid arguments: %w", err)
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return newApp().Watch(ctx, request)
	},
}

var filesCmd = &cobra.Command{
	Use:   "files",
	Short: "List the files the generated modules depend on",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		request, err := buildRequestFromFlags(cmd)
		if err != nil {
			return fmt.Errorf("invalid arguments: %w", err)
		}
		return newApp().Files(cmd.Context(), request)
	},
}

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Show layers, sources, imports and module options",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		request, err := buildRequestFromFlags(cmd)
		if err != nil {
			return fmt.Errorf("invalid arguments: %w", err)
		}
		return newApp().Inspect(cmd.Context(), request)
	},
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a vuetifyconf.toml manifest",
	Long:  "Write a vuetifyconf.toml manifest for the project. In a terminal the values are asked for interactively; use -y to write the defaults and flags as they are.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		request, err := buildRequestFromFlags(cmd)
		if err != nil {
			return fmt.Errorf("invalid arguments: %w", err)
		}
		force, _ := cmd.Flags().GetBool("force")
		numbers, _ := cmd.Flags().GetBool("numbers")
		return newApp().Init(request, force, numbers)
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  "Print detailed version information including build version, commit, date, and platform details.",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("vuetifyconf version %s\n", version)
		fmt.Printf("  commit: %s\n", commit)
		fmt.Printf("  built: %s\n", date)
		fmt.Printf("  go version: %s\n", goVersion)
		fmt.Printf("  platform: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	},
}

func init() {
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(filesCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(versionCmd)

	initCmd.Flags().BoolP("force", "f", false, "replace an existing manifest")
	initCmd.Flags().BoolP("numbers", "n", false, "enable number key selection for choices")

	// Global flags
	rootCmd.PersistentFlags().StringP("config", "c", "", "manifest path (default <root>/vuetifyconf.toml)")
	rootCmd.PersistentFlags().StringP("root", "r", "", "project root directory (default current directory)")
	rootCmd.PersistentFlags().BoolP("yes", "y", false, "noninteractive mode - use defaults without prompts")
	rootCmd.PersistentFlags().BoolP("interactive", "i", false, "force interactive mode")
	rootCmd.PersistentFlags().String("log-level", "", "log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolP("version", "v", false, "print version information")

	rootCmd.PersistentFlags().String("build-dir", "", "build directory receiving vuetify/*.mjs (default .nuxt)")
	rootCmd.PersistentFlags().StringSlice("layer", []string{}, "additional layer directory, base-most first (repeatable)")
	rootCmd.PersistentFlags().StringP("target", "t", "", "output target (file, stdout, clipboard)")
	rootCmd.PersistentFlags().Bool("rules", false, "generate the validation rules module")
	rootCmd.PersistentFlags().Bool("labs", false, "rules come from vuetify/labs (writes labs-rules-configuration.mjs)")
	rootCmd.PersistentFlags().Bool("no-discover", false, "do not follow the extends entries of nuxt.config")
}

// buildRequestFromFlags constructs a GenerateRequest from command flags
func buildRequestFromFlags(cmd *cobra.Command) (*models.GenerateRequest, error) {
	request := models.NewGenerateRequest()

	var err error

	if request.ConfigPath, err = cmd.Flags().GetString("config"); err != nil {
		return nil, fmt.Errorf("invalid config flag: %w", err)
	}

	if request.RootDir, err = cmd.Flags().GetString("root"); err != nil {
		return nil, fmt.Errorf("invalid root flag: %w", err)
	}

	// Handle interactive mode flags
	if request.ForceNonInteractive, err = cmd.Flags().GetBool("yes"); err != nil {
		return nil, fmt.Errorf("invalid yes flag: %w", err)
	}

	if request.ForceInteractive, err = cmd.Flags().GetBool("interactive"); err != nil {
		return nil, fmt.Errorf("invalid interactive flag: %w", err)
	}

	// Validate that both flags are not set
	if request.ForceInteractive && request.ForceNonInteractive {
		return nil, fmt.Errorf("cannot use both --interactive and --yes flags")
	}

	if request.LogLevel, err = cmd.Flags().GetString("log-level"); err != nil {
		return nil, fmt.Errorf("invalid log-level flag: %w", err)
	}

	if request.BuildDir, err = cmd.Flags().GetString("build-dir"); err != nil {
		return nil, fmt.Errorf("invalid build-dir flag: %w", err)
	}

	if request.Layers, err = cmd.Flags().GetStringSlice("layer"); err != nil {
		return nil, fmt.Errorf("invalid layer flag: %w", err)
	}

	if request.Target, err = cmd.Flags().GetString("target"); err != nil {
		return nil, fmt.Errorf("invalid target flag: %w", err)
	}

	if request.EnableRules, err = cmd.Flags().GetBool("rules"); err != nil {
		return nil, fmt.Errorf("invalid rules flag: %w", err)
	}

	if request.RulesFromLabs, err = cmd.Flags().GetBool("labs"); err != nil {
		return nil, fmt.Errorf("invalid labs flag: %w", err)
	}

	if request.NoDiscover, err = cmd.Flags().GetBool("no-discover"); err != nil {
		return nil, fmt.Errorf("invalid no-discover flag: %w", err)
	}

	return request, nil
}

func newApp() *app.App {
	return app.New(version, os.Stdout, os.Stderr)
}

func main() {
	// Disable usage on error to show only our custom error messages
	rootCmd.SilenceUsage = true
	rootCmd.SilenceErrors = true

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

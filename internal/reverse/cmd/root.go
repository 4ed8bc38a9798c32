package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	pathpkg "path/filepath"
	"runtime/pprof"

	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/fang"
	charmlog "github.com/charmbracelet/log"
	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"

	"ilreverse/internal/config"
	"ilreverse/internal/logging"
	"ilreverse/internal/metadata"
	reverselog "ilreverse/internal/reverse/log"
	"ilreverse/internal/session"
	"ilreverse/internal/ui/colorize"
)

// app is the state shared by every command of one invocation.
type app struct {
	cfg     config.Config
	logger  *logging.LoggerCloser
	log     *slog.Logger
	hl      *colorize.Highlighter
	styled  bool
	profile *os.File
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	a := &app{}
	rootCmd := &cobra.Command{
		Use:   "ilreverse [image]",
		Short: "Terminal-based .NET IL browser and patcher",
		Long: `ilreverse loads a .NET module image, lists its types and members, analyzes
method bodies and patches them with IL assembler text.
Without a subcommand it opens an interactive browser over the module.`,
		Example: `
# Browse a module interactively
ilreverse app.yaml

# Print the summary without the TUI
ilreverse -n app.yaml

# Patch the first instruction of Main and save a copy
ilreverse patch app.yaml Program::Main 'ldstr "patched"' --out patched.yaml
  `,
		Args:               cobra.MaximumNArgs(1),
		SilenceUsage:       true,
		PersistentPreRunE:  a.setup,
		PersistentPostRunE: a.teardown,
		RunE:               a.runRoot,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringP("cwd", "c", "", "Current working directory")
	pf.StringP("data-dir", "D", "", "Custom ilreverse data directory")
	pf.BoolP("debug", "d", false, "Debug")
	pf.Int("offset", 0, "Skip this many result rows")
	pf.Int("limit", -1, "Rows to print; 0 prints everything (default from config)")
	pf.BoolP("json", "j", false, "Output results as JSON")

	rootCmd.Flags().BoolP("no-tui", "n", false, "Show summary without TUI")

	rootCmd.AddCommand(
		newTypesCmd(a),
		newMethodsCmd(a),
		newFieldsCmd(a),
		newPropertiesCmd(a),
		newEventsCmd(a),
		newResourcesCmd(a),
		newTypeInfoCmd(a),
		newEntryPointCmd(a),
		newReadCmd(a),
		newStringsCmd(a),
		newCtorsCmd(a),
		newDepsCmd(a),
		newUsagesCmd(a),
		newRefsCmd(a),
		newReflectionCmd(a),
		newCFGCmd(a),
		newILCmd(a),
		newParseCmd(a),
		newPatchCmd(a),
		newValidateCmd(a),
		newRunCmd(a),
		newLogsCmd(a),
		newSchemaCmd(),
	)
	return rootCmd
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	if _, err := ResolveCwd(cmd); err != nil {
		return err
	}
	dataDir, _ := cmd.Flags().GetString("data-dir")
	cfg, err := config.Load(dataDir)
	if err != nil {
		return err
	}
	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		cfg.Debug = true
	}
	a.cfg = cfg

	a.logger = logging.NewLogger(cfg.LogFile())
	if cfg.Debug {
		a.logger.SetLevel(charmlog.DebugLevel)
	}
	reverselog.Setup(a.logger.Logger, cfg.Debug)
	a.log = slog.New(a.logger.Logger)

	a.styled = !cfg.NoColor && term.IsTerminal(os.Stdout.Fd())
	a.hl = colorize.New(!a.styled)

	if cfg.ProfilePath != "" {
		f, err := os.Create(cfg.ProfilePath)
		if err != nil {
			return fmt.Errorf("could not create CPU profile: %w", err)
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			f.Close()
			return fmt.Errorf("could not start CPU profile: %w", err)
		}
		a.profile = f
	}
	a.log.Debug("configuration loaded", "dataDir", cfg.DataDir, "pageSize", cfg.PageSize)
	return nil
}

func (a *app) teardown(*cobra.Command, []string) error {
	if a.profile != nil {
		pprof.StopCPUProfile()
		a.profile.Close()
		a.profile = nil
	}
	if a.logger != nil {
		return a.logger.Close()
	}
	return nil
}

// open loads the module image at path.
func (a *app) open(path string) (*session.Session, error) {
	absPath, err := pathpkg.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path: %w", err)
	}
	if _, err := os.Stat(absPath); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("file not found: %s", path)
		}
		return nil, fmt.Errorf("cannot access file: %w", err)
	}
	return session.Open(absPath, a.log, metadata.WithDefaultCorLib(a.cfg.CorLib))
}

func (a *app) runRoot(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return cmd.Help()
	}
	s, err := a.open(args[0])
	if err != nil {
		return err
	}

	noTUI, _ := cmd.Flags().GetBool("no-tui")
	asJSON, _ := cmd.Flags().GetBool("json")
	if asJSON {
		return writeJSON(cmd.OutOrStdout(), newSummary(s.Module))
	}
	if noTUI || !term.IsTerminal(os.Stdout.Fd()) {
		fmt.Fprintln(cmd.OutOrStdout(), a.markdown(summaryMarkdown(s.Module), 80))
		return nil
	}

	program := tea.NewProgram(
		newModel(s, a.hl),
		tea.WithAltScreen(),
		tea.WithContext(cmd.Context()),
	)
	if _, err := program.Run(); err != nil {
		slog.Error("TUI run error", "error", err)
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}

// Execute runs the command line.
func Execute() {
	rootCmd := NewRootCmd()

	// Plain cobra keeps piped and JSON output free of fang's styling.
	plain := !term.IsTerminal(os.Stdout.Fd())
	for _, arg := range os.Args[1:] {
		if arg == "--no-tui" || arg == "-n" || arg == "--json" || arg == "-j" {
			plain = true
			break
		}
	}

	if plain {
		if err := rootCmd.Execute(); err != nil {
			os.Exit(1)
		}
		return
	}
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		os.Exit(1)
	}
}

func ResolveCwd(cmd *cobra.Command) (string, error) {
	cwd, _ := cmd.Flags().GetString("cwd")
	if cwd != "" {
		err := os.Chdir(cwd)
		if err != nil {
			return "", fmt.Errorf("failed to change directory: %w", err)
		}
		return cwd, nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get current working directory: %w", err)
	}
	return cwd, nil
}

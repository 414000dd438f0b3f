package commands

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/yok-tottii/typo/internal/app"
	"github.com/yok-tottii/typo/internal/config"
	"github.com/yok-tottii/typo/internal/hotkey"
	"github.com/yok-tottii/typo/internal/i18n"
	"github.com/yok-tottii/typo/internal/printer"
	"github.com/yok-tottii/typo/internal/prompt"
	"github.com/yok-tottii/typo/internal/snippet"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"

	configDir string
	verbose   bool
)

// rootCmd runs the application when called without a subcommand
var rootCmd = &cobra.Command{
	Use:   "typo",
	Short: "Typo - transform selected text with a hotkey",
	Long: `Typo runs in the system tray and listens for global hotkeys.
Pressing one copies the current selection, sends it to the language
model with the prompt bound to the hotkey, and pastes the result back
in place of the selection.

Run without a subcommand to start the tray application. The
subcommands edit hotkeys, prompts and snippets from the terminal.`,
	Args: cobra.NoArgs,
	RunE: runApp,
}

// Execute adds all child commands to the root command and runs it
func Execute() error {
	// Errors are printed in colour by the printer package
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true
	return rootCmd.Execute()
}

// SetVersionInfo sets the version information for the CLI
func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", v, c, d)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", config.GetConfigDir(), "Directory holding config.json, prompts.json and snippets.json")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Mirror the log to stderr at DEBUG level")
}

func runApp(cmd *cobra.Command, args []string) error {
	a, err := app.New(app.Options{ConfigDir: configDir, Verbose: verbose})
	if err != nil {
		return printer.Error("failed to start Typo", err.Error(), []string{
			fmt.Sprintf("Check that %s is writable", configDir),
		})
	}

	printer.Info("\n==========================================================\n")
	printer.Success("Typo %s started\n", version)
	printer.Info("==========================================================\n")
	printer.Info("Settings API: %s\n", a.SettingsURL())
	bindings := a.Bindings()
	names := make([]string, 0, len(bindings))
	for name := range bindings {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		printer.Info("  %-16s %s\n", name, hotkey.FormatHotkey(bindings[name]))
	}
	printer.Info("Quit with Ctrl+C or from the tray menu\n")
	printer.Info("==========================================================\n\n")

	a.Run()
	return nil
}

// openConfig opens config.json under the configured directory
func openConfig() (*config.Store, error) {
	store, err := config.Open(filepath.Join(configDir, "config.json"))
	if err != nil {
		return nil, printer.Error("failed to read the configuration", err.Error(), []string{
			"Fix config.json or remove it to start from the defaults",
		})
	}
	return store, nil
}

func openPrompts() (*prompt.Store, error) {
	store, err := prompt.NewStore(filepath.Join(configDir, "prompts.json"))
	if err != nil {
		return nil, printer.Error("failed to read prompts.json", err.Error(), nil)
	}
	return store, nil
}

func openSnippets() (*snippet.Store, error) {
	store, err := snippet.NewStore(filepath.Join(configDir, "snippets.json"))
	if err != nil {
		return nil, printer.Error("failed to read snippets.json", err.Error(), nil)
	}
	return store, nil
}

func translator(cfg *config.Config) *i18n.Translator {
	t, err := i18n.NewDefaultTranslator(i18n.Language(cfg.Language))
	if err != nil {
		return i18n.NewTranslator(i18n.LanguageEnglish)
	}
	return t
}

// notifyRunning asks a running instance to re-read its files. A missing instance is not an error.
func notifyRunning(store *config.Store) {
	url := fmt.Sprintf("http://127.0.0.1:%d/api/reload", store.Config().SettingsPort)

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, nil)
	if err != nil {
		return
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return
	}
	resp.Body.Close()
	if resp.StatusCode == http.StatusOK {
		printer.Step("Running instance reloaded\n")
	}
}

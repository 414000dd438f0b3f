package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yok-tottii/typo/internal/action"
	"github.com/yok-tottii/typo/internal/config"
	"github.com/yok-tottii/typo/internal/printer"
	"github.com/yok-tottii/typo/internal/snippet"
)

var (
	snippetSlot    int
	snippetID      string
	snippetReplace bool
)

var snippetsCmd = &cobra.Command{
	Use:   "snippets",
	Short: "Manage text snippets",
	Long: `Manage the snippets pasted by the snippet hotkeys.

A snippet may be bound to one of the slots 1-9 (ctrl+shift+N by default).
Binding a slot takes it from the snippet holding it.

Examples:
  typo snippets add "Signature" "Best regards," --slot 1
  typo snippets search sig
  typo snippets export > snippets.yaml
  typo snippets import snippets.yaml --replace`,
}

var snippetsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List snippets ordered by label",
	Args:  cobra.NoArgs,
	RunE:  runSnippetsList,
}

var snippetsSearchCmd = &cobra.Command{
	Use:   "search QUERY",
	Short: "Search snippets by label and content",
	Args:  cobra.ExactArgs(1),
	RunE:  runSnippetsSearch,
}

var snippetsAddCmd = &cobra.Command{
	Use:   "add LABEL CONTENT",
	Short: "Create a snippet, or update one with --id",
	Args:  cobra.ExactArgs(2),
	RunE:  runSnippetsAdd,
}

var snippetsDeleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Delete a snippet",
	Args:  cobra.ExactArgs(1),
	RunE:  runSnippetsDelete,
}

var snippetsExportCmd = &cobra.Command{
	Use:   "export [FILE]",
	Short: "Write every snippet as YAML (stdout by default)",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runSnippetsExport,
}

var snippetsImportCmd = &cobra.Command{
	Use:   "import FILE",
	Short: "Read snippets from a YAML file",
	Args:  cobra.ExactArgs(1),
	RunE:  runSnippetsImport,
}

func init() {
	snippetsAddCmd.Flags().IntVar(&snippetSlot, "slot", 0, fmt.Sprintf("Hotkey slot (%d-%d, 0 for none)", action.MinSlot, action.MaxSlot))
	snippetsAddCmd.Flags().StringVar(&snippetID, "id", "", "Update the snippet with this id instead of creating one")
	snippetsImportCmd.Flags().BoolVar(&snippetReplace, "replace", false, "Replace every existing snippet")

	snippetsCmd.AddCommand(snippetsListCmd, snippetsSearchCmd, snippetsAddCmd, snippetsDeleteCmd, snippetsExportCmd, snippetsImportCmd)
	rootCmd.AddCommand(snippetsCmd)
}

func printSnippets(snippets []snippet.Snippet) {
	if len(snippets) == 0 {
		printer.Info("No snippets\n")
		return
	}
	printer.Info("%-36s %-4s %-24s %s\n", "ID", "SLOT", "LABEL", "CONTENT")
	for _, sn := range snippets {
		slot := "-"
		if n := sn.Slot(); n != 0 {
			slot = fmt.Sprint(n)
		}
		printer.Info("%-36s %-4s %-24s %s\n", sn.ID, slot, sn.Label, preview(sn.Content, 40))
	}
}

// preview returns the first line of s cut to n runes
func preview(s string, n int) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i] + "…"
	}
	r := []rune(s)
	if len(r) > n {
		return string(r[:n-1]) + "…"
	}
	return s
}

func runSnippetsList(cmd *cobra.Command, args []string) error {
	store, err := openSnippets()
	if err != nil {
		return err
	}
	printSnippets(store.Search(""))
	return nil
}

func runSnippetsSearch(cmd *cobra.Command, args []string) error {
	store, err := openSnippets()
	if err != nil {
		return err
	}
	printSnippets(store.Search(args[0]))
	return nil
}

func runSnippetsAdd(cmd *cobra.Command, args []string) error {
	store, err := openSnippets()
	if err != nil {
		return err
	}

	id, err := store.Save(args[0], args[1], snippetSlot, snippetID)
	if err != nil {
		return snippetError(err)
	}

	if snippetID != "" {
		printer.Success("Snippet %s updated\n", id)
	} else {
		printer.Success("Snippet %s created\n", id)
	}
	notifyRunningFromDir()
	return nil
}

func snippetError(err error) error {
	switch {
	case errors.Is(err, snippet.ErrInvalidSlot):
		return printer.Error("invalid slot", err.Error(), []string{
			fmt.Sprintf("Use a slot between %d and %d, or 0 for none", action.MinSlot, action.MaxSlot),
		})
	case errors.Is(err, snippet.ErrNotFound):
		return printer.Error("snippet not found", err.Error(), []string{"List ids with: typo snippets list"})
	default:
		return printer.Error("failed to save snippet", err.Error(), nil)
	}
}

func runSnippetsDelete(cmd *cobra.Command, args []string) error {
	store, err := openSnippets()
	if err != nil {
		return err
	}
	if err := store.Delete(args[0]); err != nil {
		return snippetError(err)
	}
	printer.Success("Snippet %s deleted\n", args[0])
	notifyRunningFromDir()
	return nil
}

func runSnippetsExport(cmd *cobra.Command, args []string) error {
	store, err := openSnippets()
	if err != nil {
		return err
	}

	var w io.Writer = cmd.OutOrStdout()
	if len(args) == 1 {
		f, err := os.Create(args[0])
		if err != nil {
			return printer.Error("failed to create export file", err.Error(), nil)
		}
		defer f.Close()
		w = f
	}

	if err := store.Export(w); err != nil {
		return printer.Error("failed to export snippets", err.Error(), nil)
	}
	if len(args) == 1 {
		printer.Success("Snippets exported to %s\n", args[0])
	}
	return nil
}

func runSnippetsImport(cmd *cobra.Command, args []string) error {
	store, err := openSnippets()
	if err != nil {
		return err
	}

	f, err := os.Open(args[0])
	if err != nil {
		return printer.Error("failed to open import file", err.Error(), nil)
	}
	defer f.Close()

	n, err := store.Import(f, snippetReplace)
	if err != nil {
		return printer.Error("failed to import snippets", err.Error(), []string{"Nothing was changed"})
	}
	printer.Success("%d snippets imported\n", n)
	notifyRunningFromDir()
	return nil
}

// notifyRunningFromDir looks the settings port up in config.json
func notifyRunningFromDir() {
	store, err := config.Open(filepath.Join(configDir, "config.json"))
	if err != nil {
		return
	}
	notifyRunning(store)
}

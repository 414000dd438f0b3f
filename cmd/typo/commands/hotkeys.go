package commands

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yok-tottii/typo/internal/action"
	"github.com/yok-tottii/typo/internal/config"
	"github.com/yok-tottii/typo/internal/hotkey"
	"github.com/yok-tottii/typo/internal/printer"
)

var hotkeysCmd = &cobra.Command{
	Use:   "hotkeys",
	Short: "List and change hotkey bindings",
	Long: `List and change the hotkey bound to each action.

Hotkeys are written as modifiers and a key joined with "+", for example
"ctrl+alt+c" or "ctrl+shift+1". At least one modifier is required.

Examples:
  typo hotkeys list
  typo hotkeys set correct ctrl+alt+k
  typo hotkeys unset snippet_9
  typo hotkeys reset`,
}

var hotkeysListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show every bound action",
	Args:  cobra.NoArgs,
	RunE:  runHotkeysList,
}

var hotkeysSetCmd = &cobra.Command{
	Use:   "set ACTION HOTKEY",
	Short: "Bind an action to a hotkey",
	Args:  cobra.ExactArgs(2),
	RunE:  runHotkeysSet,
}

var hotkeysUnsetCmd = &cobra.Command{
	Use:   "unset ACTION",
	Short: "Remove the hotkey of an action",
	Args:  cobra.ExactArgs(1),
	RunE:  runHotkeysUnset,
}

var hotkeysResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Restore the default bindings",
	Args:  cobra.NoArgs,
	RunE:  runHotkeysReset,
}

func init() {
	hotkeysCmd.AddCommand(hotkeysListCmd, hotkeysSetCmd, hotkeysUnsetCmd, hotkeysResetCmd)
	rootCmd.AddCommand(hotkeysCmd)
}

// openRegistry loads the bindings of config.json into a registry persisting back to it
func openRegistry() (*config.Store, *hotkey.Registry, error) {
	store, err := openConfig()
	if err != nil {
		return nil, nil, err
	}
	registry, problems := hotkey.NewRegistry(store.Config().Hotkeys, store)
	for _, p := range problems {
		printer.Warning("ignored: %v\n", p)
	}
	return store, registry, nil
}

func runHotkeysList(cmd *cobra.Command, args []string) error {
	store, registry, err := openRegistry()
	if err != nil {
		return err
	}
	prompts, err := openPrompts()
	if err != nil {
		return err
	}
	t := translator(store.Config())

	bindings := registry.Bindings()
	names := make([]string, 0, len(bindings))
	for name := range bindings {
		names = append(names, name)
	}
	sort.Strings(names)

	printer.Info("%-16s %-18s %s\n", "ACTION", "HOTKEY", "LABEL")
	for _, name := range names {
		label := t.ActionLabel(name)
		if c, ok := prompts.Custom(name); ok {
			label = c.Label
		} else if a, err := action.Parse(name); err == nil && a.Kind == action.SnippetSlot {
			label = t.TranslateWithFormat("action.snippet_slot", map[string]string{"slot": fmt.Sprint(a.Slot)})
		}
		printer.Info("%-16s %-18s %s\n", name, hotkey.FormatHotkey(bindings[name]), label)
	}
	return nil
}

func runHotkeysSet(cmd *cobra.Command, args []string) error {
	name := args[0]
	b, err := hotkey.ParseBinding(args[1])
	if err != nil {
		return printer.Error("invalid hotkey", err.Error(), []string{`Use a form such as "ctrl+alt+k"`})
	}

	store, registry, err := openRegistry()
	if err != nil {
		return err
	}

	if a, err := action.Parse(name); err == nil && a.Kind == action.Custom {
		prompts, err := openPrompts()
		if err != nil {
			return err
		}
		if _, ok := prompts.Custom(name); !ok {
			printer.Warning("no custom prompt %q exists yet; the hotkey will do nothing until it is added\n", name)
		}
	}

	if err := registry.Update(name, b); err != nil {
		return hotkeyError(name, err)
	}

	printer.Success("%s bound to %s\n", name, hotkey.FormatHotkey(b.Normalize()))
	notifyRunning(store)
	return nil
}

func hotkeyError(name string, err error) error {
	var verr *hotkey.ValidationError
	if !errors.As(err, &verr) {
		return printer.Error("failed to save hotkey", err.Error(), nil)
	}

	var suggestions []string
	switch verr.Reason {
	case hotkey.ReasonConflict:
		suggestions = []string{
			"Pick another key",
			fmt.Sprintf("Unbind %s first with: typo hotkeys unset %s", strings.Join(verr.Conflicts, ", "), verr.Conflicts[0]),
		}
	case hotkey.ReasonNoModifier:
		suggestions = []string{"Add a modifier such as ctrl"}
	case hotkey.ReasonReserved:
		suggestions = []string{"This combination is used by the system or common applications"}
	case hotkey.ReasonBadAction:
		suggestions = []string{"Built-in actions are " + strings.Join(action.BuiltinNames, ", ")}
	}
	return printer.Error(fmt.Sprintf("cannot bind %s", name), verr.Error(), suggestions)
}

func runHotkeysUnset(cmd *cobra.Command, args []string) error {
	store, registry, err := openRegistry()
	if err != nil {
		return err
	}
	if _, ok := registry.Get(args[0]); !ok {
		printer.Warning("%s has no hotkey\n", args[0])
		return nil
	}
	if err := registry.Remove(args[0]); err != nil {
		return printer.Error("failed to save hotkeys", err.Error(), nil)
	}
	printer.Success("%s unbound\n", args[0])
	notifyRunning(store)
	return nil
}

func runHotkeysReset(cmd *cobra.Command, args []string) error {
	store, registry, err := openRegistry()
	if err != nil {
		return err
	}
	if err := registry.ResetToDefaults(); err != nil {
		return printer.Error("failed to save hotkeys", err.Error(), nil)
	}
	printer.Success("Hotkeys restored to the defaults\n")
	notifyRunning(store)
	return nil
}

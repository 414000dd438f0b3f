package commands

import (
	"errors"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yok-tottii/typo/internal/action"
	"github.com/yok-tottii/typo/internal/hotkey"
	"github.com/yok-tottii/typo/internal/printer"
	"github.com/yok-tottii/typo/internal/prompt"
)

var (
	promptFile     string
	promptDisabled bool
)

var promptsCmd = &cobra.Command{
	Use:   "prompts",
	Short: "Manage prompt overrides and custom prompts",
	Long: `Manage the prompts sent with the selected text.

Built-in actions (correct, format, reformulate, professional, translate)
ship with a prompt per language. An override replaces it in every
language. Custom prompts add new actions that can be bound to a hotkey.
Every template must contain the {text} placeholder exactly once.

Examples:
  typo prompts list
  typo prompts override correct "Fix the typos only: {text}"
  typo prompts reset correct
  typo prompts add summary "Summary" "Summarize in one line: {text}"
  typo hotkeys set summary ctrl+alt+m`,
}

var promptsListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show built-in and custom prompts",
	Args:  cobra.NoArgs,
	RunE:  runPromptsList,
}

var promptsOverrideCmd = &cobra.Command{
	Use:   "override ACTION [TEMPLATE]",
	Short: "Replace the prompt of a built-in action",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runPromptsOverride,
}

var promptsResetCmd = &cobra.Command{
	Use:   "reset ACTION",
	Short: "Restore the default prompt of a built-in action",
	Args:  cobra.ExactArgs(1),
	RunE:  runPromptsReset,
}

var promptsAddCmd = &cobra.Command{
	Use:   "add ID LABEL [TEMPLATE]",
	Short: "Create or replace a custom prompt",
	Args:  cobra.RangeArgs(2, 3),
	RunE:  runPromptsAdd,
}

var promptsDeleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Delete a custom prompt and its hotkey",
	Args:  cobra.ExactArgs(1),
	RunE:  runPromptsDelete,
}

var promptsEnableCmd = &cobra.Command{
	Use:   "enable ID",
	Short: "Enable a custom prompt",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setPromptEnabled(args[0], true)
	},
}

var promptsDisableCmd = &cobra.Command{
	Use:   "disable ID",
	Short: "Disable a custom prompt without deleting it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setPromptEnabled(args[0], false)
	},
}

func init() {
	promptsOverrideCmd.Flags().StringVarP(&promptFile, "file", "f", "", "Read the template from a file")
	promptsAddCmd.Flags().StringVarP(&promptFile, "file", "f", "", "Read the template from a file")
	promptsAddCmd.Flags().BoolVar(&promptDisabled, "disabled", false, "Create the prompt disabled")

	promptsCmd.AddCommand(promptsListCmd, promptsOverrideCmd, promptsResetCmd, promptsAddCmd,
		promptsDeleteCmd, promptsEnableCmd, promptsDisableCmd)
	rootCmd.AddCommand(promptsCmd)
}

// templateArg returns the template given inline or through --file
func templateArg(args []string, index int) (string, error) {
	if promptFile != "" {
		data, err := os.ReadFile(promptFile)
		if err != nil {
			return "", printer.Error("failed to read template file", err.Error(), nil)
		}
		return strings.TrimRight(string(data), "\n"), nil
	}
	if len(args) <= index {
		return "", printer.Error("missing template", "Pass the template as an argument or with --file", nil)
	}
	return args[index], nil
}

func promptError(err error) error {
	switch {
	case errors.Is(err, prompt.ErrMissingPlaceholder):
		return printer.Error("invalid template", err.Error(), []string{`Add {text} where the selection goes, for example "Fix: {text}"`})
	case errors.Is(err, prompt.ErrNotBuiltin):
		return printer.Error("not a built-in action", err.Error(), []string{
			"Built-in actions are " + strings.Join(action.BuiltinNames, ", "),
			"Use 'typo prompts add' for a new action",
		})
	case errors.Is(err, prompt.ErrNotFound):
		return printer.Error("custom prompt not found", err.Error(), []string{"List prompts with: typo prompts list"})
	default:
		return printer.Error("failed to save prompts", err.Error(), nil)
	}
}

func runPromptsList(cmd *cobra.Command, args []string) error {
	store, registry, err := openRegistry()
	if err != nil {
		return err
	}
	prompts, err := openPrompts()
	if err != nil {
		return err
	}
	cfg := store.Config()
	t := translator(cfg)
	overrides := prompts.Overrides()

	printer.Step("Built-in prompts (%s)\n", cfg.Language)
	for _, name := range action.BuiltinNames {
		tpl, _ := t.Prompt(name, cfg.Language)
		marker := " "
		if o, ok := overrides[name]; ok {
			tpl, marker = o, "*"
		}
		printer.Info("%s %-14s %s\n", marker, name, preview(tpl, 60))
	}
	if len(overrides) > 0 {
		printer.Info("  (* overridden)\n")
	}

	customs := prompts.Customs()
	printer.Step("Custom prompts\n")
	if len(customs) == 0 {
		printer.Info("  none\n")
		return nil
	}
	for _, c := range customs {
		state := "enabled"
		if !c.Enabled {
			state = "disabled"
		}
		printer.Info("  %-14s %-20s %-8s %-14s %s\n", c.ID, c.Label, state, boundTo(registry, c.ID), preview(c.Prompt, 40))
	}
	return nil
}

func runPromptsOverride(cmd *cobra.Command, args []string) error {
	tpl, err := templateArg(args, 1)
	if err != nil {
		return err
	}
	prompts, err := openPrompts()
	if err != nil {
		return err
	}
	if err := prompts.SetOverride(args[0], &tpl); err != nil {
		return promptError(err)
	}
	printer.Success("Prompt of %s overridden\n", args[0])
	notifyRunningFromDir()
	return nil
}

func runPromptsReset(cmd *cobra.Command, args []string) error {
	prompts, err := openPrompts()
	if err != nil {
		return err
	}
	if err := prompts.SetOverride(args[0], nil); err != nil {
		return promptError(err)
	}
	printer.Success("Prompt of %s restored\n", args[0])
	notifyRunningFromDir()
	return nil
}

func runPromptsAdd(cmd *cobra.Command, args []string) error {
	id, label := args[0], args[1]
	if err := action.ValidateCustomID(id); err != nil {
		return printer.Error("invalid prompt id", err.Error(), []string{"Use lowercase letters, digits and underscores"})
	}
	tpl, err := templateArg(args, 2)
	if err != nil {
		return err
	}

	prompts, err := openPrompts()
	if err != nil {
		return err
	}
	if err := prompts.SaveCustom(id, label, tpl, !promptDisabled); err != nil {
		return promptError(err)
	}
	printer.Success("Custom prompt %s saved\n", id)
	printer.Info("Bind it with: typo hotkeys set %s ctrl+alt+<key>\n", id)
	notifyRunningFromDir()
	return nil
}

func runPromptsDelete(cmd *cobra.Command, args []string) error {
	prompts, err := openPrompts()
	if err != nil {
		return err
	}
	if err := prompts.DeleteCustom(args[0]); err != nil {
		return promptError(err)
	}

	store, registry, err := openRegistry()
	if err != nil {
		return err
	}
	if _, bound := registry.Get(args[0]); bound {
		if err := registry.Remove(args[0]); err != nil {
			printer.Warning("prompt deleted but its hotkey could not be removed: %v\n", err)
		}
	}

	printer.Success("Custom prompt %s deleted\n", args[0])
	notifyRunning(store)
	return nil
}

func setPromptEnabled(id string, enabled bool) error {
	prompts, err := openPrompts()
	if err != nil {
		return err
	}
	if err := prompts.SetEnabled(id, enabled); err != nil {
		return promptError(err)
	}
	if enabled {
		printer.Success("Custom prompt %s enabled\n", id)
	} else {
		printer.Success("Custom prompt %s disabled\n", id)
	}
	notifyRunningFromDir()
	return nil
}

// boundTo returns the display form of the hotkey of name, empty when unbound
func boundTo(registry *hotkey.Registry, name string) string {
	b, ok := registry.Get(name)
	if !ok {
		return ""
	}
	return hotkey.FormatHotkey(b)
}

package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"strconv"
	"sync"
	"sync/atomic"
	"unicode/utf8"

	"github.com/yok-tottii/typo/internal/action"
	"github.com/yok-tottii/typo/internal/i18n"
	"github.com/yok-tottii/typo/internal/logger"
	"github.com/yok-tottii/typo/internal/prompt"
	"github.com/yok-tottii/typo/internal/snippet"
	"github.com/yok-tottii/typo/internal/transform"
)

// AppTitle is the title of every notification
const AppTitle = "Typo"

// Status is the externally visible state of the orchestrator
type Status string

const (
	StatusIdle     Status = "idle"
	StatusBusy     Status = "busy"
	StatusError    Status = "error"
	StatusDisabled Status = "disabled"
)

// Busy cue values
const (
	CueNone   = "none"
	CueBeep   = "beep"
	CueNotify = "notify"
)

// Selection is the capture/replace protocol
type Selection interface {
	CaptureSelection() (string, bool)
	ReplaceSelection(text string)
	SelectLastPasted(n int)
}

// SnippetSource looks snippets up by slot
type SnippetSource interface {
	BySlot(n int) (snippet.Snippet, bool)
}

// Notifier shows non-blocking user feedback
type Notifier interface {
	Notify(title, message string)
	Beep()
}

// UsageRecorder records successful transformations
type UsageRecorder interface {
	Track(action, model string, inputTokens, outputTokens int64) error
}

// Options holds the collaborators and settings of an Orchestrator
type Options struct {
	Selection   Selection
	Transformer transform.Transformer // nil when no API key is configured
	Resolve     prompt.Resolver
	Snippets    SnippetSource
	Notifier    Notifier
	Usage       UsageRecorder // optional
	Translator  *i18n.Translator
	Logger      logger.Interface

	// OpenPicker opens the snippet picker (snippet_search)
	OpenPicker func()
	// HelpText builds the help notification body
	HelpText func() string

	Placeholder string
	Language    string
	Model       string
	BusyCue     string
}

// Orchestrator runs one action per hotkey press. At most one transformation
// is in flight; presses arriving meanwhile are dropped.
type Orchestrator struct {
	mu        sync.RWMutex
	opts      Options
	listeners []func(Status)

	pending atomic.Bool
	active  atomic.Bool
}

// New creates an active orchestrator
func New(opts Options) *Orchestrator {
	if opts.Logger == nil {
		opts.Logger = logger.Nop{}
	}
	if opts.Placeholder == "" {
		opts.Placeholder = "..."
	}
	if opts.BusyCue == "" {
		opts.BusyCue = CueNone
	}
	o := &Orchestrator{opts: opts}
	o.active.Store(true)
	return o
}

// Configure changes options under the lock. Actions already running keep their snapshot.
func (o *Orchestrator) Configure(fn func(*Options)) {
	o.mu.Lock()
	defer o.mu.Unlock()
	fn(&o.opts)
}

func (o *Orchestrator) snapshot() Options {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.opts
}

// OnStatus registers a status observer
func (o *Orchestrator) OnStatus(fn func(Status)) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.listeners = append(o.listeners, fn)
}

func (o *Orchestrator) emit(s Status) {
	o.mu.RLock()
	listeners := append([]func(Status){}, o.listeners...)
	o.mu.RUnlock()
	for _, fn := range listeners {
		fn(s)
	}
}

// SetActive enables or disables hotkey handling
func (o *Orchestrator) SetActive(active bool) {
	o.active.Store(active)
	if active {
		o.emit(o.Status())
	} else {
		o.emit(StatusDisabled)
	}
}

// IsActive reports whether hotkeys are handled
func (o *Orchestrator) IsActive() bool {
	return o.active.Load()
}

// Busy reports whether a transformation is in flight
func (o *Orchestrator) Busy() bool {
	return o.pending.Load()
}

// Status returns the current status
func (o *Orchestrator) Status() Status {
	switch {
	case !o.active.Load():
		return StatusDisabled
	case o.pending.Load():
		return StatusBusy
	default:
		return StatusIdle
	}
}

// OnAction handles one dispatched action. Safe to call concurrently.
func (o *Orchestrator) OnAction(a action.Action) {
	opts := o.snapshot()
	log := opts.Logger

	defer func() {
		if r := recover(); r != nil {
			log.Error("Panic while handling %s: %v\n%s", a.Name(), r, debug.Stack())
		}
	}()

	if a.Kind == action.Help {
		o.showHelp(opts)
		return
	}

	if !o.active.Load() {
		log.Debug("Ignoring %s: disabled", a.Name())
		return
	}

	switch a.Kind {
	case action.SnippetSearch:
		if opts.OpenPicker != nil {
			opts.OpenPicker()
		}
	case action.SnippetSlot:
		o.pasteSnippet(opts, a.Slot)
	case action.Builtin, action.Custom:
		o.transform(opts, a)
	default:
		log.Warn("Unhandled action kind %s for %s", a.Kind, a.Name())
	}
}

func (o *Orchestrator) showHelp(opts Options) {
	body := ""
	if opts.HelpText != nil {
		body = opts.HelpText()
	}
	opts.Notifier.Notify(o.text(opts, "help.title", nil), body)
}

func (o *Orchestrator) pasteSnippet(opts Options, slot int) {
	sn, ok := opts.Snippets.BySlot(slot)
	if !ok || sn.Content == "" {
		opts.Logger.Info("Snippet slot %d is empty", slot)
		opts.Notifier.Notify(AppTitle, o.text(opts, "notification.snippet_empty", map[string]string{
			"slot": strconv.Itoa(slot),
		}))
		return
	}
	opts.Logger.Debug("Pasting snippet %s into slot %d", sn.ID, slot)
	opts.Selection.ReplaceSelection(sn.Content)
}

func (o *Orchestrator) transform(opts Options, a action.Action) {
	log := opts.Logger

	tpl, ok := opts.Resolve(a.Name(), opts.Language)
	if !ok {
		log.Warn("Unknown action: %s", a.Name())
		opts.Notifier.Notify(AppTitle, o.text(opts, "notification.unknown_action", map[string]string{
			"action": a.Name(),
		}))
		return
	}

	if opts.Transformer == nil {
		log.Warn("No API key configured, ignoring %s", a.Name())
		opts.Notifier.Notify(AppTitle, o.text(opts, "notification.no_api_key", nil))
		return
	}

	if !o.pending.CompareAndSwap(false, true) {
		log.Info("Dropping %s: another operation is in flight", a.Name())
		o.busyCue(opts)
		return
	}
	o.emit(StatusBusy)

	failed := false
	defer func() {
		// The guard is released even on panic
		if r := recover(); r != nil {
			log.Error("Panic during %s: %v\n%s", a.Name(), r, debug.Stack())
			failed = true
		}
		o.pending.Store(false)
		if failed {
			o.emit(StatusError)
		}
		o.emit(o.Status())
	}()

	original, ok := opts.Selection.CaptureSelection()
	if !ok {
		log.Debug("Nothing selected for %s", a.Name())
		return
	}

	opts.Selection.ReplaceSelection(opts.Placeholder)
	placeholderLen := utf8.RuneCountInString(opts.Placeholder)

	res, err := opts.Transformer.Transform(context.Background(), transform.Request{
		Text:     original,
		Action:   a.Name(),
		Template: tpl,
		Language: opts.Language,
	})
	if err != nil {
		failed = true
		log.Error("Transformation %s failed: %v", a.Name(), err)
		opts.Selection.SelectLastPasted(placeholderLen)
		opts.Selection.ReplaceSelection(original)
		o.notifyFailure(opts, a, err)
		return
	}

	opts.Selection.SelectLastPasted(placeholderLen)
	opts.Selection.ReplaceSelection(res.Text)
	log.Info("Applied %s (%d -> %d chars)", a.Name(), utf8.RuneCountInString(original), utf8.RuneCountInString(res.Text))

	if opts.Usage != nil {
		if err := opts.Usage.Track(a.Name(), opts.Model, res.InputTokens, res.OutputTokens); err != nil {
			log.Warn("Failed to record usage: %v", err)
		}
	}
}

func (o *Orchestrator) notifyFailure(opts Options, a action.Action, err error) {
	if transform.IsUnknownAction(err) {
		opts.Notifier.Notify(AppTitle, o.text(opts, "notification.unknown_action", map[string]string{
			"action": a.Name(),
		}))
		return
	}
	opts.Notifier.Notify(AppTitle, o.text(opts, "notification.transform_failed", map[string]string{
		"error": describe(err),
	}))
}

func (o *Orchestrator) busyCue(opts Options) {
	switch opts.BusyCue {
	case CueBeep:
		opts.Notifier.Beep()
	case CueNotify:
		opts.Notifier.Notify(AppTitle, o.text(opts, "notification.busy", nil))
	}
}

func (o *Orchestrator) text(opts Options, key string, params map[string]string) string {
	if opts.Translator == nil {
		return key
	}
	return opts.Translator.TranslateWithFormat(key, params)
}

// describe returns a short, user-facing reason for a transformation error
func describe(err error) string {
	var te *transform.Error
	if errors.As(err, &te) {
		switch te.Kind {
		case transform.Connection:
			return "connection failed"
		case transform.Service:
			if te.StatusCode != 0 {
				return fmt.Sprintf("service error (HTTP %d)", te.StatusCode)
			}
			return "service error"
		case transform.Config:
			return te.Message
		}
	}
	return err.Error()
}

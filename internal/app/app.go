package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"

	"github.com/yok-tottii/typo/internal/action"
	"github.com/yok-tottii/typo/internal/api"
	"github.com/yok-tottii/typo/internal/clipboard"
	"github.com/yok-tottii/typo/internal/config"
	"github.com/yok-tottii/typo/internal/dispatch"
	"github.com/yok-tottii/typo/internal/hotkey"
	"github.com/yok-tottii/typo/internal/i18n"
	"github.com/yok-tottii/typo/internal/keyboard"
	"github.com/yok-tottii/typo/internal/logger"
	"github.com/yok-tottii/typo/internal/notification"
	"github.com/yok-tottii/typo/internal/orchestrator"
	"github.com/yok-tottii/typo/internal/permissions"
	"github.com/yok-tottii/typo/internal/prompt"
	"github.com/yok-tottii/typo/internal/server"
	"github.com/yok-tottii/typo/internal/snippet"
	"github.com/yok-tottii/typo/internal/transform"
	"github.com/yok-tottii/typo/internal/tray"
	"github.com/yok-tottii/typo/internal/usage"
	"github.com/yok-tottii/typo/internal/wizard"
)

// Notifier はアプリが使うデスクトップ通知
type Notifier interface {
	Notify(title, message string)
	Warn(message string)
	Error(message string)
	Beep()
	Wait()
}

// Options は App の生成オプション
type Options struct {
	// config.json, prompts.json, snippets.json, usage.db, logs/ を置くディレクトリ
	ConfigDir string
	// DEBUG レベルのログを stderr にも出す
	Verbose bool

	// 通知の差し替え (nil なら beeep)
	Notifier Notifier
	// クリップボードと合成入力の差し替え (nil なら robotgo)
	Selection orchestrator.Selection
	// ブラウザ起動の差し替え
	OpenURL func(url string) error
}

// App はアプリ全体の状態を保持する
type App struct {
	opts Options

	logger       *logger.Logger
	config       *config.Store
	translator   *i18n.Translator
	hotkeys      *hotkey.Registry
	prompts      *prompt.Store
	snippets     *snippet.Store
	usage        *usage.Tracker
	clipboard    *clipboard.Manager
	notifier     Notifier
	permissions  *permissions.PermissionChecker
	wizard       *wizard.SetupWizard
	dispatcher   *dispatch.Dispatcher
	orchestrator *orchestrator.Orchestrator
	server       *server.Server
	trayMgr      *tray.Manager

	listenMu     sync.Mutex
	listenCancel context.CancelFunc
	listenDone   chan struct{}
	listenerKind string

	stopOnce sync.Once
}

// New は opts.ConfigDir 配下のストアを開き、各コンポーネントを接続する
// Run を呼ぶまで何も起動しない
func New(opts Options) (*App, error) {
	if opts.ConfigDir == "" {
		opts.ConfigDir = config.GetConfigDir()
	}
	if opts.OpenURL == nil {
		opts.OpenURL = openBrowser
	}
	if err := os.MkdirAll(opts.ConfigDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	a := &App{opts: opts}

	// 注意: 壊れた設定ファイルでもデフォルトで起動を続ける
	cfgStore, cfgErr := config.Open(filepath.Join(opts.ConfigDir, "config.json"))
	a.config = cfgStore
	cfg := cfgStore.Config()

	log, err := openLogger(opts, cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	a.logger = log
	if cfgErr != nil {
		log.Warn("設定ファイルの読み込みに失敗しました。デフォルト設定を使用します: %v", cfgErr)
	}

	a.translator, err = i18n.NewDefaultTranslator(i18n.Language(cfg.Language))
	if err != nil {
		return nil, fmt.Errorf("failed to load translations: %w", err)
	}

	var problems []error
	a.hotkeys, problems = hotkey.NewRegistry(cfg.Hotkeys, cfgStore)
	for _, p := range problems {
		log.Warn("ホットキー設定を無視しました: %v", p)
	}

	a.prompts, err = prompt.NewStore(filepath.Join(opts.ConfigDir, "prompts.json"))
	if err != nil {
		log.Warn("プロンプトファイルの読み込みに失敗しました: %v", err)
	}
	a.snippets, err = snippet.NewStore(filepath.Join(opts.ConfigDir, "snippets.json"))
	if err != nil {
		log.Warn("スニペットファイルの読み込みに失敗しました: %v", err)
	}

	a.usage, err = usage.Open(opts.ConfigDir)
	if err != nil {
		log.Warn("使用量トラッカーを無効化します: %v", err)
		a.usage = nil
	}

	a.notifier = opts.Notifier
	if a.notifier == nil {
		a.notifier = notification.NewNotificationManager(config.AppName, log)
	}

	a.permissions = permissions.NewPermissionChecker()
	a.wizard, err = wizard.NewSetupWizard(opts.ConfigDir, wizard.Checks{
		HasAPIKey:     func() bool { return a.config.Config().ResolvedAPIKey() != "" },
		Accessibility: a.permissions.IsAccessibilityAuthorized,
	})
	if err != nil {
		return nil, err
	}

	a.clipboard = clipboard.NewManager(cfg.Timing.Clipboard(), clipboard.SystemBoard{}, clipboard.RobotKeys{})
	var selection orchestrator.Selection = a.clipboard
	if opts.Selection != nil {
		selection = opts.Selection
	}

	orchOpts := orchestrator.Options{
		Selection:   selection,
		Transformer: newTransformer(cfg),
		Resolve:     prompt.NewResolver(a.prompts, a.translator.Prompt),
		Snippets:    a.snippets,
		Notifier:    a.notifier,
		Translator:  a.translator,
		Logger:      log,
		OpenPicker:  a.openSnippetPicker,
		HelpText:    a.helpText,
		Placeholder: cfg.Placeholder,
		Language:    cfg.Language,
		Model:       cfg.Model,
		BusyCue:     cfg.BusyCue,
	}
	if a.usage != nil {
		orchOpts.Usage = a.usage
	}
	a.orchestrator = orchestrator.New(orchOpts)
	a.orchestrator.OnStatus(a.onStatus)

	a.dispatcher = dispatch.New(a.orchestrator.OnAction, log)
	for _, p := range a.dispatcher.Rebuild(a.hotkeys.Bindings()) {
		log.Warn("ホットキーを登録できません: %v", p)
	}
	a.hotkeys.OnChange(a.onHotkeysChanged)

	serverConfig := server.DefaultConfig()
	serverConfig.Port = cfg.SettingsPort
	a.server = server.New(serverConfig, log)

	deps := api.Deps{
		Config:     cfgStore,
		Hotkeys:    a.hotkeys,
		Prompts:    a.prompts,
		Snippets:   a.snippets,
		Wizard:     a.wizard,
		Translator: a.translator,
		Logger:     log,
		Reload:     a.Reload,
	}
	if a.usage != nil {
		deps.Usage = a.usage
	}
	api.New(deps).RegisterRoutes(a.server.GetMux())

	a.trayMgr = tray.NewManager(tray.Config{
		Title:      config.AppName,
		Label:      a.translator.TranslateWithFormat,
		Usage:      a.usageLine,
		OnReady:    a.onReady,
		OnToggle:   a.orchestrator.SetActive,
		OnSettings: a.openSettings,
		OnHelp:     a.showHelp,
		OnReload:   a.reloadFromTray,
		OnQuit: func() {
			a.logger.Info("メニューから終了が選択されました")
		},
	})

	a.config.OnChange(a.applyConfig)

	return a, nil
}

func openLogger(opts Options, levelName string) (*logger.Logger, error) {
	logConfig := logger.DefaultConfig()
	logConfig.LogDir = filepath.Join(opts.ConfigDir, "logs")
	if level, err := logger.ParseLevel(levelName); err == nil {
		logConfig.Level = level
	}
	if opts.Verbose {
		logConfig.Level = logger.DEBUG
		logConfig.Mirror = os.Stderr
	}
	return logger.New(logConfig)
}

// newTransformer は API キーがなければ nil を返す
func newTransformer(cfg *config.Config) transform.Transformer {
	key := cfg.ResolvedAPIKey()
	if key == "" {
		return nil
	}
	clientConfig := transform.DefaultClientConfig()
	clientConfig.APIKey = key
	clientConfig.Model = cfg.Model
	clientConfig.MaxTokens = int64(cfg.MaxTokens)

	client, err := transform.NewClient(clientConfig)
	if err != nil {
		return nil
	}
	return client
}

// Run はトレイを表示し、終了までブロックする
func (a *App) Run() {
	a.logger.Info("Typo を起動します (設定ディレクトリ: %s)", a.opts.ConfigDir)
	a.trayMgr.Run()
	a.Shutdown()
}

// onReady は systray が初期化完了後に呼ばれる
func (a *App) onReady() {
	a.logger.Info("システムトレイの準備が完了しました")

	if !a.permissions.AreAllPermissionsGranted() {
		a.logger.Warn("アクセシビリティ権限がありません")
		a.notifier.Warn(a.translator.Translate("notification.accessibility_denied"))
		if err := a.permissions.RequestAccessibilityPermission(); err != nil {
			a.logger.Warn("システム設定を開けませんでした: %v", err)
		}
	}

	if err := a.server.Start(); err != nil {
		a.logger.Error("HTTPサーバーの起動に失敗: %v", err)
	}

	a.startListener()

	if a.wizard.ShouldShowWizard() {
		a.logger.Info("初回起動またはAPIキー未設定 - 設定画面を開きます")
		if a.config.Config().ResolvedAPIKey() == "" {
			a.notifier.Notify(config.AppName, a.translator.Translate("notification.no_api_key"))
		}
		a.openSettings()
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		a.logger.Info("終了シグナルを受信しました")
		a.trayMgr.Quit()
	}()

	a.logger.Info("アプリケーション初期化完了")
}

// Shutdown は全コンポーネントを停止する (複数回呼んでもよい)
func (a *App) Shutdown() {
	a.stopOnce.Do(func() {
		a.logger.Info("アプリケーションを終了します")
		a.stopListener()

		if a.server.IsRunning() {
			if err := a.server.Stop(); err != nil {
				a.logger.Warn("HTTPサーバーの停止に失敗: %v", err)
			}
		}

		// 通知の送信完了を待つ
		a.notifier.Wait()

		if a.usage != nil {
			if err := a.usage.Close(); err != nil {
				a.logger.Warn("使用量データベースのクローズに失敗: %v", err)
			}
		}
		a.logger.Close()
	})
}

// startListener は listener 設定に応じたキーボード入力を (再) 起動する
func (a *App) startListener() {
	a.listenMu.Lock()
	defer a.listenMu.Unlock()

	a.stopListenerLocked()

	kind := a.config.Config().Listener
	var src keyboard.Source
	switch kind {
	case config.ListenerRegister:
		m := hotkey.New(a.hotkeys.Bindings())
		m.OnError(a.hotkeyFailed)
		src = m
	default:
		src = keyboard.NewHookSource()
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := a.dispatcher.Run(ctx, src); err != nil {
			a.logger.Error("キーボードリスナーが停止しました: %v", err)
		}
	}()

	a.listenCancel, a.listenDone, a.listenerKind = cancel, done, kind
	a.logger.Info("キーボードリスナーを開始しました (%s)", kind)
}

func (a *App) stopListener() {
	a.listenMu.Lock()
	defer a.listenMu.Unlock()
	a.stopListenerLocked()
}

func (a *App) stopListenerLocked() {
	if a.listenCancel == nil {
		return
	}
	a.listenCancel()
	<-a.listenDone
	a.listenCancel, a.listenDone, a.listenerKind = nil, nil, ""
}

func (a *App) listening() (string, bool) {
	a.listenMu.Lock()
	defer a.listenMu.Unlock()
	return a.listenerKind, a.listenCancel != nil
}

// onHotkeysChanged はマッチテーブルを差し替え、OS 登録のホットキーは登録し直す
func (a *App) onHotkeysChanged(bindings map[string]hotkey.Binding) {
	for _, p := range a.dispatcher.Rebuild(bindings) {
		a.logger.Warn("ホットキーを登録できません: %v", p)
	}
	a.logger.Info("ホットキーを更新しました (%d 件)", len(bindings))

	if kind, running := a.listening(); running && kind == config.ListenerRegister {
		a.startListener()
	}
}

func (a *App) hotkeyFailed(name string, err error) {
	b, _ := a.hotkeys.Get(name)
	a.logger.Error("ホットキーの登録に失敗 (%s): %v", name, err)
	a.notifier.Error(a.translator.TranslateWithFormat("notification.hotkey_failed", map[string]string{
		"hotkey": hotkey.FormatHotkey(b),
		"error":  err.Error(),
	}))
}

// applyConfig は確定した設定を動作中のコンポーネントへ反映する
func (a *App) applyConfig(cfg *config.Config) {
	a.translator.SetLanguage(i18n.Language(cfg.Language))
	a.clipboard.SetConfig(cfg.Timing.Clipboard())
	if !a.opts.Verbose {
		if level, err := logger.ParseLevel(cfg.LogLevel); err == nil {
			a.logger.SetLevel(level)
		}
	}

	tr := newTransformer(cfg)
	a.orchestrator.Configure(func(o *orchestrator.Options) {
		o.Transformer = tr
		o.Placeholder = cfg.Placeholder
		o.Language = cfg.Language
		o.Model = cfg.Model
		o.BusyCue = cfg.BusyCue
	})

	if kind, running := a.listening(); running && kind != cfg.Listener {
		a.logger.Info("リスナーを切り替えます: %s -> %s", kind, cfg.Listener)
		a.startListener()
	}

	a.server.Hub().Broadcast(server.Message{
		Type: server.MessageTypeConfig,
		Data: map[string]interface{}{"language": cfg.Language, "has_api_key": tr != nil},
	})
	a.trayMgr.RefreshUsage()
	a.logger.Debug("設定を適用しました")
}

// Reload は全ファイルを読み直す。失敗したストアは現在の内容を保持する
func (a *App) Reload() error {
	var errs []error

	if err := a.config.Reload(); err != nil {
		errs = append(errs, fmt.Errorf("config: %w", err))
	} else {
		for _, p := range a.hotkeys.Load(a.config.Config().Hotkeys) {
			a.logger.Warn("ホットキー設定を無視しました: %v", p)
		}
	}
	if err := a.prompts.Reload(); err != nil {
		errs = append(errs, fmt.Errorf("prompts: %w", err))
	}
	if err := a.snippets.Reload(); err != nil {
		errs = append(errs, fmt.Errorf("snippets: %w", err))
	}

	if err := errors.Join(errs...); err != nil {
		a.logger.Warn("再読み込みに失敗: %v", err)
		return err
	}
	a.logger.Info("設定を再読み込みしました")
	return nil
}

func (a *App) reloadFromTray() {
	if err := a.Reload(); err != nil {
		a.notifier.Error(a.translator.TranslateWithFormat("notification.reload_failed", map[string]string{
			"error": err.Error(),
		}))
		return
	}
	a.notifier.Notify(config.AppName, a.translator.Translate("notification.reloaded"))
}

// onStatus は処理状態をトレイとステータス配信へ反映する
func (a *App) onStatus(s orchestrator.Status) {
	switch s {
	case orchestrator.StatusBusy:
		a.trayMgr.SetState(tray.StateBusy)
	case orchestrator.StatusError:
		a.trayMgr.SetState(tray.StateError)
	case orchestrator.StatusDisabled:
		a.trayMgr.SetEnabled(false)
	default:
		a.trayMgr.SetEnabled(true)
		a.trayMgr.SetState(tray.StateIdle)
		a.trayMgr.RefreshUsage()
		a.broadcastUsage()
	}

	a.server.Hub().Broadcast(server.Message{
		Type: server.MessageTypeStatus,
		Data: map[string]string{"status": string(s)},
	})
}

func (a *App) broadcastUsage() {
	if a.usage == nil {
		return
	}
	summary, err := a.usage.Current()
	if err != nil {
		a.logger.Warn("使用量の取得に失敗: %v", err)
		return
	}
	a.server.Hub().Broadcast(server.Message{Type: server.MessageTypeUsage, Data: summary})
}

// usageLine はトレイの使用量表示 (記録なしなら空)
func (a *App) usageLine() string {
	if a.usage == nil {
		return ""
	}
	summary, err := a.usage.Current()
	if err != nil {
		return ""
	}
	return usage.FormatDisplay(summary)
}

func (a *App) helpText() string {
	return orchestrator.BuildHelp(a.hotkeys.Bindings(), a.translator, func(id string) (string, bool) {
		c, ok := a.prompts.Custom(id)
		return c.Label, ok
	})
}

func (a *App) showHelp() {
	a.orchestrator.OnAction(action.MustParse(action.HelpName))
}

func (a *App) openSettings() {
	a.openPage("")
}

func (a *App) openSnippetPicker() {
	a.openPage("?view=snippets")
}

func (a *App) openPage(query string) {
	url := a.server.URL() + "/" + query
	a.logger.Info("ブラウザを開きます: %s", url)
	go func() {
		if err := a.opts.OpenURL(url); err != nil {
			a.logger.Error("ブラウザの起動に失敗: %v", err)
			fmt.Fprintf(os.Stderr, "[情報] 設定画面URL: %s\n", url)
		}
	}()
}

// SettingsURL は設定 API のアドレスを返す
func (a *App) SettingsURL() string {
	return a.server.URL()
}

// Bindings は現在のホットキー設定を返す
func (a *App) Bindings() map[string]hotkey.Binding {
	return a.hotkeys.Bindings()
}

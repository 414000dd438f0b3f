package main

import (
	"os"
	"runtime"

	"github.com/yok-tottii/typo/cmd/typo/commands"
)

// バージョン情報 (ビルド時に設定)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func init() {
	// macOS ではシステムトレイとホットキーをメインスレッドで動かす必要がある
	runtime.LockOSThread()
}

func main() {
	commands.SetVersionInfo(version, commit, date)

	// エラーは printer パッケージが表示済み
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}

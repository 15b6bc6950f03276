package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/clipfix/clipfix/hostfunc"
	"github.com/clipfix/clipfix/language/python"
	"github.com/clipfix/clipfix/launcher"
	"github.com/spf13/cobra"
)

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Debug shell into the embedded interpreter",
	Long: `Run Python snippets in the exact environment the launcher boots clipfix
into: same interpreter asset, same mounts, same host functions.

Each line runs in a fresh interpreter boot, so no state carries over
between lines. Type 'exit' or press Ctrl+D to leave.`,
	RunE: runRepl,
}

func init() {
	replCmd.Flags().String("history", "", "History file path (default: ~/.clipfix_history)")
	rootCmd.AddCommand(replCmd)
}

func runRepl(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	historyFile, _ := cmd.Flags().GetString("history")
	if historyFile == "" {
		home, _ := os.UserHomeDir()
		historyFile = filepath.Join(home, ".clipfix_history")
	}

	registry := hostfunc.NewRegistry()
	clipboard := hostfunc.NewClipboard()
	registry.Register("clipboard_read", clipboard.Read)
	registry.Register("clipboard_write", clipboard.Write)
	if len(cfg.AllowedHosts) > 0 {
		web := hostfunc.NewHTTP(hostfunc.HTTPConfig{AllowedHosts: cfg.AllowedHosts})
		registry.Register("http_request", web.Request)
	}

	var langOpts []python.Option
	if cfg.Interpreter != "" {
		langOpts = append(langOpts, python.WithWasmPath(cfg.Interpreter))
	}
	lang := python.New(langOpts...)

	opts := []launcher.Option{
		launcher.WithRegistry(registry),
		launcher.WithCompilationCache(cfg.CacheDir),
		launcher.WithEnv("PYTHONPATH", "/app:/packages"),
	}
	if info, err := os.Stat(cfg.AppDir); err == nil && info.IsDir() {
		opts = append(opts, launcher.WithReadOnlyMount(cfg.AppDir, "/app"))
	}
	if info, err := os.Stat(cfg.PackagesDir); err == nil && info.IsDir() {
		opts = append(opts, launcher.WithReadOnlyMount(cfg.PackagesDir, "/packages"))
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:      ">>> ",
		HistoryFile: historyFile,
	})
	if err != nil {
		return err
	}
	defer rl.Close()

	fmt.Println("clipfix debug shell (each line boots a fresh interpreter)")

	for {
		line, err := rl.Readline()
		if err != nil { // io.EOF or readline.ErrInterrupt
			break
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			break
		}

		sess, err := launcher.NewSession(context.Background(), lang, opts...)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			continue
		}
		res := sess.Boot(context.Background(), line)
		sess.Close()

		switch {
		case res.Err != nil:
			fmt.Fprintf(os.Stderr, "error: %v\n", res.Err)
		case res.Explicit && res.Status != 0:
			fmt.Fprintf(os.Stderr, "exit status %d\n", res.Status)
		}
	}

	return nil
}

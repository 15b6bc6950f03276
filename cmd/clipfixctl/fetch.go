package main

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download the embedded Python interpreter",
	Long: `Download the RustPython wasm binary the launcher embeds at runtime.

The source URL and an optional sha256 pin come from clipfix.toml; without a
manifest the default release URL is used.`,
	RunE: runFetch,
}

func init() {
	fetchCmd.Flags().Bool("force", false, "Re-download even if the asset exists")
	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	dest := cfg.InterpreterPath()
	force, _ := cmd.Flags().GetBool("force")

	if _, err := os.Stat(dest); err == nil && !force {
		log.Info().Str("path", dest).Msg("interpreter already present")
		return nil
	}

	log.Info().Str("url", cfg.InterpreterURL).Msg("downloading interpreter")

	resp, err := http.Get(cfg.InterpreterURL)
	if err != nil {
		return fmt.Errorf("download interpreter: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download interpreter: %s", resp.Status)
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}

	// Write to a temp file first so a failed download never clobbers a
	// working interpreter.
	tmp, err := os.CreateTemp(filepath.Dir(dest), "python-*.wasm")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	hash := sha256.New()
	n, err := io.Copy(io.MultiWriter(tmp, hash), resp.Body)
	tmp.Close()
	if err != nil {
		return fmt.Errorf("download interpreter: %w", err)
	}

	sum := hex.EncodeToString(hash.Sum(nil))
	if cfg.InterpreterSHA256 != "" && sum != cfg.InterpreterSHA256 {
		return fmt.Errorf("checksum mismatch: got %s, manifest pins %s", sum, cfg.InterpreterSHA256)
	}

	if err := os.Rename(tmpPath, dest); err != nil {
		return err
	}

	log.Info().
		Str("path", dest).
		Int64("bytes", n).
		Str("sha256", sum).
		Msg("interpreter installed")
	return nil
}

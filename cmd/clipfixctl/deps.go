package main

import (
	"archive/zip"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

var depsCmd = &cobra.Command{
	Use:   "deps",
	Short: "Manage Python packages for the embedded interpreter",
	Long: `Install and manage the Python packages clipfix imports at runtime.

Packages are downloaded directly from PyPI (no pip involved) into the
packages directory the launcher mounts at /packages. Only pure Python
wheels work - the embedded interpreter cannot load C extensions.`,
}

var depsInstallCmd = &cobra.Command{
	Use:   "install [packages...]",
	Short: "Install packages from PyPI",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runDepsInstall,
}

var depsSyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Install every package the manifest lists",
	RunE:  runDepsSync,
}

var depsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List installed packages",
	RunE:  runDepsList,
}

var depsRemoveCmd = &cobra.Command{
	Use:   "remove [packages...]",
	Short: "Remove packages",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runDepsRemove,
}

func init() {
	depsCmd.AddCommand(depsInstallCmd, depsSyncCmd, depsListCmd, depsRemoveCmd)
	rootCmd.AddCommand(depsCmd)
}

type pypiURL struct {
	PackageType string `json:"packagetype"`
	Filename    string `json:"filename"`
	URL         string `json:"url"`
}

type pypiResponse struct {
	Info struct {
		Name    string `json:"name"`
		Version string `json:"version"`
	} `json:"info"`
	Urls []pypiURL `json:"urls"`
}

// Packages that cannot work inside the embedded interpreter, with the
// clipfix-side replacement where one exists.
var blockedPackages = map[string]string{
	"pyperclip":    "no subprocesses in WASI (clipfix uses the clipfix_host clipboard instead)",
	"requests":     "uses sockets (use clipfix_host.http_request instead)",
	"httpx":        "uses sockets (use clipfix_host.http_request instead)",
	"urllib3":      "uses sockets (use clipfix_host.http_request instead)",
	"aiohttp":      "uses async sockets (use clipfix_host.http_request instead)",
	"numpy":        "requires C extensions",
	"pandas":       "requires C extensions (numpy)",
	"cryptography": "requires C extensions",
	"lxml":         "requires C extensions",
	"psycopg2":     "requires C extensions",
}

func runDepsInstall(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return installAll(cfg.PackagesDir, args)
}

func runDepsSync(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if len(cfg.Packages) == 0 {
		log.Info().Msg("manifest lists no packages")
		return nil
	}
	return installAll(cfg.PackagesDir, cfg.Packages)
}

func installAll(pkgDir string, specs []string) error {
	if err := os.MkdirAll(pkgDir, 0o755); err != nil {
		return fmt.Errorf("create package dir: %w", err)
	}

	for _, spec := range specs {
		name := parsePackageSpec(spec)

		if reason, blocked := blockedPackages[strings.ToLower(name)]; blocked {
			return fmt.Errorf("%s is not supported in the embedded interpreter (%s)", name, reason)
		}

		if err := installPackage(pkgDir, name); err != nil {
			return fmt.Errorf("install %s: %w", name, err)
		}
	}
	return nil
}

func parsePackageSpec(spec string) string {
	for _, op := range []string{">=", "<=", "==", "~=", "!="} {
		if idx := strings.Index(spec, op); idx != -1 {
			return spec[:idx]
		}
	}
	return spec
}

func installPackage(pkgDir, name string) error {
	log.Info().Str("package", name).Msg("installing")

	resp, err := http.Get(fmt.Sprintf("https://pypi.org/pypi/%s/json", name))
	if err != nil {
		return fmt.Errorf("fetch package info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("package not found on PyPI")
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("PyPI returned status %d", resp.StatusCode)
	}

	var pypi pypiResponse
	if err := json.NewDecoder(resp.Body).Decode(&pypi); err != nil {
		return fmt.Errorf("parse PyPI response: %w", err)
	}

	wheelURL := findWheel(pypi.Urls)
	if wheelURL == "" {
		return fmt.Errorf("no compatible wheel found (pure Python wheel required)")
	}

	log.Debug().
		Str("version", pypi.Info.Version).
		Str("url", wheelURL).
		Msg("downloading wheel")

	wheelResp, err := http.Get(wheelURL)
	if err != nil {
		return fmt.Errorf("download wheel: %w", err)
	}
	defer wheelResp.Body.Close()

	tmpFile, err := os.CreateTemp("", "clipfix-*.whl")
	if err != nil {
		return err
	}
	tmpPath := tmpFile.Name()
	defer os.Remove(tmpPath)

	if _, err := io.Copy(tmpFile, wheelResp.Body); err != nil {
		tmpFile.Close()
		return fmt.Errorf("download wheel: %w", err)
	}
	tmpFile.Close()

	return extractWheel(tmpPath, pkgDir)
}

func findWheel(urls []pypiURL) string {
	for _, u := range urls {
		if u.PackageType != "bdist_wheel" {
			continue
		}

		filename := strings.ToLower(u.Filename)
		if strings.Contains(filename, "-py3-none-any") ||
			strings.Contains(filename, "-py2.py3-none-any") {
			return u.URL
		}
	}
	return ""
}

func extractWheel(wheelPath, destDir string) error {
	r, err := zip.OpenReader(wheelPath)
	if err != nil {
		return err
	}
	defer r.Close()

	for _, f := range r.File {
		name := strings.ToLower(f.Name)
		if strings.HasSuffix(name, ".so") || strings.HasSuffix(name, ".pyd") || strings.HasSuffix(name, ".dylib") {
			return fmt.Errorf("package contains C extensions (%s)", filepath.Base(f.Name))
		}
	}

	for _, f := range r.File {
		if strings.Contains(f.Name, ".dist-info/") {
			continue
		}

		destPath, err := entryPath(destDir, f.Name)
		if err != nil {
			return err
		}

		if f.FileInfo().IsDir() {
			os.MkdirAll(destPath, 0o755)
			continue
		}

		if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
			return err
		}

		outFile, err := os.Create(destPath)
		if err != nil {
			return err
		}

		rc, err := f.Open()
		if err != nil {
			outFile.Close()
			return err
		}

		_, err = io.Copy(outFile, rc)
		rc.Close()
		outFile.Close()

		if err != nil {
			return err
		}
	}

	return nil
}

// entryPath joins an archive entry name onto destDir and rejects names
// that would land outside it (absolute paths or ".." traversal).
func entryPath(destDir, name string) (string, error) {
	if filepath.IsAbs(name) {
		return "", fmt.Errorf("refusing archive entry with absolute path %q", name)
	}
	dest := filepath.Join(destDir, name)
	if dest != destDir && !strings.HasPrefix(dest, destDir+string(os.PathSeparator)) {
		return "", fmt.Errorf("refusing archive entry %q: escapes package dir", name)
	}
	return dest, nil
}

func runDepsList(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	entries, err := os.ReadDir(cfg.PackagesDir)
	if err != nil {
		if os.IsNotExist(err) {
			fmt.Println("No packages installed.")
			return nil
		}
		return err
	}

	if len(entries) == 0 {
		fmt.Println("No packages installed.")
		return nil
	}

	fmt.Printf("Packages in %s:\n", cfg.PackagesDir)
	for _, entry := range entries {
		if entry.IsDir() && !strings.HasPrefix(entry.Name(), "__") {
			fmt.Printf("  %s\n", entry.Name())
		}
	}
	return nil
}

func runDepsRemove(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	for _, pkg := range args {
		pkgPath := filepath.Join(cfg.PackagesDir, pkg)
		if err := os.RemoveAll(pkgPath); err != nil && !os.IsNotExist(err) {
			log.Warn().Str("package", pkg).Err(err).Msg("remove failed")
			continue
		}
		log.Info().Str("package", pkg).Msg("removed")
	}
	return nil
}

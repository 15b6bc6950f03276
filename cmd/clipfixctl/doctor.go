package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Show resolved asset paths and whether they exist",
	RunE:  runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

func runDoctor(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	report := []struct {
		name string
		path string
	}{
		{"interpreter", cfg.InterpreterPath()},
		{"app", cfg.AppDir},
		{"packages", cfg.PackagesDir},
		{"state", cfg.StateDir},
		{"cache", cfg.CacheDir},
	}

	ok := true
	for _, r := range report {
		mark := "ok"
		if _, err := os.Stat(r.path); err != nil {
			mark = "missing"
			if r.name == "interpreter" || r.name == "app" {
				ok = false
			}
		}
		fmt.Printf("%-12s %-8s %s\n", r.name, mark, r.path)
	}

	if len(cfg.AllowedHosts) > 0 {
		fmt.Printf("%-12s %-8s %v\n", "http", "ok", cfg.AllowedHosts)
	} else {
		fmt.Printf("%-12s %-8s (disabled)\n", "http", "-")
	}

	if !ok {
		fmt.Println("\nrun 'clipfixctl fetch' and install the application tree before launching")
	}
	return nil
}

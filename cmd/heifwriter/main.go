// Copyright 2026 The heifwriter Authors
// SPDX-License-Identifier: MIT

// Command heifwriter is the peripheral CLI of §6.3: it loads a
// configuration JSON file, decodes it into a heifwriter.Configuration,
// and writes the HEIF file it describes.
package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/bep/heifwriter"
)

// version is the build id printed by --version; overridable with
// -ldflags "-X main.version=...".
var version = "0.1.0"

var (
	verbose    bool
	noWarnings bool
	showVer    bool
)

func main() {
	root := &cobra.Command{
		Use:   "heifwriter [config.json]",
		Short: "Writes a HEIF/ISOBMFF file from a JSON configuration",
		Args:  cobra.MaximumNArgs(1),
		RunE:  run,
	}

	root.Flags().BoolVarP(&verbose, "verbose", "v", false, "log info-level progress")
	root.Flags().BoolVar(&noWarnings, "no-warnings", false, "log errors only")
	root.Flags().BoolVar(&showVer, "version", false, "print build id and exit")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	if showVer {
		fmt.Println("heifwriter " + version)
		return nil
	}
	if len(args) != 1 {
		return cmd.Usage()
	}

	logf := log.Printf
	if noWarnings {
		logf = func(string, ...any) {}
	}

	path := args[0]
	if verbose {
		logf("heifwriter: reading configuration %s", path)
	}
	cfg, err := loadConfiguration(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if verbose {
		logf("heifwriter: writing %s", cfg.General.OutputFile)
	}
	res, err := heifwriter.Write(*cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if verbose {
		logf("heifwriter: wrote %s (%d bytes)", res.OutputPath, res.Size)
	}
	return nil
}

// loadConfiguration decodes path's JSON contents directly into a
// heifwriter.Configuration: the shape of §6.1 already matches the wire
// format field for field (json struct tags on internal/config's types),
// so no intermediate DTO is needed. This loader is the external
// collaborator §1 names; heifwriter itself never imports encoding/json.
func loadConfiguration(path string) (*heifwriter.Configuration, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config invalid: reading %s: %w", path, err)
	}
	var cfg heifwriter.Configuration
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config invalid: decoding %s: %w", path, err)
	}
	return &cfg, nil
}

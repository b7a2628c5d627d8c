package main

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/reoring/schemarpc/internal/config"
	"github.com/reoring/schemarpc/manifest"
)

// errInvalid signals that the input was rejected and the errors were already
// printed.
var errInvalid = errors.New("validation failed")

type rootOptions struct {
	ConfigPath string
	LogLevel   string

	cfg *config.Config
	log *logrus.Logger
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{log: logrus.New()}

	cmd := &cobra.Command{
		Use:           "schemarpc",
		Short:         "Compile and use RPC schema manifests",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			v := config.New()
			if err := v.BindPFlag("log.level", cmd.Root().PersistentFlags().Lookup("log-level")); err != nil {
				return err
			}
			cfg, err := config.Read(v, opts.ConfigPath)
			if err != nil {
				return err
			}
			opts.cfg = cfg
			opts.log.SetOutput(cmd.ErrOrStderr())
			cfg.Apply(opts.log)
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "config file (yaml, json or toml)")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "info", "log level (trace|debug|info|warn|error)")

	cmd.AddCommand(newCompileCommand(opts))
	cmd.AddCommand(newValidateCommand(opts))
	cmd.AddCommand(newGenCommand(opts))
	cmd.AddCommand(newJSONSchemaCommand(opts))
	return cmd
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// loadManifest reads a manifest written by compile.
func loadManifest(path string) (*manifest.Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if isYAML(path) {
		return manifest.DecodeYAML(data)
	}
	return manifest.Decode(data)
}

// writeOutput writes data to path, or to the command's stdout when path is
// empty.
func writeOutput(cmd *cobra.Command, path string, data []byte) error {
	if path == "" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0o644)
}

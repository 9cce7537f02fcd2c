// Package cli implements the restui-history command-line interface.
package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"restui/internal/config"
	"restui/internal/logger"
	"restui/internal/store"
	"restui/internal/transaction"
)

// RootOptions holds global flags for all commands
type RootOptions struct {
	ConfigPath string
}

// cmdContext holds common resources for CLI commands
type cmdContext struct {
	Config *config.Config
	Store  *store.Store
	Log    logger.Logger
}

// Close releases resources held by cmdContext
func (c *cmdContext) Close() {
	if c.Store != nil {
		c.Store.Close()
	}
}

func initContext(opts *RootOptions) (*cmdContext, error) {
	cfg, err := config.Resolve(opts.ConfigPath)
	if err != nil {
		return nil, err
	}

	log, err := logger.New(logger.Options{
		Level:      cfg.Log.Level,
		Writers:    cfg.Log.Writer,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
	})
	if err != nil {
		return nil, err
	}

	st, err := store.FromConfig(cfg.Store, log)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	return &cmdContext{Config: cfg, Store: st, Log: log}, nil
}

// NewRootCommand creates the root command
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:           "restui-history",
		Short:         "Inspect saved transactions",
		Long:          "restui-history works on the saved transaction history of restui.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "path to config file (yaml or toml)")

	cmd.AddCommand(newListCommand(opts))
	cmd.AddCommand(newPathsCommand(opts))
	cmd.AddCommand(newShowCommand(opts))
	cmd.AddCommand(newDeleteCommand(opts))
	cmd.AddCommand(newImportCommand(opts))
	cmd.AddCommand(newExportCommand(opts))

	return cmd
}

// withContext opens the store for the duration of fn
func withContext(opts *RootOptions, fn func(c *cmdContext) error) error {
	c, err := initContext(opts)
	if err != nil {
		return err
	}
	defer c.Close()
	return fn(c)
}

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// statusColor picks the colour for a status by its display tone
func statusColor(status string) *color.Color {
	switch transaction.StatusTone(status) {
	case transaction.ToneSuccess:
		return color.New(color.FgGreen)
	case transaction.ToneError:
		return color.New(color.FgRed)
	case transaction.ToneWarning:
		return color.New(color.FgYellow)
	default:
		return color.New(color.Reset)
	}
}

// shortID returns first 8 characters of an ID
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

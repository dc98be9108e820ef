// -- cmd/root.go --
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xkilldash9x/handrail/internal/config"
	"github.com/xkilldash9x/handrail/internal/observability"
)

var (
	cfgFile string
	cfg     *config.Config
)

// NewRootCommand builds a fresh root command tree. A new instance per
// invocation keeps flag state from leaking between runs.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "handrail",
		Short:   "Handrail drives component-framework UIs through a real browser.",
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.Load(cfgFile)
			if err != nil {
				// Fall back to a console logger so the failure is visible.
				observability.InitializeLogger(config.LoggerConfig{Level: "info", Format: "console", ServiceName: "handrail"})
				return fmt.Errorf("failed to load config: %w", err)
			}

			observability.InitializeLogger(cfg.Logger)
			observability.GetLogger().Debug("starting handrail", zap.String("version", Version))
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default is ./handrail.yaml)")
	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	rootCmd.AddCommand(newInspectCommand())
	return rootCmd
}

// Execute runs the root command with the given context.
func Execute(ctx context.Context) error {
	rootCmd := NewRootCommand()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if logger := observability.GetLogger(); logger != nil {
			logger.Error("command failed", zap.Error(err))
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		return err
	}
	return nil
}

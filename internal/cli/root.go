// Package cli implements the hapticsd command tree.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/zeusync/haptics/internal/config"
)

// RootOptions holds flags shared by every command.
type RootOptions struct {
	ConfigPath string
}

// NewRootCommand creates the hapticsd root command.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "hapticsd",
		Short: "Haptic force rendering daemon",
		Long: `hapticsd renders forces on haptic devices at device rate from scene
snapshots produced at simulation rate.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "path to a YAML configuration file")

	cmd.AddCommand(NewRunCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewConfigCommand(opts))

	return cmd
}

// loadConfig reads the configured file, or the defaults without one.
func (o *RootOptions) loadConfig() (*config.Config, error) {
	if o.ConfigPath == "" {
		return config.Default(), nil
	}
	return config.LoadFile(o.ConfigPath)
}

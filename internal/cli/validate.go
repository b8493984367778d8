package cli

import (
	"github.com/spf13/cobra"
)

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Load and validate the configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := rootOpts.loadConfig()
			if err != nil {
				return err
			}
			cmd.Printf("configuration OK: %d device(s), mode %s, proximity %s\n",
				len(cfg.Devices), cfg.Haptics.Mode, cfg.Scene.Proximity)
			return nil
		},
	}
}

package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/zeusync/haptics/internal/config"
	"github.com/zeusync/haptics/internal/core/haptics"
	"github.com/zeusync/haptics/internal/injector"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	Duration  time.Duration
	Mode      string
	Gating    bool
	Telemetry bool
}

// apply overrides cfg with the flags the user set. Switching to mesh mode
// turns collision gating off unless --gating is given, since mesh forces
// are already zero without penetration.
func (o *RunOptions) apply(cfg *config.Config, changed func(name string) bool) {
	if o.Mode != "" {
		cfg.Haptics.Mode = o.Mode
		if o.Mode == string(haptics.ModeMesh) && !changed("gating") {
			cfg.Haptics.CollisionGating = false
		}
	}
	if changed("gating") {
		cfg.Haptics.CollisionGating = o.Gating
	}
	if changed("telemetry") {
		cfg.Telemetry.Enabled = o.Telemetry
	}
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the haptic loop until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRun(cmd.Context(), rootOpts, opts, cmd)
		},
	}

	cmd.Flags().DurationVarP(&opts.Duration, "duration", "d", 0, "stop after this long (0 runs until interrupted)")
	cmd.Flags().StringVar(&opts.Mode, "mode", "", "override haptics.mode (contact|mesh); mesh also disables gating")
	cmd.Flags().BoolVar(&opts.Gating, "gating", true, "override haptics.collision_gating")
	cmd.Flags().BoolVar(&opts.Telemetry, "telemetry", false, "enable telemetry regardless of the file")

	return cmd
}

func runRun(ctx context.Context, rootOpts *RootOptions, opts *RunOptions, cmd *cobra.Command) error {
	cfg, err := rootOpts.loadConfig()
	if err != nil {
		return err
	}
	opts.apply(cfg, cmd.Flags().Changed)
	if err = cfg.Validate(); err != nil {
		return err
	}

	s, cleanup, err := injector.InitializeSession(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	if opts.Duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Duration)
		defer cancel()
	}

	if err = s.Run(ctx); err != nil {
		return err
	}

	st := s.Stats()
	cmd.Printf("session %s: %d ticks, %d releases, %d write errors\n",
		s.ID, st.Ticks, st.Releases, st.WriteErrors)
	return nil
}

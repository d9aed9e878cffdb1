package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/xtding233/fscoin/internal/tone"
)

func newBeepCmd() *cobra.Command {
	var (
		out    string
		t      = tone.Default()
		choose bool
	)

	cmd := &cobra.Command{
		Use:   "beep",
		Short: "render a tone (or three announced coin flips) as raw s16le mono PCM",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			a, err := newApp(cfg, false)
			if err != nil {
				return err
			}

			var w io.Writer = cmd.OutOrStdout()
			if out != "-" {
				f, err := os.Create(out)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}

			pcm := tone.NewPCMContext(w, cfg.Tone.SampleRate, nil)
			emitter := tone.NewEmitter(pcm)
			if !choose {
				if err := emitter.Beep(t); err != nil {
					return err
				}
				waitIdle(emitter, nil)
				return pcm.Err()
			}

			sched := tone.NewScheduler(emitter, nil, cfg.Tone.Step, a.logger.With("module", "tone"))
			outcomes, err := sched.BeepChoose(a.sim, a.gen)
			if err != nil {
				return err
			}
			for o := range outcomes {
				fmt.Fprintln(cmd.ErrOrStderr(), o)
			}
			waitIdle(emitter, sched)
			return pcm.Err()
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "-", "PCM output file, - for stdout")
	cmd.Flags().Float64Var(&t.Frequency, "freq", t.Frequency, "frequency in Hz")
	cmd.Flags().DurationVar(&t.Duration, "duration", t.Duration, "tone length")
	cmd.Flags().Float64Var(&t.Volume, "volume", t.Volume, "gain; values above 1 clip")
	cmd.Flags().BoolVar(&choose, "choose", false, "announce three coin flips instead of a single tone")
	return cmd
}

// waitIdle blocks until nothing is audible and no deferred beep is queued.
func waitIdle(e *tone.Emitter, s *tone.Scheduler) {
	for e.Running() || (s != nil && s.Pending() > 0) {
		time.Sleep(10 * time.Millisecond)
	}
}

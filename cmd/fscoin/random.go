package main

import (
	"fmt"
	"strconv"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"
)

func newRandintCmd() *cobra.Command {
	var scaled bool

	cmd := &cobra.Command{
		Use:   "randint [--] START END [N]",
		Short: "print N random integers in [START, END] (use -- before negative bounds)",
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			start, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid START: %w", err)
			}
			end, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid END: %w", err)
			}
			n := 1
			if len(args) == 3 {
				if n, err = strconv.Atoi(args[2]); err != nil {
					return fmt.Errorf("invalid N: %w", err)
				}
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			a, err := newApp(cfg, false)
			if err != nil {
				return err
			}

			var out []string
			if scaled {
				vs, err := a.gen.Scaled(start, end, n)
				if err != nil {
					return err
				}
				for _, v := range vs {
					out = append(out, strconv.FormatFloat(v, 'f', -1, 64))
				}
			} else {
				vs, err := a.gen.Integers(start, end, n)
				if err != nil {
					return err
				}
				for _, v := range vs {
					out = append(out, strconv.FormatInt(v, 10))
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), strings.Join(out, " "))
			return nil
		},
	}
	cmd.Flags().BoolVar(&scaled, "scaled", false, "print the raw linear map instead of integers")
	return cmd
}

func newChooseCmd() *cobra.Command {
	var (
		count   int
		verbose bool
	)

	cmd := &cobra.Command{
		Use:   "choose",
		Short: "flip the majority-vote coin",
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
			for i := 0; i < count; i++ {
				r, err := a.sim.ChooseDetailed()
				if err != nil {
					return err
				}
				if verbose {
					fmt.Fprintf(cmd.OutOrStdout(), "%d draws=%d even=%d odd=%d\n", r.Outcome, r.Draws, r.Tally[0], r.Tally[1])
					continue
				}
				fmt.Fprintln(cmd.OutOrStdout(), r.Outcome)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&count, "count", "n", 1, "number of flips")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "print draw count and tally")
	return cmd
}

func newSimulateCmd() *cobra.Command {
	var runs int

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "run many flips and print summary stats as JSON",
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
			rep, err := a.sim.RunMonteCarlo(runs)
			if err != nil {
				return err
			}
			b, err := jsoniter.ConfigCompatibleWithStandardLibrary.MarshalIndent(rep, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(b))
			return nil
		},
	}
	cmd.Flags().IntVar(&runs, "runs", 10000, "number of flips")
	return cmd
}

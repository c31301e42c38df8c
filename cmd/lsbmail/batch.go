package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/rs/zerolog/log"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/lsbmail/lsbmail/internal/batch"
)

var (
	batchFlags struct {
		Msg     string
		File    string
		Dir     string
		Workers int
		codec   codecFlags
	}
)

var batchCmd = &cobra.Command{
	Use:   "batch [image-path...]",
	Short: "Conceal the same message in many images",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if batchFlags.Workers < 0 {
			log.Fatal().Msg("number of workers cannot be negative")
		}
		message := readMessage(batchFlags.Msg, batchFlags.File)
		framing, channels := batchFlags.codec.resolve(cmd)

		dir := batchFlags.Dir
		if dir == "" {
			dir = cfg.OutputDir
		}
		workers := batchFlags.Workers
		if workers == 0 {
			workers = cfg.Workers
		}

		jobs := batch.JobsFor(args, dir)
		bar := progressbar.Default(int64(len(jobs)), "concealing")

		r := &batch.Runner{
			Workers:  workers,
			Framing:  framing,
			Channels: channels,
			Logger:   log.Logger,
			OnDone:   func(batch.Result) { bar.Add(1) },
		}
		results, err := r.Run(cmd.Context(), message, jobs)
		bar.Finish()
		if err != nil {
			log.Fatal().Err(err).Msg("Batch aborted")
		}

		wtr := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(wtr, "Input\tOutput\tStatus")
		fmt.Fprintln(wtr, "-----\t------\t------")
		for _, res := range results {
			status := "ok"
			if res.Err != nil {
				status = res.Err.Error()
			}
			fmt.Fprintf(wtr, "%s\t%s\t%s\n", res.Input, res.Output, status)
		}
		wtr.Flush()

		if failed := batch.Failed(results); failed > 0 {
			log.Fatal().Int("failed", failed).Int("total", len(results)).Msg("Some images could not be processed")
		}
		log.Info().Int("total", len(results)).Str("output_dir", dir).Msg("Batch complete")
	},
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().StringVarP(&batchFlags.Msg, "message", "m", "", "Message you want to conceal")
	batchCmd.Flags().StringVarP(&batchFlags.File, "file", "f", "", "Path to a text file to conceal. Use '-' for stdin.")
	batchCmd.Flags().StringVarP(&batchFlags.Dir, "output-dir", "d", "", "Directory for the carriers (default output_dir from config)")
	batchCmd.Flags().IntVarP(&batchFlags.Workers, "workers", "w", 0, "Number of workers to use for concurrency (default: number of CPUs)")
	batchFlags.codec.register(batchCmd)
}

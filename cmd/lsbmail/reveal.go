package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/lsbmail/lsbmail/pkg/stego"
)

var (
	revealFlags struct {
		Image string
		Out   string
		codec codecFlags
	}
)

var revealCmd = &cobra.Command{
	Use:   "reveal",
	Short: "Reveal a message in an image",
	Run: func(cmd *cobra.Command, args []string) {
		framing, channels := revealFlags.codec.resolve(cmd)

		grid, err := stego.LoadGrid(revealFlags.Image, channels)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to load image")
		}

		text, err := stego.Reveal(grid, stego.WithFraming(framing), stego.WithLogger(log.Logger))
		if stego.IsNotCarrier(err) {
			log.Fatal().Err(err).Msg("No hidden message found in image")
		}
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to reveal message")
		}

		if revealFlags.Out == "" {
			fmt.Fprintln(cmd.OutOrStdout(), text)
			return
		}
		if err := os.WriteFile(revealFlags.Out, []byte(text), 0644); err != nil {
			log.Fatal().Err(err).Msg("Failed to write output file")
		}
		log.Info().Str("output", revealFlags.Out).Int("bytes", len(text)).Msg("Message written")
	},
}

func init() {
	rootCmd.AddCommand(revealCmd)

	revealCmd.Flags().StringVarP(&revealFlags.Image, "image-path", "i", "", "Path to image (required)")
	revealCmd.MarkFlagRequired("image-path")
	revealCmd.Flags().StringVarP(&revealFlags.Out, "output", "o", "", "Output path for revealed message (optional)")
	revealFlags.codec.register(revealCmd)
}

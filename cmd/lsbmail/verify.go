package main

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/lsbmail/lsbmail/pkg/stego"
)

var (
	verifyFlags struct {
		Image string
		codec codecFlags
	}
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Verify that an image carries a readable message",
	Long:  `Checks that an image holds a complete, well-formed UTF-8 payload without printing it.`,
	Run: func(cmd *cobra.Command, args []string) {
		framing, channels := verifyFlags.codec.resolve(cmd)

		grid, err := stego.LoadGrid(verifyFlags.Image, channels)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to load image")
		}

		info, err := stego.Inspect(grid, stego.WithFraming(framing))
		if err != nil {
			log.Fatal().Err(err).Msg("Verification failed")
		}
		if !info.ValidUTF8 {
			log.Fatal().Int("bytes", info.PayloadBytes).Msg("Verification failed: payload is not valid UTF-8")
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "✅ Image verification successful!")
		fmt.Fprintf(out, "Framing:          %s\n", info.Framing)
		fmt.Fprintf(out, "Message Size:     %d bytes\n", info.PayloadBytes)
		fmt.Fprintf(out, "Bits Used:        %d\n", info.UsedBits)
		fmt.Fprintf(out, "Channels Used:    %d\n", info.Channels)
	},
}

func init() {
	rootCmd.AddCommand(verifyCmd)

	verifyCmd.Flags().StringVarP(&verifyFlags.Image, "image-path", "i", "", "Path to image (required)")
	verifyCmd.MarkFlagRequired("image-path")
	verifyFlags.codec.register(verifyCmd)
}

package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/lsbmail/lsbmail/pkg/stego"
)

var (
	concealFlags struct {
		Image  string
		Msg    string
		File   string
		Out    string
		DryRun bool
		SendTo []string
		codec  codecFlags
		mail   mailFlags
	}
)

var concealCmd = &cobra.Command{
	Use:   "conceal",
	Short: "Conceal a message in an image",
	Long: `Hides a text message in the least significant bits of an image and writes
the result as a PNG. With --send-to the carrier is mailed as an attachment.`,
	Run: func(cmd *cobra.Command, args []string) {
		message := readMessage(concealFlags.Msg, concealFlags.File)
		framing, channels := concealFlags.codec.resolve(cmd)

		grid, err := stego.LoadGrid(concealFlags.Image, channels)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to load image")
		}

		if concealFlags.DryRun {
			required := framing.RequiredBits(len(message))
			available := grid.Slots()
			fmt.Fprintf(cmd.OutOrStdout(), "Required:  %s bits (%s message)\n", humanize.Comma(int64(required)), humanize.Bytes(uint64(len(message))))
			fmt.Fprintf(cmd.OutOrStdout(), "Available: %s bits (up to %s message)\n", humanize.Comma(int64(available)), humanize.Bytes(uint64(framing.MaxPayload(available))))
			if required > available {
				log.Fatal().Int("required", required).Int("available", available).Msg("Message does not fit in image")
			}
			log.Info().Msg("Message fits in image")
			return
		}

		carrier, err := stego.Hide(grid, message, stego.WithFraming(framing), stego.WithLogger(log.Logger))
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to conceal message")
		}

		out := outputPath(concealFlags.Out, "stego_image.png")
		if err := stego.SaveGrid(out, carrier); err != nil {
			log.Fatal().Err(err).Msg("Failed to write image")
		}
		log.Info().Str("output", out).Str("framing", framing.Name()).Msg("Message concealed")

		if len(concealFlags.SendTo) == 0 {
			return
		}
		if err := sendCarrier(cmd.Context(), &concealFlags.mail, out, concealFlags.SendTo); err != nil {
			log.Fatal().Err(err).Msg("Failed to send email")
		}
		log.Info().Strs("to", concealFlags.SendTo).Msg("Email sent successfully")
	},
}

func init() {
	rootCmd.AddCommand(concealCmd)

	concealCmd.Flags().StringVarP(&concealFlags.Image, "image-path", "i", "", "Path to image (required)")
	concealCmd.MarkFlagRequired("image-path")
	concealCmd.Flags().StringVarP(&concealFlags.Msg, "message", "m", "", "Message you want to conceal")
	concealCmd.Flags().StringVarP(&concealFlags.File, "file", "f", "", "Path to a text file to conceal. Use '-' for stdin.")
	concealCmd.Flags().StringVarP(&concealFlags.Out, "output", "o", "", "Output path for the image (default <output_dir>/stego_image.png)")
	concealCmd.Flags().BoolVar(&concealFlags.DryRun, "dry-run", false, "Check if the message fits without encoding")
	concealCmd.Flags().StringSliceVar(&concealFlags.SendTo, "send-to", nil, "Mail the carrier to these addresses")
	concealFlags.codec.register(concealCmd)
	concealFlags.mail.register(concealCmd)
}

package main

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/lsbmail/lsbmail/pkg/stego"
)

var (
	sendFlags struct {
		Image string
		To    []string
		Force bool
		codec codecFlags
		mail  mailFlags
	}
)

var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Mail a carrier image as an attachment",
	Long: `Sends an existing carrier image over SMTP. The password is read from the
environment variable or file named in the config, or asked for on the terminal.`,
	Run: func(cmd *cobra.Command, args []string) {
		if !sendFlags.Force {
			framing, channels := sendFlags.codec.resolve(cmd)
			grid, err := stego.LoadGrid(sendFlags.Image, channels)
			if err != nil {
				log.Fatal().Err(err).Msg("Failed to load image")
			}
			if _, err := stego.Inspect(grid, stego.WithFraming(framing)); err != nil {
				log.Fatal().Err(err).Msg("Image does not carry a hidden message; use --force to send it anyway")
			}
		}

		if err := sendCarrier(cmd.Context(), &sendFlags.mail, sendFlags.Image, sendFlags.To); err != nil {
			log.Fatal().Err(err).Msg("Failed to send email")
		}
		log.Info().Strs("to", sendFlags.To).Msg("Email sent successfully")
	},
}

func init() {
	rootCmd.AddCommand(sendCmd)

	sendCmd.Flags().StringVarP(&sendFlags.Image, "image-path", "i", "", "Path to carrier image (required)")
	sendCmd.MarkFlagRequired("image-path")
	sendCmd.Flags().StringSliceVar(&sendFlags.To, "to", nil, "Recipient addresses (required)")
	sendCmd.MarkFlagRequired("to")
	sendCmd.Flags().BoolVar(&sendFlags.Force, "force", false, "Send even if the image carries no readable payload")
	sendFlags.codec.register(sendCmd)
	sendFlags.mail.register(sendCmd)
}

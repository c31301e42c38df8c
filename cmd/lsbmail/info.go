package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/lsbmail/lsbmail/pkg/stego"
)

var infoFlags struct {
	codec codecFlags
}

var infoCmd = &cobra.Command{
	Use:   "info [image_path]",
	Short: "Inspect a stego image and describe its payload",
	Long:  `Scans a carrier for the end of its payload and reports the payload size and how much of the image it occupies, without printing the message.`,
	Args:  cobra.ExactArgs(1), // Requires exactly one argument: the image path
	RunE: func(cmd *cobra.Command, args []string) error {
		imagePath := args[0]
		framing, channels := infoFlags.codec.resolve(cmd)

		grid, err := stego.LoadGrid(imagePath, channels)
		if err != nil {
			return fmt.Errorf("failed to load %s: %w", imagePath, err)
		}
		info, err := stego.Inspect(grid, stego.WithFraming(framing))
		if err != nil {
			return fmt.Errorf("failed to get info from %s: %w", imagePath, err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "Carrier Information:")
		fmt.Fprintln(out, "--------------------")
		fmt.Fprintf(out, "Framing:          %s\n", info.Framing)
		fmt.Fprintf(out, "Dimensions:       %dx%d\n", info.Width, info.Height)
		fmt.Fprintf(out, "Channels Used:    %d\n", info.Channels)
		fmt.Fprintf(out, "Payload Size:     %s (%d bytes)\n", humanize.Bytes(uint64(info.PayloadBytes)), info.PayloadBytes)
		fmt.Fprintf(out, "Bits Used:        %s of %s (%.2f%%)\n", humanize.Comma(int64(info.UsedBits)), humanize.Comma(int64(info.Slots)), info.Utilization()*100)
		fmt.Fprintf(out, "Max Message:      %s\n", humanize.Bytes(uint64(info.MaxBytes)))
		fmt.Fprintf(out, "Valid UTF-8:      %t\n", info.ValidUTF8)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
	infoFlags.codec.register(infoCmd)
}

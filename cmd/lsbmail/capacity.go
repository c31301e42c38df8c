package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/lsbmail/lsbmail/pkg/stego"
)

var capacityCmd = &cobra.Command{
	Use:   "capacity [image-path]",
	Short: "Calculate the storage capacity of an image",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		grid, err := stego.LoadGrid(args[0], stego.RGBA)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to load image")
		}
		w, h := grid.Width, grid.Height

		wtr := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintf(wtr, "Image: %dx%d\n\n", w, h)
		fmt.Fprintln(wtr, "Framing\tChannels\tCapacity (Bits)\tMax Message (Bytes)\tMax Message")
		fmt.Fprintln(wtr, "-------\t--------\t---------------\t-------------------\t-----------")

		for _, f := range []stego.Framing{stego.Terminated, stego.LengthPrefixed} {
			printCap(wtr, w, h, stego.RGB, f)
			printCap(wtr, w, h, stego.RGBA, f)
		}

		wtr.Flush()
	},
}

func printCap(wtr *tabwriter.Writer, w, h, c int, f stego.Framing) {
	bits := stego.Capacity(w, h, c)
	maxBytes := f.MaxPayload(bits)
	fmt.Fprintf(wtr, "%s\t%d\t%s\t%s\t%s\n", f.Name(), c,
		humanize.Comma(int64(bits)), humanize.Comma(int64(maxBytes)), humanize.Bytes(uint64(maxBytes)))
}

func init() {
	rootCmd.AddCommand(capacityCmd)
}

package main

import (
	"math/rand/v2"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/lsbmail/lsbmail/pkg/stego"
)

var (
	generateFlags struct {
		Width  int
		Height int
		Seed   uint64
		Out    string
	}
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a synthetic cover image",
	Long:  `Writes a PNG of random pixels that can be used as a cover image. The same seed always produces the same image.`,
	Run: func(cmd *cobra.Command, args []string) {
		if generateFlags.Width <= 0 || generateFlags.Height <= 0 {
			log.Fatal().Msg("width and height must be positive")
		}

		grid, err := stego.NewGrid(generateFlags.Width, generateFlags.Height, stego.RGB)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create image")
		}
		rng := rand.New(rand.NewPCG(generateFlags.Seed, generateFlags.Seed^0x9e3779b97f4a7c15))
		for i := range grid.Pix {
			grid.Pix[i] = uint8(rng.UintN(256))
		}

		out := outputPath(generateFlags.Out, "cover.png")
		if err := stego.SaveGrid(out, grid); err != nil {
			log.Fatal().Err(err).Msg("Failed to write image")
		}
		log.Info().
			Str("output", out).
			Int("width", grid.Width).
			Int("height", grid.Height).
			Int("capacity", grid.Slots()).
			Msg("Cover image generated")
	},
}

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().IntVarP(&generateFlags.Width, "width", "W", 900, "Image width in pixels")
	generateCmd.Flags().IntVarP(&generateFlags.Height, "height", "H", 650, "Image height in pixels")
	generateCmd.Flags().Uint64Var(&generateFlags.Seed, "seed", 1, "Random seed")
	generateCmd.Flags().StringVarP(&generateFlags.Out, "output", "o", "", "Output path (default <output_dir>/cover.png)")
}

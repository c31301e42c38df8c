package main

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/lsbmail/lsbmail/internal/shell"
)

var (
	assetsFlags struct {
		Preview string
		Play    time.Duration
	}
)

var assetsCmd = &cobra.Command{
	Use:   "assets",
	Short: "Load the configured background and foreground assets",
	Long: `Loads background_asset and foreground_asset from the config, scales them to
the configured window and panel sizes and reports what was loaded. A missing
asset is replaced by a blank frame.`,
	Run: func(cmd *cobra.Command, args []string) {
		assets := shell.Load(shell.Options{
			Background: cfg.BackgroundAsset,
			Foreground: cfg.ForegroundAsset,
			Window:     image.Pt(cfg.Window.Width, cfg.Window.Height),
			Panel:      image.Pt(cfg.Window.PanelWidth, cfg.Window.PanelHeight),
		}, log.Logger)

		var total time.Duration
		for _, f := range assets.Background.Frames {
			total += f.Delay
		}
		out := cmd.OutOrStdout()
		size := assets.Background.Size()
		fmt.Fprintf(out, "Background:  %dx%d, %d frame(s), %s per loop\n", size.X, size.Y, len(assets.Background.Frames), total)
		fg := assets.Foreground.Bounds().Size()
		fmt.Fprintf(out, "Foreground:  %dx%d\n", fg.X, fg.Y)
		fmt.Fprintf(out, "Fallback:    %t\n", assets.Fallback)

		if assetsFlags.Preview != "" {
			writePreview(assetsFlags.Preview, assets)
		}

		if assetsFlags.Play > 0 {
			ctx, cancel := context.WithTimeout(cmd.Context(), assetsFlags.Play)
			defer cancel()

			anim := shell.NewAnimator(assets.Background)
			shown := 0
			for idx := range anim.Run(ctx) {
				log.Debug().Int("frame", idx).Msg("Frame")
				shown++
			}
			fmt.Fprintf(out, "Played:      %d frame(s) in %s\n", shown, assetsFlags.Play)
		}
	},
}

func writePreview(dir string, assets *shell.Assets) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		log.Fatal().Err(err).Msg("Failed to create preview directory")
	}
	for i, f := range assets.Background.Frames {
		savePNG(filepath.Join(dir, fmt.Sprintf("background_%03d.png", i)), f.Image)
	}
	savePNG(filepath.Join(dir, "foreground.png"), assets.Foreground)
	log.Info().Str("dir", dir).Int("frames", len(assets.Background.Frames)).Msg("Preview written")
}

func savePNG(path string, img image.Image) {
	f, err := os.Create(path)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create preview file")
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		log.Fatal().Err(err).Str("path", path).Msg("Failed to write preview")
	}
}

func init() {
	rootCmd.AddCommand(assetsCmd)

	assetsCmd.Flags().StringVar(&assetsFlags.Preview, "preview", "", "Write the scaled frames as PNGs into this directory")
	assetsCmd.Flags().DurationVar(&assetsFlags.Play, "play", 0, "Run the background animation for this long and report the frames shown")
}

package main

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/lsbmail/lsbmail/internal/server"
)

var (
	serveFlags struct {
		Addr  string
		codec codecFlags
	}
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve hide, reveal and capacity over HTTP",
	Run: func(cmd *cobra.Command, args []string) {
		framing, channels := serveFlags.codec.resolve(cmd)

		addr := cfg.Server.Addr
		if serveFlags.Addr != "" {
			addr = serveFlags.Addr
		}
		if !verbose {
			gin.SetMode(gin.ReleaseMode)
		}

		s := server.New(server.Config{
			Addr:           addr,
			AllowedOrigins: cfg.Server.AllowedOrigins,
			MaxUploadMB:    cfg.Server.MaxUploadMB,
			Framing:        framing,
			Channels:       channels,
		}, log.Logger)

		log.Info().Msg("API endpoints:")
		log.Info().Msg("  GET  /api/v1/health         - Health check")
		log.Info().Msg("  POST /api/v1/stego/hide     - Conceal a message (returns PNG)")
		log.Info().Msg("  POST /api/v1/stego/reveal   - Reveal a message (returns JSON)")
		log.Info().Msg("  POST /api/v1/stego/capacity - Report capacity (returns JSON)")

		if err := s.Run(cmd.Context()); err != nil {
			log.Fatal().Err(err).Msg("Server failed")
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveFlags.Addr, "addr", "", "Listen address (default server.addr from config)")
	serveFlags.codec.register(serveCmd)
}

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/lsbmail/lsbmail/internal/mailer"
	"github.com/lsbmail/lsbmail/pkg/stego"
)

// codecFlags are shared by every command that reads or writes a carrier.
type codecFlags struct {
	Framing string
	Alpha   bool
}

func (f *codecFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.Framing, "framing", "", "Payload framing: nul or length (default from config)")
	cmd.Flags().BoolVar(&f.Alpha, "alpha", false, "Use the alpha channel as a fourth carrier channel")
}

// resolve applies the flags over the loaded config.
func (f *codecFlags) resolve(cmd *cobra.Command) (stego.Framing, int) {
	framing := cfg.FramingValue()
	if f.Framing != "" {
		var err error
		framing, err = stego.FramingByName(f.Framing)
		if err != nil {
			log.Fatal().Err(err).Msg("Invalid framing")
		}
	}

	channels := cfg.Channels
	if cmd.Flags().Changed("alpha") {
		channels = stego.RGB
		if f.Alpha {
			channels = stego.RGBA
		}
	}
	return framing, channels
}

// readMessage returns the message text from -m or -f. A file path of "-"
// reads stdin.
func readMessage(msg, file string) string {
	if msg != "" && file != "" {
		log.Fatal().Msg("message and file flags cannot both be provided")
	}
	if file == "" {
		return msg
	}

	var data []byte
	var err error
	if file == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(file)
	}
	if err != nil {
		log.Fatal().Err(err).Str("file", file).Msg("Failed to read message file")
	}
	return string(data)
}

// outputPath returns out, or name inside the configured output directory,
// and makes sure its directory exists.
func outputPath(out, name string) string {
	if out == "" {
		out = filepath.Join(cfg.OutputDir, name)
	}
	if err := os.MkdirAll(filepath.Dir(out), 0755); err != nil {
		log.Fatal().Err(err).Msg("Failed to create output directory")
	}
	return out
}

// mailFlags select the sender for commands that deliver carriers.
type mailFlags struct {
	From     string
	Username string
}

func (f *mailFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.From, "from", "", "Sender address (default smtp.from, then smtp.username)")
	cmd.Flags().StringVar(&f.Username, "username", "", "SMTP username (default smtp.username)")
}

func (f *mailFlags) sender() (username, from string) {
	username = cfg.SMTP.Username
	if f.Username != "" {
		username = f.Username
	}
	from = f.From
	if from == "" {
		from = cfg.SMTP.From
	}
	if from == "" {
		from = username
	}
	return username, from
}

// passwordSecret looks for the SMTP password in the configured environment
// variable, then the configured file, then asks on the terminal.
func passwordSecret() mailer.Secret {
	var sources mailer.FirstSecret
	if cfg.SMTP.PasswordEnv != "" {
		sources = append(sources, mailer.EnvSecret(cfg.SMTP.PasswordEnv))
	}
	if cfg.SMTP.PasswordFile != "" {
		sources = append(sources, mailer.FileSecret(cfg.SMTP.PasswordFile))
	}
	sources = append(sources, mailer.PromptSecret{Prompt: "SMTP password: "})
	return sources
}

// sendCarrier mails the carrier at path to every recipient.
func sendCarrier(ctx context.Context, f *mailFlags, path string, to []string) error {
	username, from := f.sender()
	if from == "" {
		return fmt.Errorf("no sender address: set --from or smtp.username in the config")
	}

	attachment, err := mailer.AttachFile(path)
	if err != nil {
		return err
	}

	m := mailer.New(mailer.Config{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: username,
		Password: passwordSecret(),
		Timeout:  time.Duration(cfg.SMTP.TimeoutSec) * time.Second,
	}, mailer.WithLogger(log.Logger))

	return m.Send(ctx, &mailer.Message{
		From:        from,
		To:          to,
		Subject:     cfg.SMTP.Subject,
		Body:        cfg.SMTP.Body,
		Attachments: []mailer.Attachment{attachment},
	})
}

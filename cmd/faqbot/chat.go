package faqbot

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/igorsilveira/faqbot/pkg/chatapi"
	"github.com/igorsilveira/faqbot/pkg/config"
	"github.com/igorsilveira/faqbot/pkg/telemetry"
	"github.com/igorsilveira/faqbot/pkg/tui"
	"github.com/igorsilveira/faqbot/pkg/widget"
	"github.com/spf13/cobra"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive terminal chat session",
	RunE:  runChat,
}

var chatURL string

func init() {
	chatCmd.Flags().StringVar(&chatURL, "url", "", "API base URL (overrides client.base_url)")
}

// newClient builds the API client from config and the --url flag.
func newClient(cfg *config.Config) (*chatapi.Client, error) {
	timeout, err := cfg.Client.RequestTimeout()
	if err != nil {
		return nil, err
	}
	baseURL := cfg.Client.BaseURL
	if chatURL != "" {
		baseURL = chatURL
	}
	return chatapi.NewClient(baseURL, chatapi.WithTimeout(timeout)), nil
}

func runChat(cmd *cobra.Command, args []string) error {
	cfg := config.Current()

	client, err := newClient(cfg)
	if err != nil {
		return err
	}

	// The TUI owns the terminal, so logs go to a file.
	if err := config.EnsureDataDir(); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}
	logPath := filepath.Join(config.DataDir(), "chat.log")
	f, err := telemetry.OpenLogFile(logPath)
	if err != nil {
		return fmt.Errorf("opening chat log: %w", err)
	}
	defer f.Close()

	logger := telemetry.SetupLogger(cfg.Log.Level, cfg.Log.Format, f)
	logger.Info("chat session started", slog.String("base_url", client.BaseURL()))

	ctrl := widget.New(client, widget.WithLogger(logger))
	return tui.Run(cmd.Context(), ctrl)
}

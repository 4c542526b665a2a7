package faqbot

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/igorsilveira/faqbot/pkg/config"
	"github.com/igorsilveira/faqbot/pkg/telemetry"
	"github.com/igorsilveira/faqbot/pkg/widget"
	"github.com/spf13/cobra"
)

var askCmd = &cobra.Command{
	Use:   "ask <question...>",
	Short: "Ask a single question and print the answer",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAsk,
}

func init() {
	askCmd.Flags().StringVar(&chatURL, "url", "", "API base URL (overrides client.base_url)")
}

func runAsk(cmd *cobra.Command, args []string) error {
	cfg := config.Current()

	client, err := newClient(cfg)
	if err != nil {
		return err
	}

	logger := telemetry.SetupLogger(cfg.Log.Level, "text", os.Stderr)
	out := cmd.OutOrStdout()
	ctrl := widget.New(client,
		widget.WithLogger(logger),
		widget.WithObserver(func(ev widget.Event) {
			if ev.Kind == widget.EventMessageAppended {
				printMessage(out, ev.Message)
			}
		}),
	)

	switch ctrl.Submit(cmd.Context(), strings.Join(args, " ")) {
	case widget.StateFailed:
		return errors.New("question could not be answered")
	case widget.StateIdle:
		return errors.New("question is empty")
	}
	return nil
}

func printMessage(w io.Writer, m widget.Message) {
	who := "Bot"
	if m.Sender == widget.SenderUser {
		who = "You"
	}
	fmt.Fprintf(w, "[%s] %s: %s\n", m.Timestamp, who, m.Text)
	if badge := m.Badge(); badge != "" {
		fmt.Fprintf(w, "           %s\n", badge)
	}
}

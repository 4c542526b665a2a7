package faqbot

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/igorsilveira/faqbot/pkg/chatapi"
	"github.com/igorsilveira/faqbot/pkg/config"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check the health of the faqbot server",
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	printStatus(context.Background(), cmd.OutOrStdout(), localServerURL(config.Current()))
	return nil
}

func localServerURL(cfg *config.Config) string {
	return fmt.Sprintf("http://127.0.0.1:%d", cfg.Server.Port)
}

func printStatus(ctx context.Context, w io.Writer, serverURL string) {
	client := &http.Client{Timeout: 3 * time.Second}
	resp, err := client.Get(serverURL + "/healthz")
	if err != nil {
		fmt.Fprintln(w, "status: server is not running")
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		fmt.Fprintf(w, "status: server returned %s\n", resp.Status)
		return
	}
	fmt.Fprintln(w, "status: server is healthy")

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	api := chatapi.NewClient(serverURL + "/api")
	if h, err := api.Health(ctx); err == nil {
		if h.ChatbotInitialized {
			fmt.Fprintf(w, "faqs: %d loaded\n", h.FAQCount)
		} else {
			fmt.Fprintln(w, "faqs: not loaded (chat requests return 503)")
		}
	}
}

package faqbot

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"runtime"
	"time"

	"github.com/igorsilveira/faqbot/pkg/config"
	"github.com/igorsilveira/faqbot/pkg/faq"
	"github.com/igorsilveira/faqbot/pkg/store"
	"github.com/spf13/cobra"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Diagnose issues with the faqbot installation",
	RunE:  runDoctor,
}

type checkResult struct {
	name   string
	ok     bool
	detail string
}

func runDoctor(cmd *cobra.Command, args []string) error {
	fmt.Printf("faqbot doctor v%s\n", version)
	fmt.Printf("Platform: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	fmt.Printf("Go: %s\n\n", runtime.Version())

	checks := []checkResult{
		checkDataDir(),
		checkConfig(),
		checkFAQFile(),
		checkDatabase(),
		checkServerHealth(localServerURL(config.Current())),
	}

	passed, failed := 0, 0
	for _, c := range checks {
		status := "✓"
		if !c.ok {
			status = "✗"
			failed++
		} else {
			passed++
		}
		fmt.Printf("  %s %s: %s\n", status, c.name, c.detail)
	}

	fmt.Printf("\n%d passed, %d failed\n", passed, failed)

	if failed > 0 {
		return fmt.Errorf("%d checks failed", failed)
	}
	return nil
}

func checkDataDir() checkResult {
	dir := config.DataDir()
	info, err := os.Stat(dir)
	if err != nil {
		return checkResult{"Data directory", false, fmt.Sprintf("%s does not exist", dir)}
	}
	if !info.IsDir() {
		return checkResult{"Data directory", false, fmt.Sprintf("%s is not a directory", dir)}
	}
	return checkResult{"Data directory", true, dir}
}

func checkConfig() checkResult {
	path := cfgFile
	if path == "" {
		path = config.DefaultConfigPath()
	}
	if _, err := os.Stat(path); err != nil {
		return checkResult{"Config file", true, fmt.Sprintf("%s not found (using defaults)", path)}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return checkResult{"Config file", false, fmt.Sprintf("parse error: %s", err)}
	}
	return checkResult{"Config file", true, fmt.Sprintf("%s (port %d)", path, cfg.Server.Port)}
}

func checkFAQFile() checkResult {
	cfg := config.Current()
	faqs, err := faq.LoadFile(cfg.FAQ.Path)
	if err != nil {
		return checkResult{"FAQ file", false, err.Error()}
	}
	if _, err := faq.NewBot(faqs, faq.Options{Threshold: cfg.FAQ.Threshold}); err != nil {
		return checkResult{"FAQ file", false, err.Error()}
	}
	return checkResult{"FAQ file", true, fmt.Sprintf("%s (%d entries)", cfg.FAQ.Path, len(faqs))}
}

func checkDatabase() checkResult {
	cfg := config.Current()
	if !cfg.Store.Enabled {
		return checkResult{"Database", true, "query log disabled"}
	}
	if _, err := os.Stat(cfg.Store.DSN); err != nil {
		return checkResult{"Database", false, fmt.Sprintf("%s not found (will be created on first serve)", cfg.Store.DSN)}
	}

	db, err := store.Open(cfg.Store.DSN)
	if err != nil {
		return checkResult{"Database", false, err.Error()}
	}
	defer func() { _ = store.Close(db) }()

	ql, err := store.New(db)
	if err != nil {
		return checkResult{"Database", false, err.Error()}
	}
	stats, err := ql.Stats(context.Background(), store.Filter{})
	if err != nil {
		return checkResult{"Database", false, err.Error()}
	}
	return checkResult{"Database", true, fmt.Sprintf("%s (%d logged questions)", cfg.Store.DSN, stats.Total)}
}

func checkServerHealth(serverURL string) checkResult {
	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(serverURL + "/readyz")
	if err != nil {
		return checkResult{"Server", false, "not running"}
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return checkResult{"Server", true, "ready at " + serverURL}
	case http.StatusServiceUnavailable:
		return checkResult{"Server", false, "running without FAQs (chat returns 503)"}
	}
	return checkResult{"Server", false, fmt.Sprintf("unhealthy (status %d)", resp.StatusCode)}
}

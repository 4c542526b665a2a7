package faqbot

import (
	"fmt"

	"github.com/igorsilveira/faqbot/pkg/config"
	"github.com/spf13/cobra"
)

const version = "0.1.0"

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "faqbot",
	Short: "faqbot - an FAQ chat assistant with a web and terminal widget",
	Long:  "faqbot answers customer questions from an FAQ file. It serves a browser chat widget and JSON API, and ships a terminal chat client for the same API.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		path := cfgFile
		if path == "" {
			path = config.DefaultConfigPath()
		}
		if _, err := config.Load(path); err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		return nil
	},
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ~/.faqbot/faqbot.toml)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(doctorCmd)
	rootCmd.AddCommand(logCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version of faqbot",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("faqbot v%s\n", version)
	},
}

package main

import (
	"os"

	"github.com/igorsilveira/faqbot/cmd/faqbot"
)

func main() {
	if err := faqbot.Execute(); err != nil {
		os.Exit(1)
	}
}

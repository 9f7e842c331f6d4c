package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "livix",
	Short: "Livix roommate matching and chat service",
	Long: `Livix serves roommate compatibility scores, roommate likes and matches,
and per-profile chat conversations over an HTTP API.

Available commands:
  serve - Start the HTTP server
  token - Issue a JWT for a profile id
  score - Score two preference files against each other`,
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(serveCmd, tokenCmd, scoreCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// Version is stamped at build time via -ldflags.
var Version = "dev"

var rootCmd = &cobra.Command{
	Use:   "postit",
	Short: "Post It is a moderated micro-posting service",
	Long: `A micro-posting service with cookie-based sessions, short-lived access
tokens and a moderation queue for submitted posts.
Complete documentation is available at https://github.com/jmcleod/postit`,
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

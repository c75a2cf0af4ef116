package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command for the talkbridge application
var rootCmd = &cobra.Command{
	Use:   "talkbridge",
	Short: "Adds Nextcloud Talk meetings to calendar appointments",
	Long: `talkbridge connects calendar appointments to Nextcloud Talk: it creates a
Talk room for the appointment, writes a calendar event carrying per-attendee
security directives, and embeds the join link in the appointment body.

It can run as:
  - A standalone CLI tool
  - An MCP (Model Context Protocol) server for AI assistants`,
	SilenceUsage: true,
}

// version will be set by main
var version = "dev"

// SetVersion sets the version for the root command
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "talkbridge version %s\n" .Version}}`)

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(newLoginCmd())
	rootCmd.AddCommand(newLogoutCmd())
	rootCmd.AddCommand(newStatusCmd())
	rootCmd.AddCommand(newAttachCmd())
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newGenerateDocsCmd())
}

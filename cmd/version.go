package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the talkbridge version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("talkbridge version %s\n", version)
		},
	}
}

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ukydev/carwise/internal/export"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a chat's history as CSV",
	RunE: func(cmd *cobra.Command, args []string) error {
		chatID, _ := cmd.Flags().GetInt64("chat")
		out, _ := cmd.Flags().GetString("out")
		if chatID == 0 {
			return fmt.Errorf("--chat is required")
		}

		a, err := newApp(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer a.Close()

		writer := os.Stdout
		if out != "" {
			f, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("creating output file: %w", err)
			}
			defer f.Close()
			writer = f
		}

		if err := export.New(a.stores).WriteCSV(cmd.Context(), chatID, writer); err != nil {
			return err
		}
		if out != "" {
			fmt.Fprintf(os.Stderr, "exported to %s\n", out)
		}
		return nil
	},
}

func init() {
	exportCmd.Flags().Int64("chat", 0, "chat id to export")
	exportCmd.Flags().String("out", "", "output file path (default: stdout)")
}

package main

import (
	"gradepulse/internal/db"

	"github.com/spf13/cobra"
)

func newMigrateCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or inspect database migrations",
	}
	for _, command := range []struct{ use, short string }{
		{"up", "Apply all pending migrations"},
		{"down", "Roll back the latest migration"},
		{"status", "Show migration status"},
	} {
		cmd.AddCommand(&cobra.Command{
			Use:   command.use,
			Short: command.short,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				conn, err := root.connect()
				if err != nil {
					return err
				}
				defer conn.Close()
				return db.Migrate(cmd.Context(), conn, command.use)
			},
		})
	}
	return cmd
}

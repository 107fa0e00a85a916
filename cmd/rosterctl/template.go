package main

import (
	"fmt"
	"os"

	"gradepulse/internal/roster"

	"github.com/spf13/cobra"
)

func newTemplateCmd(root *rootOptions) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "template",
		Short: "Write the upload template for the active fields",
		RunE: func(cmd *cobra.Command, args []string) error {
			source, _, closeFn, err := root.fieldSource()
			if err != nil {
				return err
			}
			defer closeFn()

			active, err := source.ListActive(cmd.Context())
			if err != nil {
				return err
			}

			f, err := os.Create(out)
			if err != nil {
				return err
			}
			if err := roster.WriteTemplate(f, active); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s with %d columns\n", out, len(active))
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", roster.TemplateFilename, "Output path")
	cmd.Flags().BoolVar(&root.offline, "offline", false, "Use the default field set instead of the database")
	return cmd
}

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"gradepulse/internal/model"
	"gradepulse/internal/roster"

	"github.com/spf13/cobra"
)

func newPreviewCmd(root *rootOptions) *cobra.Command {
	var (
		file   string
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Decode and validate a roster file without saving it",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(file)
			if err != nil {
				return err
			}

			source, lookup, closeFn, err := root.fieldSource()
			if err != nil {
				return err
			}
			defer closeFn()

			preview, err := roster.NewImporter(source, lookup).Preview(cmd.Context(), filepath.Base(file), data)
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(preview)
			}
			return printPreview(cmd.OutOrStdout(), preview)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "Roster file (.xlsx, .xls, .csv or .tsv)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the full preview as JSON")
	cmd.Flags().BoolVar(&root.offline, "offline", false, "Use the default field set and skip change detection")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func printPreview(w io.Writer, p *model.Preview) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ROW\tSTUDENT ID\tNAME\tSTATUS\tVALID\tPROBLEMS")
	for _, r := range p.Rows {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%t\t%s\n",
			r.RowNumber, r.StudentID.String, r.FullName.String, r.Status, r.Valid, strings.Join(r.Errors, "; "))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(w, "\n%d rows, %d valid\n", p.TotalRows, p.ValidCount)
	if len(p.UnmappedHeaders) > 0 {
		fmt.Fprintf(w, "Unmapped headers: %s\n", strings.Join(p.UnmappedHeaders, ", "))
	}
	return nil
}

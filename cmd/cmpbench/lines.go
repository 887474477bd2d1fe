package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/weiihann/cmpbench/linecount"
)

func newLinesCmd() *cobra.Command {
	var (
		ext        string
		showFiles  bool
		outputJSON bool
	)

	cmd := &cobra.Command{
		Use:   "lines [dir]",
		Short: "Count logical lines of source files under a directory",
		Long: `Walk dir (default ".") and report an approximate logical line count
for every file ending in --ext. Doubled spaces and blank-line pairs are
collapsed once before counting, so the result is not a strict newline count.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := "."
			if len(args) == 1 {
				root = args[0]
			}

			res, err := linecount.Count(root, ext)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()

			if outputJSON {
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")

				return enc.Encode(res)
			}

			if showFiles {
				for _, f := range res.Files {
					fmt.Fprintf(w, "%8d  %s\n", f.Lines, f.Path)
				}
			}

			fmt.Fprintf(w, "Total lines of code: %d\n", res.Total)

			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&ext, "ext", "e", ".rs",
		"File name suffix to match")
	flags.BoolVar(&showFiles, "files", false,
		"Print per-file counts before the total")
	flags.BoolVar(&outputJSON, "json", false,
		"Output counts as JSON")

	return cmd
}

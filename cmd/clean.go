package cmd

import (
	"bytes"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/KaramelBytes/hostboard/internal/utils"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var (
	cleanOut   string
	cleanSheet string
)

var cleanCmd = &cobra.Command{
	Use:   "clean <file>",
	Short: "Run the cleaning pipeline and write the cleaned table",
	Long: `Clean reads a listings export, drops identifying columns, derives price per person,
host type and host tenure, and writes the result as CSV or XLSX (chosen by the -o extension).`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if cleanOut == "" {
			return fmt.Errorf("--out is required")
		}
		t, err := loadTable(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		var buf bytes.Buffer
		switch strings.ToLower(filepath.Ext(cleanOut)) {
		case ".csv":
			err = t.WriteCSV(&buf)
		case ".xlsx":
			err = t.WriteXLSX(&buf, cleanSheet)
		default:
			return fmt.Errorf("unsupported output format %q (use .csv or .xlsx)", filepath.Ext(cleanOut))
		}
		if err != nil {
			return err
		}
		if err := utils.SafeWriteFile(cleanOut, buf.Bytes()); err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		st := t.Stats()
		fmt.Fprintf(out, "✓ Wrote %s cleaned listings to %s\n", humanize.Comma(int64(st.Rows)), cleanOut)
		cols := make([]string, 0, len(st.Unknown))
		for c := range st.Unknown {
			cols = append(cols, c)
		}
		sort.Strings(cols)
		for _, c := range cols {
			fmt.Fprintf(out, "  %s: %s unknown\n", c, humanize.Comma(int64(st.Unknown[c])))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(cleanCmd)
	cleanCmd.Flags().StringVarP(&cleanOut, "out", "o", "", "output file (.csv or .xlsx)")
	cleanCmd.Flags().StringVar(&cleanSheet, "out-sheet", "listings", "sheet name for XLSX output")
}

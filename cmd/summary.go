package cmd

import (
	"fmt"
	"io"
	"net/url"
	"sort"
	"strconv"

	"github.com/KaramelBytes/hostboard/internal/analysis"
	"github.com/KaramelBytes/hostboard/internal/listings"
	"github.com/KaramelBytes/hostboard/internal/utils"
	"github.com/dustin/go-humanize"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var (
	sumNeighborhood string
	sumLo           string
	sumHi           string
	sumSuperhost    string
	sumHostType     string
	sumJSON         bool
)

// summaryReport is the --json output of the summary command.
type summaryReport struct {
	analysis.Views
	Total   int            `json:"total"`
	Unknown map[string]int `json:"unknown"`
}

var summaryCmd = &cobra.Command{
	Use:   "summary <file>",
	Short: "Print the dashboard views for a filter in the terminal",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := loadTable(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		q := url.Values{}
		q.Set("neighborhood", sumNeighborhood)
		q.Set("lo", sumLo)
		q.Set("hi", sumHi)
		q.Set("superhost", sumSuperhost)
		q.Set("host_type", sumHostType)
		p, err := analysis.ParseQuery(q, analysis.DefaultParams(t))
		if err != nil {
			return err
		}
		v := analysis.Compute(t, p)

		out := cmd.OutOrStdout()
		if sumJSON {
			b, err := utils.PrettyJSON(summaryReport{Views: v, Total: t.Len(), Unknown: t.Stats().Unknown})
			if err != nil {
				return err
			}
			fmt.Fprintln(out, string(b))
			return nil
		}
		return printSummary(out, t, v)
	},
}

func init() {
	rootCmd.AddCommand(summaryCmd)
	summaryCmd.Flags().StringVar(&sumNeighborhood, "neighborhood", "", "neighborhood to show (default All)")
	summaryCmd.Flags().StringVar(&sumLo, "lo", "", "lowest price per person (default: lowest observed)")
	summaryCmd.Flags().StringVar(&sumHi, "hi", "", "highest price per person (default: mean + 3 std)")
	summaryCmd.Flags().StringVar(&sumSuperhost, "superhost", "", "select superhost status: true, false or all")
	summaryCmd.Flags().StringVar(&sumHostType, "host-type", "", "select a host type: 1, 2-5 or >5")
	summaryCmd.Flags().BoolVar(&sumJSON, "json", false, "print views as JSON")
}

func printSummary(w io.Writer, t *listings.Table, v analysis.Views) error {
	fmt.Fprint(w, pterm.DefaultSection.Sprint("Filter"))
	fmt.Fprintf(w, "Neighborhood: %s\n", v.Params.Neighborhood)
	fmt.Fprintf(w, "Price per person: $%.2f to $%.2f (default $%.2f to $%.2f)\n",
		v.Params.Range.Lo, v.Params.Range.Hi, v.Default.Lo, v.Default.Hi)
	if v.Params.Superhost.Known() {
		fmt.Fprintf(w, "Superhost selection: %s\n", t.FlagStyle().Format(listings.ColSuperhost, v.Params.Superhost))
	}
	if v.Params.HostType.Known() {
		fmt.Fprintf(w, "Host type selection: %s\n", v.Params.HostType)
	}
	fmt.Fprintf(w, "%s of %s listings match\n", humanize.Comma(int64(v.Rows)), humanize.Comma(int64(t.Len())))
	if v.Rows == 0 {
		fmt.Fprintln(w, "⚠ Warning: no listings match the current filters")
		return nil
	}

	fmt.Fprint(w, pterm.DefaultSection.Sprint("Host type and superhost"))
	data := pterm.TableData{{"Host Type", "Superhost", "Listings"}}
	totals := make(map[listings.HostType]int)
	for _, c := range v.HostTypeCounts {
		data = append(data, []string{string(c.HostType), c.Label, humanize.Comma(int64(c.Count))})
		totals[c.HostType] += c.Count
	}
	if err := renderTable(w, data); err != nil {
		return err
	}
	var bars pterm.Bars
	for _, ht := range listings.HostTypes {
		if n, ok := totals[ht]; ok {
			bars = append(bars, pterm.Bar{Label: string(ht), Value: n})
		}
	}
	if len(bars) > 0 {
		s, err := pterm.DefaultBarChart.WithHorizontal().WithShowValue().WithBars(bars).Srender()
		if err != nil {
			return fmt.Errorf("render bar chart: %w", err)
		}
		fmt.Fprintln(w, s)
	}

	fmt.Fprint(w, pterm.DefaultSection.Sprint("Distinct hosts by tenure"))
	if len(v.Tenure) == 0 {
		fmt.Fprintln(w, "No hosts with a known tenure")
	} else {
		grid := make(map[int]map[listings.HostType]int)
		for _, pt := range v.Tenure {
			if grid[pt.Tenure] == nil {
				grid[pt.Tenure] = make(map[listings.HostType]int)
			}
			grid[pt.Tenure][pt.HostType] = pt.Hosts
		}
		tenures := make([]int, 0, len(grid))
		for k := range grid {
			tenures = append(tenures, k)
		}
		sort.Ints(tenures)
		header := []string{"Tenure (years)"}
		for _, ht := range listings.HostTypes {
			header = append(header, string(ht))
		}
		data := pterm.TableData{header}
		for _, y := range tenures {
			row := []string{strconv.Itoa(y)}
			for _, ht := range listings.HostTypes {
				row = append(row, strconv.Itoa(grid[y][ht]))
			}
			data = append(data, row)
		}
		if err := renderTable(w, data); err != nil {
			return err
		}
	}

	fmt.Fprint(w, pterm.DefaultSection.Sprint("Review score vs price per person"))
	if len(v.Scatter) == 0 {
		fmt.Fprintln(w, "No listings with both a review score and a host type")
		return nil
	}
	type agg struct {
		n          int
		score, ppp float64
	}
	byType := make(map[listings.HostType]*agg)
	for _, sp := range v.Scatter {
		a := byType[sp.HostType]
		if a == nil {
			a = &agg{}
			byType[sp.HostType] = a
		}
		a.n++
		a.score += sp.ReviewScore
		a.ppp += sp.PricePerPerson
	}
	data = pterm.TableData{{"Host Type", "Listings", "Mean Review Score", "Mean Price per Person"}}
	for _, ht := range listings.HostTypes {
		a := byType[ht]
		if a == nil {
			continue
		}
		data = append(data, []string{
			string(ht),
			humanize.Comma(int64(a.n)),
			fmt.Sprintf("%.2f", a.score/float64(a.n)),
			fmt.Sprintf("$%.2f", a.ppp/float64(a.n)),
		})
	}
	return renderTable(w, data)
}

func renderTable(w io.Writer, data pterm.TableData) error {
	s, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return fmt.Errorf("render table: %w", err)
	}
	fmt.Fprintln(w, s)
	return nil
}

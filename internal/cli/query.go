package cli

import (
	"fmt"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/neo/internal/filters"
	"github.com/mesh-intelligence/neo/internal/write"
)

// defaultPrintLimit bounds printed results when --limit is not given.
const defaultPrintLimit = 10

type queryFlags struct {
	date      string
	startDate string
	endDate   string

	minDistance float64
	maxDistance float64
	minVelocity float64
	maxVelocity float64
	minDiameter float64
	maxDiameter float64

	hazardous    bool
	notHazardous bool

	limit   int
	outfile string
}

func newQueryCmd(a *app) *cobra.Command {
	var f queryFlags
	cmd := &cobra.Command{
		Use:   "query",
		Short: "Query close approaches matching every given criterion",
		Long: "Query close approaches matching every given criterion. Results are\n" +
			"printed, or written to --outfile as .csv, .json, .jsonl, or .db.",
		Example: "  neo query --date 2020-01-01\n" +
			"  neo query --start-date 2020-01-01 --max-distance 0.1 --hazardous --limit 5\n" +
			"  neo query --min-diameter 1 --outfile big.csv",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runQuery(cmd, f)
		},
	}

	fs := cmd.Flags()
	fs.StringVarP(&f.date, "date", "d", "", "only approaches on this date (YYYY-MM-DD)")
	fs.StringVarP(&f.startDate, "start-date", "s", "", "only approaches on or after this date (YYYY-MM-DD)")
	fs.StringVarP(&f.endDate, "end-date", "e", "", "only approaches on or before this date (YYYY-MM-DD)")
	fs.Float64Var(&f.minDistance, "min-distance", 0, "minimum approach distance in au")
	fs.Float64Var(&f.maxDistance, "max-distance", 0, "maximum approach distance in au")
	fs.Float64Var(&f.minVelocity, "min-velocity", 0, "minimum relative velocity in km/s")
	fs.Float64Var(&f.maxVelocity, "max-velocity", 0, "maximum relative velocity in km/s")
	fs.Float64Var(&f.minDiameter, "min-diameter", 0, "minimum NEO diameter in km")
	fs.Float64Var(&f.maxDiameter, "max-diameter", 0, "maximum NEO diameter in km")
	fs.BoolVar(&f.hazardous, "hazardous", false, "only potentially hazardous NEOs")
	fs.BoolVar(&f.notHazardous, "not-hazardous", false, "only NEOs that are not potentially hazardous")
	fs.IntVarP(&f.limit, "limit", "l", 0, "maximum number of results, 0 for all (default 10 when printing)")
	fs.StringVarP(&f.outfile, "outfile", "o", "", "write results to this file instead of printing")

	return cmd
}

// criteria builds query criteria from the flags that were set. A flag left
// at its default adds no criterion, so --max-distance 0 is still a filter.
func (f queryFlags) criteria(cmd *cobra.Command) (filters.Criteria, error) {
	var c filters.Criteria
	changed := cmd.Flags().Changed

	dates := []struct {
		flag string
		raw  string
		dst  **time.Time
	}{
		{"date", f.date, &c.Date},
		{"start-date", f.startDate, &c.StartDate},
		{"end-date", f.endDate, &c.EndDate},
	}
	for _, d := range dates {
		if !changed(d.flag) {
			continue
		}
		t, err := filters.ParseDate(d.raw)
		if err != nil {
			return c, err
		}
		*d.dst = &t
	}

	nums := []struct {
		flag string
		v    float64
		dst  **float64
	}{
		{"min-distance", f.minDistance, &c.DistanceMin},
		{"max-distance", f.maxDistance, &c.DistanceMax},
		{"min-velocity", f.minVelocity, &c.VelocityMin},
		{"max-velocity", f.maxVelocity, &c.VelocityMax},
		{"min-diameter", f.minDiameter, &c.DiameterMin},
		{"max-diameter", f.maxDiameter, &c.DiameterMax},
	}
	for _, n := range nums {
		if changed(n.flag) {
			v := n.v
			*n.dst = &v
		}
	}

	switch {
	case changed("hazardous") && changed("not-hazardous"):
		return c, usageErrorf("--hazardous and --not-hazardous are mutually exclusive")
	case changed("hazardous"):
		c.Hazardous = &f.hazardous
	case changed("not-hazardous"):
		hazardous := !f.notHazardous
		c.Hazardous = &hazardous
	}

	return c, c.Validate()
}

func (a *app) runQuery(cmd *cobra.Command, f queryFlags) error {
	crit, err := f.criteria(cmd)
	if err != nil {
		return err
	}
	if f.limit < 0 {
		return usageErrorf("--limit must not be negative, got %d", f.limit)
	}
	limit := f.limit
	if !cmd.Flags().Changed("limit") && f.outfile == "" {
		limit = defaultPrintLimit
	}

	db, err := a.database()
	if err != nil {
		return err
	}
	results := filters.Limit(db.Query(filters.Create(crit)...), limit)

	out := cmd.OutOrStdout()
	if f.outfile != "" {
		n, err := write.ToFile(cmd.Context(), f.outfile, results, write.Meta{Criteria: crit.String(), Limit: limit})
		if err != nil {
			return errors.Wrapf(err, "write %s", f.outfile)
		}
		pterm.Fprintln(out, pterm.Green(fmt.Sprintf("Wrote %d close approaches to %s", n, f.outfile)))
		return nil
	}

	n := 0
	for ca := range results {
		pterm.Fprintln(out, ca.String())
		n++
	}
	if n == 0 {
		pterm.Fprintln(out, "No matching close approaches.")
	}
	return nil
}

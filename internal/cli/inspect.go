package cli

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/neo/pkg/types"
)

const noMatchingNEO = "No matching NEOs exist in the database."

type inspectFlags struct {
	pdes    string
	name    string
	verbose bool
}

func newInspectCmd(a *app) *cobra.Command {
	var f inspectFlags
	cmd := &cobra.Command{
		Use:   "inspect (--pdes DESIGNATION | --name NAME)",
		Short: "Look up one NEO by primary designation or IAU name",
		Example: "  neo inspect --pdes 433\n" +
			"  neo inspect --name Apophis --verbose",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runInspect(cmd, f)
		},
	}
	cmd.Flags().StringVar(&f.pdes, "pdes", "", "primary designation, e.g. 433")
	cmd.Flags().StringVar(&f.name, "name", "", "IAU name, e.g. Eros")
	cmd.Flags().BoolVarP(&f.verbose, "verbose", "v", false, "also list the NEO's close approaches")
	return cmd
}

func (a *app) runInspect(cmd *cobra.Command, f inspectFlags) error {
	pdes, name := cmd.Flags().Changed("pdes"), cmd.Flags().Changed("name")
	if pdes == name {
		return usageErrorf("inspect needs exactly one of --pdes or --name")
	}

	db, err := a.database()
	if err != nil {
		return err
	}

	var (
		neo *types.NearEarthObject
		ok  bool
	)
	if pdes {
		neo, ok = db.GetByDesignation(f.pdes)
	} else {
		neo, ok = db.GetByName(f.name)
	}

	out := cmd.OutOrStdout()
	if !ok {
		pterm.Fprintln(out, noMatchingNEO)
		return nil
	}

	pterm.Fprintln(out, neo.String())
	if f.verbose {
		for _, ca := range neo.Approaches {
			pterm.Fprintln(out, "- "+ca.String())
		}
	}
	return nil
}

package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/kballard/go-shellquote"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/neo/internal/logger"
)

const shellPrompt = "neo> "

const shellHelp = `Commands:
  inspect (--pdes DESIGNATION | --name NAME) [--verbose]
  query [--date D] [--start-date D] [--end-date D] [--min-distance AU] [--max-distance AU]
        [--min-velocity KMS] [--max-velocity KMS] [--min-diameter KM] [--max-diameter KM]
        [--hazardous | --not-hazardous] [--limit N] [--outfile PATH]
  help
  exit | quit`

func newShellCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Run inspect and query commands interactively against one loaded database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runShell(cmd)
		},
	}
}

// runShell loads the database once, then reads one command per line until
// exit, quit, or end of input. A failing command prints its error and the
// loop goes on.
func (a *app) runShell(cmd *cobra.Command) error {
	db, err := a.database()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	stats := db.Stats()
	pterm.Fprintln(out, pterm.LightCyan("Loaded"),
		fmt.Sprintf(" %d NEOs and %d close approaches. Type help for commands.", stats.NEOs, stats.Approaches))

	scanner := bufio.NewScanner(cmd.InOrStdin())
	for {
		pterm.Fprint(out, pterm.LightCyan(shellPrompt))
		if !scanner.Scan() {
			pterm.Fprintln(out)
			return scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		words, err := shellquote.Split(line)
		if err != nil {
			pterm.Fprintln(out, pterm.Red("error: "+err.Error()))
			continue
		}

		switch words[0] {
		case "exit", "quit":
			return nil
		case "help":
			pterm.Fprintln(out, shellHelp)
		case "inspect":
			a.runShellCommand(cmd, newInspectCmd(a), words[1:], out)
		case "query":
			a.runShellCommand(cmd, newQueryCmd(a), words[1:], out)
		default:
			pterm.Fprintln(out, pterm.Red("unknown command "+words[0]+"; type help for commands"))
		}
	}
}

// runShellCommand executes a freshly built subcommand so flag state never
// leaks between lines.
func (a *app) runShellCommand(parent, sub *cobra.Command, args []string, out io.Writer) {
	sub.SetArgs(args)
	sub.SetIn(parent.InOrStdin())
	sub.SetOut(out)
	sub.SetErr(out)
	sub.SilenceUsage = true
	sub.SilenceErrors = true

	if err := sub.ExecuteContext(parent.Context()); err != nil {
		logger.Logger.Debugw("shell command failed", "command", sub.Name(), "error", err)
		pterm.Fprintln(out, pterm.Red("error: "+err.Error()))
	}
}

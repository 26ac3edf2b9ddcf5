package cli

import (
	"errors"
	"io"

	flag "github.com/spf13/pflag"

	"ora/internal/store"
)

var errTitleRequired = errors.New("title is required")

func cmdCreate(out io.Writer, errOut io.Writer, st *store.Store, args []string) int {
	if hasHelpFlag(args) {
		printCreateHelp(out)

		return 0
	}

	flagSet := flag.NewFlagSet("create", flag.ContinueOnError)
	flagSet.SetOutput(io.Discard)

	title := flagSet.StringP("title", "t", "", "Loop title")
	phase := flagSet.String("phase", "", "Phase the loop belongs to")
	workstream := flagSet.String("workstream", "", "Workstream the loop belongs to")
	purpose := flagSet.String("purpose", "", "Purpose section text")

	parseErr := flagSet.Parse(args)
	if parseErr != nil {
		fprintln(errOut, "error:", parseErr)

		return 1
	}

	if *title == "" {
		fprintln(errOut, "error:", errTitleRequired)

		return 1
	}

	id, path, err := st.CreateLoop(store.CreateLoopInput{
		Title:      *title,
		Phase:      *phase,
		Workstream: *workstream,
		Purpose:    *purpose,
	})
	if err != nil {
		fprintln(errOut, "error:", err)

		return 1
	}

	fprintln(out, id)
	fprintln(out, "created", path)

	return 0
}

func printCreateHelp(out io.Writer) {
	fprintln(out, "Usage: ora create -t <title> [--phase <phase>] [--workstream <ws>] [--purpose <text>]")
	fprintln(out)
	fprintln(out, "Creates a loop document with a minted uuid and the canonical section skeleton.")
}

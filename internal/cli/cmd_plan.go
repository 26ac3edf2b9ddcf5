package cli

import (
	"errors"
	"io"
	"strings"

	flag "github.com/spf13/pflag"

	"ora/internal/plan"
	"ora/internal/store"
)

var (
	errPlanSubcommand  = errors.New("plan subcommand required (list, complete, reject, promote)")
	errPromoteTarget   = errors.New("promote requires --to <loop-id>")
	errPlanDescription = errors.New("plan task description is required")
)

func cmdPlan(out io.Writer, errOut io.Writer, st *store.Store, args []string) int {
	if len(args) == 0 || hasHelpFlag(args) {
		printPlanHelp(out)

		if len(args) == 0 {
			return 1
		}

		return 0
	}

	sub := args[0]
	subArgs := args[1:]

	switch sub {
	case "list":
		return cmdPlanList(out, errOut, st)
	case "complete":
		return cmdPlanSetStatus(out, errOut, st, subArgs, plan.StatusDone)
	case "reject":
		return cmdPlanSetStatus(out, errOut, st, subArgs, plan.StatusRejected)
	case "promote":
		return cmdPlanPromote(out, errOut, st, subArgs)
	default:
		fprintln(errOut, "error:", errPlanSubcommand)

		return 1
	}
}

func cmdPlanList(out io.Writer, errOut io.Writer, st *store.Store) int {
	tasks, _, err := st.ReadPlan()
	if err != nil {
		fprintln(errOut, "error:", err)

		return 1
	}

	section := ""

	for _, task := range tasks {
		if task.Section != section {
			section = task.Section
			fprintf(out, "%s:\n", section)
		}

		checkbox := " "
		if task.Status == plan.StatusDone {
			checkbox = "x"
		}

		fprintf(out, "  [%s] %s (%s)", checkbox, firstLine(task.Description), task.Status)

		if task.PromotedTo != "" {
			fprintf(out, " -> %s", task.PromotedTo)
		}

		fprintln(out)
	}

	return 0
}

func cmdPlanSetStatus(out io.Writer, errOut io.Writer, st *store.Store, args []string, status string) int {
	if len(args) < 1 {
		fprintln(errOut, "error:", errPlanDescription)

		return 1
	}

	description := strings.Join(args, " ")

	err := st.SetPlanTaskStatus(description, status)
	if err != nil {
		fprintln(errOut, "error:", err)

		return 1
	}

	fprintf(out, "%s: %q\n", status, description)

	return 0
}

func cmdPlanPromote(out io.Writer, errOut io.Writer, st *store.Store, args []string) int {
	flagSet := flag.NewFlagSet("promote", flag.ContinueOnError)
	flagSet.SetOutput(io.Discard)

	target := flagSet.String("to", "", "Loop id to promote the task into")

	parseErr := flagSet.Parse(args)
	if parseErr != nil {
		fprintln(errOut, "error:", parseErr)

		return 1
	}

	if *target == "" {
		fprintln(errOut, "error:", errPromoteTarget)

		return 1
	}

	positional := flagSet.Args()
	if len(positional) < 1 {
		fprintln(errOut, "error:", errPlanDescription)

		return 1
	}

	description := strings.Join(positional, " ")

	err := st.PromotePlanTask(description, *target)
	if err != nil {
		fprintln(errOut, "error:", err)

		return 1
	}

	fprintf(out, "promoted %q -> %s\n", description, *target)

	return 0
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")

	return line
}

func printPlanHelp(out io.Writer) {
	fprintln(out, "Usage: ora plan <subcommand>")
	fprintln(out)
	fprintln(out, "Subcommands:")
	fprintln(out, "  list                          Show plan tasks by section")
	fprintln(out, "  complete <description>        Mark a plan task done")
	fprintln(out, "  reject <description>          Reject a plan task (dropped on rewrite)")
	fprintln(out, "  promote <description> --to <loop-id>")
	fprintln(out, "                                Promote a plan task into a loop")
}

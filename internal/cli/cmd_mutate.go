package cli

import (
	"errors"
	"io"
	"strings"

	flag "github.com/spf13/pflag"

	"ora/internal/artefact"
	"ora/internal/store"
)

var (
	errDescriptionRequired = errors.New("task description is required")
	errLogTextRequired     = errors.New("log text is required")
)

func cmdComplete(out io.Writer, errOut io.Writer, st *store.Store, args []string) int {
	if hasHelpFlag(args) {
		fprintln(out, "Usage: ora complete <id> <description>")

		return 0
	}

	if len(args) < 1 {
		fprintln(errOut, "error:", errIDRequired)

		return 1
	}

	if len(args) < 2 {
		fprintln(errOut, "error:", errDescriptionRequired)

		return 1
	}

	id := args[0]
	description := strings.Join(args[1:], " ")

	err := st.CompleteTask(id, description)
	if err != nil {
		fprintln(errOut, "error:", err)

		return 1
	}

	fprintf(out, "completed %q in %s\n", description, id)

	return 0
}

func cmdLog(out io.Writer, errOut io.Writer, st *store.Store, args []string) int {
	if hasHelpFlag(args) {
		fprintln(out, "Usage: ora log <id> <text>")

		return 0
	}

	if len(args) < 1 {
		fprintln(errOut, "error:", errIDRequired)

		return 1
	}

	if len(args) < 2 {
		fprintln(errOut, "error:", errLogTextRequired)

		return 1
	}

	id := args[0]
	text := strings.Join(args[1:], " ")

	err := st.AppendExecutionLog(id, text)
	if err != nil {
		fprintln(errOut, "error:", err)

		return 1
	}

	fprintln(out, "logged to", id)

	return 0
}

func cmdTrace(out io.Writer, errOut io.Writer, st *store.Store, args []string) int {
	if hasHelpFlag(args) {
		fprintln(out, "Usage: ora trace <id> <description> [--status completed|executed] [--executor user|system] [--output <text>]")

		return 0
	}

	flagSet := flag.NewFlagSet("trace", flag.ContinueOnError)
	flagSet.SetOutput(io.Discard)

	status := flagSet.String("status", "completed", "Trace status (completed or executed)")
	executor := flagSet.String("executor", "system", "Who performed the action (user or system)")
	output := flagSet.String("output", "", "Optional output captured with the trace")

	parseErr := flagSet.Parse(args)
	if parseErr != nil {
		fprintln(errOut, "error:", parseErr)

		return 1
	}

	positional := flagSet.Args()
	if len(positional) < 1 {
		fprintln(errOut, "error:", errIDRequired)

		return 1
	}

	if len(positional) < 2 {
		fprintln(errOut, "error:", errDescriptionRequired)

		return 1
	}

	id := positional[0]
	description := strings.Join(positional[1:], " ")

	err := st.AppendMemoryTrace(id, artefact.MemoryTraceEntry{
		Description: description,
		Status:      *status,
		Executor:    *executor,
		Output:      *output,
	})
	if err != nil {
		fprintln(errOut, "error:", err)

		return 1
	}

	fprintln(out, "trace appended to", id)

	return 0
}

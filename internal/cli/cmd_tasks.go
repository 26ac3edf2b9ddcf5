package cli

import (
	"io"

	"ora/internal/store"
)

func cmdTasks(out io.Writer, errOut io.Writer, st *store.Store, args []string) int {
	if hasHelpFlag(args) {
		fprintln(out, "Usage: ora tasks <id>")
		fprintln(out)
		fprintln(out, "Lists the checklist tasks of a loop in document order.")

		return 0
	}

	if len(args) < 1 {
		fprintln(errOut, "error:", errIDRequired)

		return 1
	}

	art, err := st.Parse(args[0])
	if err != nil {
		fprintln(errOut, "error:", err)

		return 1
	}

	for _, msg := range art.Validation.Errors {
		fprintln(errOut, "warning:", msg)
	}

	for _, task := range art.Tasks {
		checkbox := " "
		if task.IsComplete {
			checkbox = "x"
		}

		fprintf(out, "[%s] %s", checkbox, task.Description)

		if task.Origin != "" {
			fprintf(out, "  (origin: %s)", task.Origin)
		}

		if len(task.MemoryTraces) > 0 {
			fprintf(out, "  (%d traces)", len(task.MemoryTraces))
		}

		fprintln(out)
	}

	return 0
}

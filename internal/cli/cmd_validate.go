package cli

import (
	"errors"
	"io"

	flag "github.com/spf13/pflag"

	"ora/internal/artefact"
	"ora/internal/store"
)

var errUnknownKind = errors.New("unknown document kind (want loop or phase)")

func cmdValidate(out io.Writer, errOut io.Writer, st *store.Store, args []string) int {
	if hasHelpFlag(args) {
		fprintln(out, "Usage: ora validate <id> [--kind loop|phase]")

		return 0
	}

	flagSet := flag.NewFlagSet("validate", flag.ContinueOnError)
	flagSet.SetOutput(io.Discard)

	kind := flagSet.String("kind", "loop", "Document kind (loop or phase)")

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

	var required []string

	switch *kind {
	case "loop":
		required = artefact.LoopRequiredSections()
	case "phase":
		required = artefact.PhaseRequiredSections()
	default:
		fprintln(errOut, "error:", errUnknownKind)

		return 1
	}

	raw, err := st.Read(positional[0])
	if err != nil {
		fprintln(errOut, "error:", err)

		return 1
	}

	_, body := artefact.Decode(raw)
	result := artefact.Validate(body, required)

	if result.IsValid {
		fprintln(out, "valid")

		return 0
	}

	for _, msg := range result.Errors {
		fprintln(out, msg)
	}

	return 1
}

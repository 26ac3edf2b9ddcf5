package cli

import (
	"context"
	"io"
	"path/filepath"
	"strings"

	flag "github.com/spf13/pflag"

	"ora/internal/index"
)

// indexFileName is the sqlite index stored alongside the loop documents.
const indexFileName = ".ora-index.db"

func indexPath(loopDir string) string {
	return filepath.Join(loopDir, indexFileName)
}

func cmdLs(out io.Writer, errOut io.Writer, loopDir string, args []string) int {
	if hasHelpFlag(args) {
		fprintln(out, "Usage: ora ls [--workstream <ws>] [--status <status>]")

		return 0
	}

	flagSet := flag.NewFlagSet("ls", flag.ContinueOnError)
	flagSet.SetOutput(io.Discard)

	workstream := flagSet.String("workstream", "", "Filter by workstream")
	status := flagSet.String("status", "", "Filter by status")

	parseErr := flagSet.Parse(args)
	if parseErr != nil {
		fprintln(errOut, "error:", parseErr)

		return 1
	}

	ctx := context.Background()

	ix, err := index.Open(ctx, indexPath(loopDir))
	if err != nil {
		fprintln(errOut, "error:", err)

		return 1
	}

	defer func() { _ = ix.Close() }()

	entries, err := ix.Query(ctx, index.QueryOptions{
		Workstream: *workstream,
		Status:     *status,
	})
	if err != nil {
		fprintln(errOut, "error:", err)

		return 1
	}

	if len(entries) == 0 {
		fprintln(out, "no artefacts indexed (run: ora reindex)")

		return 0
	}

	for _, entry := range entries {
		fprintf(out, "%s  %-12s %-12s %s", entry.UUID, entry.Phase, entry.Status, entry.Title)

		if len(entry.Tags) > 0 {
			fprintf(out, "  [%s]", strings.Join(entry.Tags, ", "))
		}

		fprintln(out)
	}

	return 0
}

func cmdReindex(out io.Writer, errOut io.Writer, loopDir string, args []string) int {
	if hasHelpFlag(args) {
		fprintln(out, "Usage: ora reindex")

		return 0
	}

	ctx := context.Background()

	ix, err := index.Open(ctx, indexPath(loopDir))
	if err != nil {
		fprintln(errOut, "error:", err)

		return 1
	}

	defer func() { _ = ix.Close() }()

	count, err := ix.Rebuild(ctx, loopDir)
	if err != nil {
		fprintln(errOut, "error:", err)

		return 1
	}

	fprintf(out, "indexed %d artefacts\n", count)

	return 0
}

// Package cli implements the ora command line interface: dispatch, config
// loading, and the commands that drive the artefact engine.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"ora/internal/store"
)

const helpFlag = "--help"

var (
	errFlagRequiresArg = errors.New("flag requires an argument")
	errIDRequired      = errors.New("artefact id is required")
)

// globalFlags holds options parsed before the command name.
type globalFlags struct {
	workDir    string
	configPath string
	loopDir    string
	remaining  []string
}

// Run is the main entry point. Returns the process exit code.
func Run(_ io.Reader, out io.Writer, errOut io.Writer, args []string, env []string) int {
	if len(args) < 2 {
		printUsage(out)

		return 0
	}

	flags, err := parseGlobalFlags(args[1:])
	if err != nil {
		fprintln(errOut, "error:", err)

		return 1
	}

	workDir := flags.workDir
	if workDir == "" {
		workDir, err = os.Getwd()
		if err != nil {
			fprintln(errOut, "error: cannot get working directory:", err)

			return 1
		}
	}

	overrides := Config{LoopDir: flags.loopDir}

	cfg, _, err := LoadConfig(workDir, flags.configPath, overrides, env)
	if err != nil {
		fprintln(errOut, "error:", err)

		return 1
	}

	loopDir := cfg.LoopDir
	if !filepath.IsAbs(loopDir) {
		loopDir = filepath.Join(workDir, loopDir)
	}

	planFile := cfg.PlanFile
	if !filepath.IsAbs(planFile) {
		planFile = filepath.Join(workDir, planFile)
	}

	if len(flags.remaining) == 0 {
		printUsage(out)

		return 0
	}

	cmd := flags.remaining[0]
	cmdArgs := flags.remaining[1:]

	if cmd == "-h" || cmd == helpFlag || cmd == "help" {
		printUsage(out)

		return 0
	}

	st := store.New(loopDir, planFile)

	switch cmd {
	case "create":
		return cmdCreate(out, errOut, st, cmdArgs)
	case "tasks":
		return cmdTasks(out, errOut, st, cmdArgs)
	case "complete":
		return cmdComplete(out, errOut, st, cmdArgs)
	case "log":
		return cmdLog(out, errOut, st, cmdArgs)
	case "trace":
		return cmdTrace(out, errOut, st, cmdArgs)
	case "validate":
		return cmdValidate(out, errOut, st, cmdArgs)
	case "ls":
		return cmdLs(out, errOut, loopDir, cmdArgs)
	case "reindex":
		return cmdReindex(out, errOut, loopDir, cmdArgs)
	case "plan":
		return cmdPlan(out, errOut, st, cmdArgs)
	default:
		fprintln(errOut, "error: unknown command:", cmd)
		printUsage(errOut)

		return 1
	}
}

// parseGlobalFlags consumes leading global flags, leaving the command and its
// arguments in remaining.
func parseGlobalFlags(args []string) (globalFlags, error) {
	var flags globalFlags

	idx := 0
	for idx < len(args) {
		arg := args[idx]

		switch arg {
		case "--dir":
			value, consumed, err := flagValue(args, idx, arg)
			if err != nil {
				return globalFlags{}, err
			}

			flags.workDir = value
			idx += consumed
		case "--config", "-c":
			value, consumed, err := flagValue(args, idx, arg)
			if err != nil {
				return globalFlags{}, err
			}

			flags.configPath = value
			idx += consumed
		case "--loop-dir":
			value, consumed, err := flagValue(args, idx, arg)
			if err != nil {
				return globalFlags{}, err
			}

			flags.loopDir = value
			idx += consumed
		default:
			flags.remaining = args[idx:]

			return flags, nil
		}
	}

	return flags, nil
}

func flagValue(args []string, idx int, name string) (string, int, error) {
	if idx+1 >= len(args) {
		return "", 0, fmt.Errorf("%w: %s", errFlagRequiresArg, name)
	}

	return args[idx+1], 2, nil
}

func printUsage(out io.Writer) {
	fprintln(out, "Usage: ora [global flags] <command> [args]")
	fprintln(out)
	fprintln(out, "Commands:")
	fprintln(out, "  create -t <title> [flags]       Create a new loop document")
	fprintln(out, "  tasks <id>                      List checklist tasks of a loop")
	fprintln(out, "  complete <id> <description>     Mark a checklist task complete")
	fprintln(out, "  log <id> <text>                 Append an execution log entry")
	fprintln(out, "  trace <id> <description>        Append a memory trace entry")
	fprintln(out, "  validate <id> [--kind loop]     Check required sections")
	fprintln(out, "  ls [flags]                      List indexed artefacts")
	fprintln(out, "  reindex                         Rebuild the artefact index")
	fprintln(out, "  plan <list|complete|reject|promote>")
	fprintln(out, "                                  Operate on the workstream plan")
	fprintln(out)
	fprintln(out, "Global flags:")
	fprintln(out, "  --dir <path>       Working directory (default: cwd)")
	fprintln(out, "  --config <path>    Config file (default: .ora.json)")
	fprintln(out, "  --loop-dir <path>  Loop directory override")
}

func hasHelpFlag(args []string) bool {
	for _, arg := range args {
		if arg == "-h" || arg == helpFlag {
			return true
		}
	}

	return false
}

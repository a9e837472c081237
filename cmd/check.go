package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/cottand/dynsafe/defs"
	"github.com/cottand/dynsafe/diag"
	"github.com/cottand/dynsafe/dynsafe"
	"github.com/cottand/dynsafe/goload"
	"github.com/cottand/dynsafe/internal/log"
	"github.com/cottand/dynsafe/model"
	"github.com/cottand/dynsafe/safety"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

var CheckCmd = &cobra.Command{
	Use:          "check defs.yaml|./go/module",
	Short:        "Check whether interfaces can be used as dynamic handles",
	RunE:         runCheck,
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
}

var (
	checkIfaces  *[]string
	checkGo      *bool
	checkJobs    *int
	checkVerbose *bool
	checkColor   *string
	logLevel     *int
)

func init() {
	checkIfaces = CheckCmd.Flags().StringSliceP("iface", "i", nil, "only check these interfaces")
	checkGo = CheckCmd.Flags().Bool("go", false, "load interfaces from Go packages instead of a definitions file")
	checkJobs = CheckCmd.Flags().IntP("jobs", "j", 0, "interfaces checked in parallel (0 means GOMAXPROCS)")
	checkVerbose = CheckCmd.Flags().BoolP("verbose", "v", false, "list the dispatch table of safe interfaces")
	checkColor = CheckCmd.Flags().String("color", "auto", "colorize output: auto, always or never")
	logLevel = CheckCmd.Flags().IntP("log-level", "l", int(slog.LevelError), "log level")
}

func runCheck(cmd *cobra.Command, args []string) error {
	log.SetLevel(slog.Level(*logLevel))
	target := args[0]

	stat, err := os.Stat(target)
	if err != nil {
		return fmt.Errorf("could not stat target: %w", err)
	}

	var arena *model.Arena
	if *checkGo || stat.IsDir() {
		arena, err = goload.Load(cmd.Context(), target, log.DefaultLogger)
	} else {
		arena, err = defs.Load(target)
	}
	if err != nil {
		return fmt.Errorf("could not load definitions: %w", err)
	}

	session, err := dynsafe.NewSession(arena, dynsafe.Options{Jobs: *checkJobs})
	if err != nil {
		return err
	}
	defer session.Close()

	var verdicts []safety.Verdict
	if len(*checkIfaces) == 0 {
		verdicts, err = session.CheckAll(cmd.Context())
		if err != nil {
			return fmt.Errorf("could not check interfaces: %w", err)
		}
	} else {
		for _, name := range *checkIfaces {
			v, err := session.Check(cmd.Context(), model.InterfaceID(name))
			if err != nil {
				return fmt.Errorf("could not check %s: %w", name, err)
			}
			verdicts = append(verdicts, v)
		}
	}

	color, err := useColor(*checkColor, os.Stdout)
	if err != nil {
		return err
	}
	unsafe, err := diag.WriteVerdicts(cmd.OutOrStdout(), arena, verdicts, color, *checkVerbose)
	if err != nil {
		return err
	}
	if unsafe > 0 {
		return fmt.Errorf("%d of %d interfaces cannot be used as dynamic handles", unsafe, len(verdicts))
	}
	return nil
}

func useColor(mode string, f *os.File) (bool, error) {
	switch mode {
	case "always":
		return true, nil
	case "never":
		return false, nil
	case "auto":
		return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()), nil
	default:
		return false, fmt.Errorf("invalid --color %q, expected auto, always or never", mode)
	}
}

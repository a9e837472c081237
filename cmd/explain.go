package cmd

import (
	"fmt"

	"github.com/cottand/dynsafe/diag"
	"github.com/cottand/dynsafe/violation"
	"github.com/spf13/cobra"
)

var ExplainCmd = &cobra.Command{
	Use:          "explain [code]",
	Short:        "Explain a violation code, or list them all",
	RunE:         runExplain,
	Args:         cobra.MaximumNArgs(1),
	SilenceUsage: true,
}

func runExplain(cmd *cobra.Command, args []string) error {
	w := cmd.OutOrStdout()
	if len(args) == 0 {
		for _, code := range diag.Codes() {
			if _, err := fmt.Fprintf(w, "%s  %s\n", code, diag.Label(code)); err != nil {
				return err
			}
		}
		return nil
	}
	code, err := violation.ParseCode(args[0])
	if err != nil {
		return err
	}
	text, _ := diag.Explain(code)
	_, err = fmt.Fprintf(w, "%s: %s\n\n%s\n", code, diag.Label(code), text)
	return err
}

package diag

import (
	"fmt"
	"io"

	"github.com/cottand/dynsafe/model"
	"github.com/cottand/dynsafe/safety"
)

// WriteVerdicts writes one line per safe verdict and a full Report per unsafe one.
// verbose also lists the dispatch table of safe interfaces.
// It returns how many of verdicts are unsafe.
func WriteVerdicts(w io.Writer, arena *model.Arena, verdicts []safety.Verdict, color, verbose bool) (unsafe int, err error) {
	for _, v := range verdicts {
		if !v.Safe() {
			unsafe++
			iface, err := arena.Get(v.Interface)
			if err != nil {
				return unsafe, err
			}
			if err := Render(iface, v.Violations).Format(w, color); err != nil {
				return unsafe, err
			}
			continue
		}
		_, err = fmt.Fprintf(w, "ok   %s (%d dispatchable, %d excluded)\n", v.Interface, len(v.Dispatchable), len(v.Excluded))
		if err != nil {
			return unsafe, err
		}
		if !verbose {
			continue
		}
		for i, m := range v.Dispatchable {
			if _, err = fmt.Fprintf(w, "     [%d] %s\n", i, m); err != nil {
				return unsafe, err
			}
		}
	}
	return unsafe, nil
}

// guide.go implements the "sopstory guide" command for documentation access.
//
// Separated from extension.go to isolate documentation lookup.
//
// Design: Guides are embedded in the binary via the guide package, ensuring
// documentation is always available without external files. Terminal output
// gets glamour rendering for readability; pipe/redirect gets raw markdown
// for machine consumption and LLM context loading.

package core

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jpl-au/sopstory/cmd"
	"github.com/jpl-au/sopstory/guide"
	"github.com/jpl-au/sopstory/internal/format"
)

func newGuideCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "guide [topic]",
		Short: "Show the sopstory usage guide",
		Long: `Outputs the sopstory guide for LLMs and humans.

  sopstory guide            # main guide
  sopstory guide validate   # validation rules and exit codes
  sopstory guide publish    # publishing to the ledger`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			name := ""
			if len(args) > 0 {
				name = args[0]
			}

			content, err := guide.Get(name)
			if err != nil {
				available, listErr := guide.List()
				if listErr != nil {
					return listErr
				}
				return cmd.PrintJSONError(fmt.Errorf("guide %q not found. Available: %s", name, strings.Join(available, ", ")))
			}
			if cmd.JSON() {
				return cmd.PrintJSON(map[string]string{"topic": name, "content": content})
			}
			return format.Render(cmd.Out(), content, cmd.TTY())
		},
	}
}

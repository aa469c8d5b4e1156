// llm.go implements the "sopstory llm" command for LLM integration hints.
//
// Design: Reads from guide/llm.md to avoid duplicating content. The guide
// file is the single source of truth for LLM onboarding documentation.

package core

import (
	"github.com/spf13/cobra"

	"github.com/jpl-au/sopstory/cmd"
	"github.com/jpl-au/sopstory/guide"
	"github.com/jpl-au/sopstory/internal/format"
)

func newLlmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "llm",
		Short: "Getting started guide for LLMs",
		Long:  `Quick reference for LLMs to discover available commands, the story format and the publish workflow.`,
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			content, err := guide.Get("llm")
			if err != nil {
				return cmd.PrintJSONError(err)
			}
			return format.Render(cmd.Out(), content, cmd.TTY())
		},
	}
}

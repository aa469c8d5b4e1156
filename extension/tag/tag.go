// Package tag provides the tag extension for sopstory.
// It registers commands: tag (with subcommands add, rm, ls, find).
package tag

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jpl-au/sopstory/cmd"
	"github.com/jpl-au/sopstory/extension"
	"github.com/jpl-au/sopstory/internal/log"
	"github.com/jpl-au/sopstory/internal/service"
	"github.com/jpl-au/sopstory/internal/tag"
)

func init() {
	extension.Register(&Extension{})
}

// Extension implements the tag extension.
type Extension struct {
	svc  service.Service
	tags *tag.Store
}

// Compile-time interface compliance. Catches missing methods at build time
// rather than runtime, making interface changes safer to refactor.
var (
	_ extension.Extension     = (*Extension)(nil)
	_ extension.Initializable = (*Extension)(nil)
	_ extension.Vacuumable    = (*Extension)(nil)
)

// Name returns "tag" - this extension labels published stories.
func (e *Extension) Name() string { return "tag" }

// Init creates the tag table and binds the shared service.
func (e *Extension) Init(ctx extension.Context) error {
	if err := tag.Migrate(ctx.DB()); err != nil {
		return fmt.Errorf("migrate tags: %w", err)
	}
	e.svc = ctx.Service()
	e.tags = tag.New(ctx.DB())
	return nil
}

// Commands returns the tag command with its subcommands.
func (e *Extension) Commands() []*cobra.Command {
	return []*cobra.Command{
		e.newTagCmd(),
	}
}

// MCPTools returns the sopstory_tag tool.
func (e *Extension) MCPTools() []extension.MCPTool {
	return []extension.MCPTool{tagTool()}
}

// Vacuum removes tags of stories vacuum has deleted. Retired stories keep
// their tags so restore brings them back, which is why olderThan is not
// consulted here: the stories vacuum already applied it.
func (e *Extension) Vacuum(ctx extension.Context, _ *time.Duration) (int64, error) {
	// vacuum runs without extension init, so the table may not exist yet.
	if err := tag.Migrate(ctx.DB()); err != nil {
		return 0, fmt.Errorf("migrate tags: %w", err)
	}
	return tag.New(ctx.DB()).Prune(context.Background())
}

// result is the JSON shape of tag commands.
type result struct {
	Story  string   `json:"story,omitempty"`
	Action string   `json:"action,omitempty"`
	Tags   []string `json:"tags"`
}

func (e *Extension) newTagCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "tag",
		Short: "Manage story tags",
		Long: `Add, remove, and list labels on published stories.

  sopstory tag add SOP-5 approved site-north
  sopstory tag rm SOP-5 site-north
  sopstory tag ls SOP-5
  sopstory tag ls              # every tag with its story count
  sopstory tag find approved   # stories carrying a tag`,
	}
	c.AddCommand(e.newTagAddCmd())
	c.AddCommand(e.newTagRmCmd())
	c.AddCommand(e.newTagLsCmd())
	c.AddCommand(e.newTagFindCmd())
	return c
}

func (e *Extension) newTagAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <id|key> <tag>...",
		Short: "Add tags to a story",
		Args:  cobra.MinimumNArgs(2),
		RunE:  e.runTagAdd,
	}
}

func (e *Extension) newTagRmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id|key> <tag>...",
		Short: "Remove tags from a story",
		Args:  cobra.MinimumNArgs(2),
		RunE:  e.runTagRm,
	}
}

func (e *Extension) newTagLsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ls [id|key]",
		Short: "List tags for a story (or all tags if id omitted)",
		Args:  cobra.MaximumNArgs(1),
		RunE:  e.runTagLs,
	}
}

func (e *Extension) newTagFindCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "find <tag>",
		Short: "List stories carrying a tag",
		Args:  cobra.ExactArgs(1),
		RunE:  e.runTagFind,
	}
}

func (e *Extension) runTagAdd(c *cobra.Command, args []string) error {
	ctx := c.Context()
	w := cmd.Out()
	if cmd.JSON() {
		w = io.Discard
	}

	l := log.Event("tag:add", "tag").
		Author(cmd.Author()).
		Detail("tags", args[1:])

	v, err := e.svc.Resolve(ctx, args[0], true)
	if err == nil {
		l.Story(v.Story)
		err = e.tags.Add(ctx, v.Story, cmd.Author(), args[1:]...)
	}
	if err != nil {
		l.Write(err)
		return cmd.PrintJSONError(fmt.Errorf("tag add %s: %w", args[0], err))
	}
	l.Write(nil)

	tags, err := e.tags.List(ctx, v.Story)
	if err != nil {
		return cmd.PrintJSONError(err)
	}
	fmt.Fprintf(w, "%s: %s\n", v.Story, joined(tags))
	if cmd.JSON() {
		return cmd.PrintJSON(result{Story: v.Story, Action: "add", Tags: nonNil(tags)})
	}
	return nil
}

func (e *Extension) runTagRm(c *cobra.Command, args []string) error {
	ctx := c.Context()
	w := cmd.Out()
	if cmd.JSON() {
		w = io.Discard
	}

	l := log.Event("tag:rm", "untag").
		Author(cmd.Author()).
		Detail("tags", args[1:])

	var n int64
	v, err := e.svc.Resolve(ctx, args[0], true)
	if err == nil {
		l.Story(v.Story)
		n, err = e.tags.Remove(ctx, v.Story, args[1:]...)
	}
	l.Detail("removed", n).Write(err)
	if err != nil {
		return cmd.PrintJSONError(fmt.Errorf("tag rm %s: %w", args[0], err))
	}

	tags, err := e.tags.List(ctx, v.Story)
	if err != nil {
		return cmd.PrintJSONError(err)
	}
	fmt.Fprintf(w, "Removed %d tag(s) from %s\n", n, v.Story)
	if cmd.JSON() {
		return cmd.PrintJSON(result{Story: v.Story, Action: "remove", Tags: nonNil(tags)})
	}
	return nil
}

func (e *Extension) runTagLs(c *cobra.Command, args []string) error {
	ctx := c.Context()

	if len(args) == 0 {
		counts, err := e.tags.All(ctx)
		log.Event("tag:ls", "list_tags").Author(cmd.Author()).Detail("count", len(counts)).Write(err)
		if err != nil {
			return cmd.PrintJSONError(fmt.Errorf("tag ls: %w", err))
		}
		if cmd.JSON() {
			if counts == nil {
				counts = []tag.Count{}
			}
			return cmd.PrintJSON(counts)
		}
		for _, t := range counts {
			fmt.Fprintf(cmd.Out(), "%s\t%d\n", t.Tag, t.Stories)
		}
		return nil
	}

	l := log.Event("tag:ls", "list_tags").Author(cmd.Author())
	var tags []string
	v, err := e.svc.Resolve(ctx, args[0], true)
	if err == nil {
		l.Story(v.Story)
		tags, err = e.tags.List(ctx, v.Story)
	}
	l.Detail("count", len(tags)).Write(err)
	if err != nil {
		return cmd.PrintJSONError(fmt.Errorf("tag ls %s: %w", args[0], err))
	}
	if cmd.JSON() {
		return cmd.PrintJSON(result{Story: v.Story, Tags: nonNil(tags)})
	}
	for _, t := range tags {
		fmt.Fprintln(cmd.Out(), t)
	}
	return nil
}

func (e *Extension) runTagFind(c *cobra.Command, args []string) error {
	stories, err := e.tags.Stories(c.Context(), args[0])
	log.Event("tag:find", "find").
		Author(cmd.Author()).
		Detail("tag", args[0]).
		Detail("count", len(stories)).
		Write(err)
	if err != nil {
		return cmd.PrintJSONError(fmt.Errorf("tag find %q: %w", args[0], err))
	}
	if cmd.JSON() {
		return cmd.PrintJSON(nonNil(stories))
	}
	for _, s := range stories {
		fmt.Fprintln(cmd.Out(), s)
	}
	return nil
}

func joined(tags []string) string {
	if len(tags) == 0 {
		return "(no tags)"
	}
	return strings.Join(tags, ", ")
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

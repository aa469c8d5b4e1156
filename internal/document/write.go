// write.go implements publishing and retirement for the Service layer.
//
// Separated from read.go to isolate mutating operations. Extension events
// fire only after the store has committed.
//
// Design: Publication is all-or-nothing. The pipeline runs first; a report
// with any error stops before the store is touched, and the store writes the
// whole version in one transaction.

package document

import (
	"context"
	"fmt"

	"github.com/jpl-au/sopstory/extension"
	"github.com/jpl-au/sopstory/internal/service"
	"github.com/jpl-au/sopstory/internal/store"
	"github.com/jpl-au/sopstory/internal/validate"
)

// Publish normalises, validates and stores a document. When the report has
// errors nothing is stored and the error wraps validate.ErrNotPublishable;
// the Outcome is still returned so callers can show the report.
func (s *Service) Publish(ctx context.Context, data []byte, opts service.PublishOptions) (*service.Outcome, error) {
	out, err := s.Check(ctx, data, opts.CheckOptions)
	if err != nil {
		return nil, err
	}
	if !out.Report.OK() {
		return out, fmt.Errorf("%w: %d errors", validate.ErrNotPublishable, len(out.Report.Errors))
	}

	author := opts.Author
	if author == "" {
		author = DefaultAuthor
	}
	d := out.Document
	res, err := s.store.Publish(ctx, d.ID, out.Content, store.PublishOptions{
		Author:     author,
		Message:    opts.Message,
		Title:      d.Title(),
		Steps:      len(d.Steps),
		Warnings:   len(out.Report.Warnings),
		MaxContent: s.cfg.MaxContent(),
	})
	if err != nil {
		return out, fmt.Errorf("publish %q: %w", d.ID, err)
	}
	out.Result = res

	if res.Created {
		s.fireEvent(extension.StoryPublishEvent{
			Story:    d.ID,
			Key:      res.Key,
			Version:  res.Version,
			Author:   author,
			Message:  opts.Message,
			Warnings: len(out.Report.Warnings),
		})
	}
	return out, nil
}

// Delete retires a story.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("retire %q: %w", id, err)
	}
	s.fireEvent(extension.StoryRetireEvent{Story: id})
	return nil
}

// Restore reactivates a retired story.
func (s *Service) Restore(ctx context.Context, id string) error {
	if err := s.store.Restore(ctx, id); err != nil {
		return fmt.Errorf("restore %q: %w", id, err)
	}
	s.fireEvent(extension.StoryRestoreEvent{Story: id})
	return nil
}

// check.go implements the normalise and validate pipeline.
//
// Separated from write.go because the pipeline needs no ledger: validate,
// normalise and build run it on loose files, and Publish runs the same code
// before storing.
//
// Design: The document is decoded once, normalised in place, validated
// read-only, then encoded. Whatever is stored or written is exactly what was
// validated.

package document

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/jpl-au/sopstory/internal/config"
	"github.com/jpl-au/sopstory/internal/exists"
	"github.com/jpl-au/sopstory/internal/path"
	"github.com/jpl-au/sopstory/internal/service"
	"github.com/jpl-au/sopstory/internal/story"
	"github.com/jpl-au/sopstory/internal/validate"
)

// Check decodes, normalises and validates a document. A document that
// cannot be modelled yields an Outcome with a structural report and no
// Document; only I/O-style failures are returned as errors.
func Check(ctx context.Context, cfg *config.Config, data []byte, opts service.CheckOptions) (*service.Outcome, error) {
	if cfg == nil {
		cfg = &config.Config{}
	}

	d, err := Decode(data, opts.Source)
	if err != nil {
		r, ok := validate.Structural(err)
		if !ok {
			return nil, err
		}
		return &service.Outcome{Report: r}, nil
	}

	out := &service.Outcome{Document: d}
	if !opts.SkipNormal {
		out.Changes = story.Normalise(d, PathOptions(cfg, opts))
	}
	out.Report = validate.New(ValidateOptions(cfg, opts)).Validate(ctx, d)

	if out.Content, err = story.Encode(d); err != nil {
		return nil, fmt.Errorf("encode story: %w", err)
	}
	return out, nil
}

// Check runs the pipeline with the service's configuration.
func (s *Service) Check(ctx context.Context, data []byte, opts service.CheckOptions) (*service.Outcome, error) {
	return Check(ctx, s.cfg, data, opts)
}

// Decode picks JSON or YAML from the source file name.
func Decode(data []byte, source string) (*story.Document, error) {
	if story.FormatFor(source) == story.FormatYAML {
		return story.DecodeYAML(data)
	}
	return story.Decode(data)
}

// PathOptions resolves the normalisation options for a run. An explicit
// base wins, then the configured base, then the base derived from the
// player output path, then the default.
func PathOptions(cfg *config.Config, opts service.CheckOptions) path.Options {
	base := opts.Base
	if base == "" && cfg.Paths.Base == "" && opts.Output != "" {
		base = path.BaseRelative(opts.Output, cfg.Staging())
	}
	p := cfg.PathOptions(base)
	if opts.Base != "" {
		p.Base = opts.Base
	}
	return p
}

// ValidateOptions resolves the validator options for a run. Image
// references are checked relative to the player output directory when one
// is given and no image root is configured.
func ValidateOptions(cfg *config.Config, opts service.CheckOptions) validate.Options {
	vo := validate.Options{
		Denylist:     cfg.Denylist(),
		Reachability: opts.Reachability || cfg.Reachability(),
	}
	if !opts.CheckFiles && !cfg.CheckFiles() {
		return vo
	}
	vo.Checker = exists.NewCached(&exists.Auto{})
	vo.ImageRoot = cfg.ImageRoot()
	if cfg.Check.ImageRoot == "" && opts.Output != "" {
		vo.ImageRoot = filepath.ToSlash(filepath.Dir(opts.Output))
	}
	vo.SupplementaryRoot = cfg.SupplementaryRoot()
	return vo
}

// resources.go implements MCP resource handlers for published stories.
//
// MCP resources provide read-only access via URI, so a client can load a
// published story into context without calling a tool.
//
// Design: URIs follow sopstory://stories/{id}[/v/{version}]. Omitting the
// version returns the latest, mirroring `sopstory cat`.

package mcp

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/jpl-au/sopstory/internal/store"
)

const (
	storyURIPrefix = "sopstory://stories/"
	storyMIME      = "application/json"
)

var (
	// ErrInvalidURI indicates a malformed resource URI.
	ErrInvalidURI = errors.New("invalid URI")
	// ErrEmptyID indicates a missing story id in a resource URI.
	ErrEmptyID = errors.New("empty story id")
)

// readStory handles sopstory://stories/{id}[/v/{version}] requests.
func (h *handlers) readStory(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	if h.svc == nil {
		return nil, errors.New(ErrNotInitialised)
	}
	uri := req.Params.URI
	id, version, err := parseStoryURI(uri)
	if err != nil {
		return nil, err
	}

	var v *store.Version
	if version > 0 {
		v, err = h.svc.Version(ctx, id, version)
	} else {
		v, err = h.svc.Resolve(ctx, id, false)
	}
	if err != nil {
		return nil, err
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: storyMIME,
			Text:     v.Content,
		},
	}, nil
}

// parseStoryURI extracts the story id and version from a story URI.
func parseStoryURI(uri string) (id string, version int, err error) {
	rest, ok := strings.CutPrefix(uri, storyURIPrefix)
	if !ok {
		return "", 0, fmt.Errorf("%w: %s", ErrInvalidURI, uri)
	}
	if rest == "" {
		return "", 0, ErrEmptyID
	}

	if idx := strings.LastIndex(rest, "/v/"); idx != -1 {
		id = rest[:idx]
		vStr := rest[idx+3:]
		v, err := strconv.Atoi(vStr)
		if err != nil || v < 1 {
			return "", 0, fmt.Errorf("%w: invalid version %s", ErrInvalidURI, vStr)
		}
		if id == "" {
			return "", 0, ErrEmptyID
		}
		return id, v, nil
	}
	return rest, 0, nil
}

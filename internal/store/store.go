// Package store defines the publication ledger types and the Store interface.
// Implementations handle the actual database operations while consumers
// depend only on this interface, enabling testing and alternative backends.
package store

import (
	"time"
)

// Version is a single published version of a story. Each publish of changed
// content creates a new version, preserving full history for auditing.
type Version struct {
	ID        int64  // Database primary key (internal)
	Key       string // Unique 8-char identifier
	Story     string // Story identifier (the document's sop_id)
	Title     string // Display title at publish time
	Content   string // Canonical encoded JSON document
	Digest    string // Hex BLAKE2b-256 of Content
	Steps     int    // Number of steps in the document
	Warnings  int    // Validation warnings accepted at publish time
	Version   int    // Version number (1, 2, 3, ...)
	Author    string // Who published this version
	Message   string // Publish message
	CreatedAt int64  // Unix timestamp of publication
	DeletedAt *int64 // Unix timestamp of retirement, nil if active
}

// Meta is a story's latest version without content. Use for listings.
type Meta struct {
	Key       string
	Story     string
	Title     string
	Digest    string
	Steps     int
	Warnings  int
	Version   int
	Author    string
	Message   string
	CreatedAt int64
	DeletedAt *int64
	Size      int64 // Content length in bytes
}

// PublishOptions configures a publish.
type PublishOptions struct {
	Author     string
	Message    string
	Title      string
	Steps      int
	Warnings   int
	MaxContent int64 // 0 disables the size check
}

// Result reports the outcome of a publish.
type Result struct {
	Version int    `json:"version"`
	Key     string `json:"key"`
	Digest  string `json:"digest"`
	// Created is false when the content matched the latest version and
	// nothing was written.
	Created bool `json:"created"`
}

// VersionJSON is the API representation of a Version.
type VersionJSON struct {
	Key       string `json:"key"`
	Story     string `json:"story"`
	Title     string `json:"title,omitempty"`
	Version   int    `json:"version"`
	Digest    string `json:"digest"`
	Steps     int    `json:"steps"`
	Warnings  int    `json:"warnings"`
	Author    string `json:"author"`
	Message   string `json:"message,omitempty"`
	CreatedAt string `json:"created_at"`
	DeletedAt string `json:"deleted_at,omitempty"`
	Content   string `json:"content,omitempty"`
}

// ToJSON converts a Version to its API representation with RFC3339
// timestamps. Content is included only when withContent is set.
func (v *Version) ToJSON(withContent bool) VersionJSON {
	j := VersionJSON{
		Key:       v.Key,
		Story:     v.Story,
		Title:     v.Title,
		Version:   v.Version,
		Digest:    v.Digest,
		Steps:     v.Steps,
		Warnings:  v.Warnings,
		Author:    v.Author,
		Message:   v.Message,
		CreatedAt: formatTime(v.CreatedAt),
	}
	if v.DeletedAt != nil {
		j.DeletedAt = formatTime(*v.DeletedAt)
	}
	if withContent {
		j.Content = v.Content
	}
	return j
}

// MetaJSON is the API representation of Meta.
type MetaJSON struct {
	Key       string `json:"key"`
	Story     string `json:"story"`
	Title     string `json:"title,omitempty"`
	Version   int    `json:"version"`
	Steps     int    `json:"steps"`
	Warnings  int    `json:"warnings"`
	Author    string `json:"author"`
	Message   string `json:"message,omitempty"`
	CreatedAt string `json:"created_at"`
	DeletedAt string `json:"deleted_at,omitempty"`
	Size      int64  `json:"size"`
}

// ToJSON converts Meta to its API representation.
func (m *Meta) ToJSON() MetaJSON {
	j := MetaJSON{
		Key:       m.Key,
		Story:     m.Story,
		Title:     m.Title,
		Version:   m.Version,
		Steps:     m.Steps,
		Warnings:  m.Warnings,
		Author:    m.Author,
		Message:   m.Message,
		CreatedAt: formatTime(m.CreatedAt),
		Size:      m.Size,
	}
	if m.DeletedAt != nil {
		j.DeletedAt = formatTime(*m.DeletedAt)
	}
	return j
}

func formatTime(unix int64) string {
	return time.Unix(unix, 0).UTC().Format(time.RFC3339)
}

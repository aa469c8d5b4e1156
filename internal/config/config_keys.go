// config_keys.go provides key-value access to configuration settings.
//
// Separated from config.go to isolate the key enumeration and string-based
// get/set logic. This separation allows config.go to focus on YAML structure
// and loading, while this file handles the MCP and CLI interface where config
// is accessed by string keys (e.g., "paths.staging").
//
// Design: Pointers are used for optional fields so we can distinguish between
// "not set" (nil) and "explicitly set to zero/false". List values are read
// and written as comma-separated strings.

package config

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// ValidKeys returns all valid configuration keys.
func ValidKeys() []string {
	return []string{
		"author.name", "author.email",
		"paths.staging", "paths.folders", "paths.base",
		"check.files", "check.image_root", "check.supplementary_root",
		"validate.reachability", "validate.denylist",
		"player.template", "player.image_width", "player.exit_href",
		"limits.max_content",
	}
}

// IsValidKey returns true if the key is a valid configuration key.
func IsValidKey(key string) bool {
	return slices.Contains(ValidKeys(), key)
}

// Get returns the value of a configuration key as a string.
func (c *Config) Get(key string) (string, error) {
	switch key {
	case "author.name":
		return c.Author.Name, nil
	case "author.email":
		return c.Author.Email, nil
	case "paths.staging":
		return c.Staging(), nil
	case "paths.folders":
		return strings.Join(c.Folders(), ","), nil
	case "paths.base":
		return c.Paths.Base, nil
	case "check.files":
		return strconv.FormatBool(c.CheckFiles()), nil
	case "check.image_root":
		return c.ImageRoot(), nil
	case "check.supplementary_root":
		return c.SupplementaryRoot(), nil
	case "validate.reachability":
		return strconv.FormatBool(c.Reachability()), nil
	case "validate.denylist":
		return strings.Join(c.Denylist(), ","), nil
	case "player.template":
		return c.Player.Template, nil
	case "player.image_width":
		return strconv.Itoa(c.ImageWidth()), nil
	case "player.exit_href":
		return c.ExitHref(), nil
	case "limits.max_content":
		return strconv.FormatInt(c.MaxContent(), 10), nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
}

// Set sets the value of a configuration key.
func (c *Config) Set(key, value string) error {
	switch key {
	case "author.name":
		c.Author.Name = value
	case "author.email":
		c.Author.Email = value
	case "paths.staging":
		v := strings.Trim(strings.TrimSpace(value), "/")
		if strings.Contains(v, "/") {
			return fmt.Errorf("%w: paths.staging must be a single directory name", ErrInvalidValue)
		}
		c.Paths.Staging = v
	case "paths.folders":
		c.Paths.Folders = splitList(value)
	case "paths.base":
		c.Paths.Base = strings.TrimSpace(value)
	case "check.files":
		b, err := parseBool(key, value)
		if err != nil {
			return err
		}
		c.Check.Files = &b
	case "check.image_root":
		c.Check.ImageRoot = strings.TrimSpace(value)
	case "check.supplementary_root":
		c.Check.SupplementaryRoot = strings.TrimSpace(value)
	case "validate.reachability":
		b, err := parseBool(key, value)
		if err != nil {
			return err
		}
		c.Validation.Reachability = &b
	case "validate.denylist":
		c.Validation.Denylist = splitList(value)
	case "player.template":
		c.Player.Template = strings.TrimSpace(value)
	case "player.image_width":
		n, err := strconv.Atoi(value)
		if err != nil || n < MinImageWidth || n > MaxImageWidth {
			return fmt.Errorf("%w: player.image_width must be an integer between %d and %d",
				ErrInvalidValue, MinImageWidth, MaxImageWidth)
		}
		c.Player.ImageWidth = &n
	case "player.exit_href":
		c.Player.ExitHref = strings.TrimSpace(value)
	case "limits.max_content":
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil || n <= 0 {
			return fmt.Errorf("%w: limits.max_content must be a positive integer", ErrInvalidValue)
		}
		c.Limits.MaxContent = &n
	default:
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	return nil
}

// All returns all configuration values as a map.
func (c *Config) All() map[string]string {
	m := make(map[string]string, len(ValidKeys()))
	for _, k := range ValidKeys() {
		v, _ := c.Get(k)
		m[k] = v
	}
	return m
}

// IsSet returns true if the key has an explicit value (not just defaults).
func (c *Config) IsSet(key string) bool {
	switch key {
	case "author.name":
		return c.Author.Name != ""
	case "author.email":
		return c.Author.Email != ""
	case "paths.staging":
		return c.Paths.Staging != ""
	case "paths.folders":
		return len(c.Paths.Folders) > 0
	case "paths.base":
		return c.Paths.Base != ""
	case "check.files":
		return c.Check.Files != nil
	case "check.image_root":
		return c.Check.ImageRoot != ""
	case "check.supplementary_root":
		return c.Check.SupplementaryRoot != ""
	case "validate.reachability":
		return c.Validation.Reachability != nil
	case "validate.denylist":
		return c.Validation.Denylist != nil
	case "player.template":
		return c.Player.Template != ""
	case "player.image_width":
		return c.Player.ImageWidth != nil
	case "player.exit_href":
		return c.Player.ExitHref != ""
	case "limits.max_content":
		return c.Limits.MaxContent != nil
	default:
		return false
	}
}

func parseBool(key, value string) (bool, error) {
	v := strings.ToLower(strings.TrimSpace(value))
	if v != "true" && v != "false" {
		return false, fmt.Errorf("%w: %s must be true or false", ErrInvalidValue, key)
	}
	return v == "true", nil
}

// splitList parses a comma-separated list, dropping empty entries. An empty
// value yields an empty non-nil list.
func splitList(value string) []string {
	out := []string{}
	for _, s := range strings.Split(value, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

package asset

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Resolver maps logical asset names to filesystem paths under a fixed
// base directory. Resolution is pure: no caching, no filesystem
// access, no state beyond the base path.
type Resolver struct {
	base string
}

func NewResolver(base string) Resolver {
	return Resolver{base: base}
}

// Base returns the configured asset directory.
func (r Resolver) Base() string { return r.base }

// Path resolves a logical name like "scene/game.scn" to a path under
// the base directory. Names are slash-separated regardless of
// platform. Absolute names and names escaping the base are rejected.
func (r Resolver) Path(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("asset: empty name")
	}
	if strings.HasPrefix(name, "/") {
		return "", fmt.Errorf("asset: name %q is absolute", name)
	}
	clean := filepath.Clean(filepath.FromSlash(name))
	if filepath.IsAbs(clean) {
		return "", fmt.Errorf("asset: name %q is absolute", name)
	}
	if clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("asset: name %q escapes the asset directory", name)
	}
	return filepath.Join(r.base, clean), nil
}

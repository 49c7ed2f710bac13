package webpack

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Stats is the parsed statistics object of one bundler invocation.
type Stats struct {
	Hash     string   `json:"hash"`
	TimeMs   int64    `json:"time"`
	Assets   []Asset  `json:"assets"`
	Warnings []string `json:"warnings"`
	Errors   []string `json:"errors"`
}

// Asset is one emitted artifact.
type Asset struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
}

// ParseStats decodes a bundler stats JSON document.
func ParseStats(data []byte) (*Stats, error) {
	var stats Stats
	if err := json.Unmarshal(data, &stats); err != nil {
		return nil, fmt.Errorf("failed to parse bundler stats: %w", err)
	}
	return &stats, nil
}

// HasErrors reports whether the build emitted errors.
func (s *Stats) HasErrors() bool { return len(s.Errors) > 0 }

// HasWarnings reports whether the build emitted warnings.
func (s *Stats) HasWarnings() bool { return len(s.Warnings) > 0 }

// Duration returns the reported build time.
func (s *Stats) Duration() time.Duration {
	return time.Duration(s.TimeMs) * time.Millisecond
}

// Summary returns the condensed one-build summary used in normal mode.
func (s *Stats) Summary() string {
	var total int64
	for _, a := range s.Assets {
		total += a.Size
	}
	return fmt.Sprintf("built %d assets (%s) in %s",
		len(s.Assets), formatBytes(total), s.Duration())
}

// FullText returns the raw statistics text used in verbose mode.
func (s *Stats) FullText() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hash: %s\nTime: %s\n", s.Hash, s.Duration())
	for _, a := range s.Assets {
		fmt.Fprintf(&b, "  %-40s %10s\n", a.Name, formatBytes(a.Size))
	}
	for _, w := range s.Warnings {
		fmt.Fprintf(&b, "WARNING: %s\n", w)
	}
	for _, e := range s.Errors {
		fmt.Fprintf(&b, "ERROR: %s\n", e)
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatBytes(n int64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.2f MB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.2f kB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}

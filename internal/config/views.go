package config

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/visheskaras/Postgres-to-excel-for-scada/internal/logger"
)

// ErrViewNotConfigured indicates a view name with no registry entry.
var ErrViewNotConfigured = errors.New("view not configured")

// reservedPrefixes mark keys consumed as global settings, never view entries.
var reservedPrefixes = []string{
	"DB_", "TEMPLATES_", "OUTPUT_", "DEFAULT_", "AUTO_", "PRESERVE_", "LOG_",
}

// templateExtensions are the recognized spreadsheet-template suffixes.
var templateExtensions = []string{".xlsx", ".xlsm"}

// ViewEntry maps one database view to its template, output naming pattern
// and insertion anchor. Immutable once loaded.
type ViewEntry struct {
	ViewName      string
	TemplateName  string
	OutputPattern string
	StartRow      int
	StartCol      int
}

// Registry holds the loaded view entries, keyed by view name, in file order.
type Registry struct {
	entries map[string]ViewEntry
	order   []string
}

// NewRegistry returns an empty registry. Mainly for tests and callers that
// build entries programmatically.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]ViewEntry)}
}

// Add inserts an entry, keeping first-insertion order. A repeated view name
// overwrites the earlier entry in place.
func (r *Registry) Add(e ViewEntry) {
	if _, exists := r.entries[e.ViewName]; !exists {
		r.order = append(r.order, e.ViewName)
	}
	r.entries[e.ViewName] = e
}

// Get looks up an entry by view name (case-sensitive).
func (r *Registry) Get(name string) (ViewEntry, bool) {
	e, ok := r.entries[name]
	return e, ok
}

// Names returns the view names in file order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Len returns the number of loaded entries.
func (r *Registry) Len() int {
	return len(r.entries)
}

// GenerateOutputFilename resolves the view's output pattern against now,
// substituting the recognized placeholder tokens:
//
//	{date}      -> 2006-01-02
//	{timestamp} -> 20060102_150405
//	{time}      -> 150405
//
// Substitution is literal and unescaped: token text occurring naturally in
// a pattern is always replaced. Unrecognized tokens pass through verbatim.
func (r *Registry) GenerateOutputFilename(viewName string, now time.Time) (string, error) {
	entry, ok := r.Get(viewName)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrViewNotConfigured, viewName)
	}

	name := entry.OutputPattern
	name = strings.ReplaceAll(name, "{date}", now.Format("2006-01-02"))
	name = strings.ReplaceAll(name, "{timestamp}", now.Format("20060102_150405"))
	name = strings.ReplaceAll(name, "{time}", now.Format("150405"))
	return name, nil
}

// LoadViews parses view entries out of the raw configuration file. The load
// fails softly: malformed lines are skipped with a diagnostic and a file
// with zero valid entries yields an empty registry, never an error.
func LoadViews(ctx context.Context, path string, defaultRow, defaultCol int) *Registry {
	registry := NewRegistry()

	file, err := os.Open(path)
	if err != nil {
		logger.WarnLog(ctx, "view configuration %s not readable: %v", path, err)
		return registry
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, found := strings.Cut(line, "=")
		if !found {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		if key == "" || isReservedKey(key) {
			continue
		}

		entry, err := parseViewValue(key, value, defaultRow, defaultCol)
		if err != nil {
			logger.WarnLog(ctx, "skipping view entry %s: %v", key, err)
			continue
		}

		registry.Add(entry)
		logger.InfoLog(ctx, "loaded view mapping: %s = %s:%s (anchor %d,%d)",
			key, entry.TemplateName, entry.OutputPattern, entry.StartRow, entry.StartCol)
	}
	if err := scanner.Err(); err != nil {
		logger.WarnLog(ctx, "reading view configuration %s: %v", path, err)
	}

	logger.InfoLog(ctx, "loaded %d view mapping(s) from %s", registry.Len(), path)
	return registry
}

// parseViewValue validates and splits one candidate view-entry value:
//
//	template_file.xlsx:output_pattern[:anchor]
//
// The anchor segment is optional; a malformed anchor falls back to the
// defaults rather than rejecting the whole entry.
func parseViewValue(key, value string, defaultRow, defaultCol int) (ViewEntry, error) {
	if !strings.Contains(value, ":") {
		return ViewEntry{}, fmt.Errorf("missing ':' separator in %q", value)
	}
	if strings.Contains(value, "..") {
		return ViewEntry{}, fmt.Errorf("path traversal in %q", value)
	}
	if strings.ContainsAny(value, "$%") {
		return ViewEntry{}, fmt.Errorf("environment expansion marker in %q", value)
	}

	parts := strings.SplitN(value, ":", 3)
	templateName := strings.TrimSpace(parts[0])
	if !hasTemplateExtension(templateName) {
		return ViewEntry{}, fmt.Errorf("template %q has no recognized spreadsheet extension", templateName)
	}

	outputPattern := ""
	if len(parts) >= 2 {
		outputPattern = strings.TrimSpace(parts[1])
	}
	if templateName == "" || outputPattern == "" {
		return ViewEntry{}, fmt.Errorf("empty template or output pattern in %q", value)
	}

	row, col := defaultRow, defaultCol
	if len(parts) == 3 {
		if anchor, ok := ParseAnchor(parts[2]); ok {
			row, col = anchor.Row, anchor.Col
		}
	}

	return ViewEntry{
		ViewName:      key,
		TemplateName:  templateName,
		OutputPattern: outputPattern,
		StartRow:      row,
		StartCol:      col,
	}, nil
}

func isReservedKey(key string) bool {
	for _, prefix := range reservedPrefixes {
		if strings.HasPrefix(key, prefix) {
			return true
		}
	}
	return false
}

func hasTemplateExtension(name string) bool {
	lower := strings.ToLower(name)
	for _, ext := range templateExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

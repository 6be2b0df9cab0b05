package perf

import (
	"encoding/json"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

const defaultExportFilename = "kmm-perf.json"

// ExportToFile writes spans as JSON to <outDir>/kmm-perf.json. Absolute paths
// held in path-like attributes are rewritten relative to baseDir so the file
// can be shared without leaking the user's directory layout.
//
// Callers treat a returned error as non-fatal.
func ExportToFile(fs afero.Fs, outDir string, baseDir string, spans []SpanSnapshot) (string, error) {
	if outDir == "" {
		outDir = "."
	}

	normalized := make([]SpanSnapshot, 0, len(spans))
	for _, span := range spans {
		span.Attributes = normalizeAttributes(span.Attributes, baseDir)
		normalized = append(normalized, span)
	}

	if err := fs.MkdirAll(outDir, 0o755); err != nil {
		return "", err
	}

	data, err := json.MarshalIndent(normalized, "", "  ")
	if err != nil {
		return "", err
	}

	path := filepath.Join(outDir, defaultExportFilename)
	return path, afero.WriteFile(fs, path, data, 0o644)
}

func normalizeAttributes(attrs map[string]interface{}, baseDir string) map[string]interface{} {
	if len(attrs) == 0 {
		return attrs
	}

	out := make(map[string]interface{}, len(attrs))
	for key, value := range attrs {
		text, ok := value.(string)
		if !ok || !looksLikePathKey(key) {
			out[key] = value
			continue
		}
		out[key] = relativeTo(baseDir, text)
	}
	return out
}

func looksLikePathKey(key string) bool {
	lower := strings.ToLower(key)
	return lower == "path" || strings.HasSuffix(lower, "_path") || strings.HasSuffix(lower, ".path")
}

func relativeTo(baseDir string, value string) string {
	if baseDir == "" || !filepath.IsAbs(value) {
		return filepath.ToSlash(value)
	}
	rel, err := filepath.Rel(baseDir, value)
	if err != nil || strings.HasPrefix(rel, "..") {
		return filepath.ToSlash(value)
	}
	return filepath.ToSlash(rel)
}

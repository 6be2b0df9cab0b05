// Package ignore reads .kmmignore patterns from the game directory.
//
// Patterns are matched against slash-separated paths relative to the game
// directory, one path segment at a time. `*` and `?` match within a segment,
// `**` matches any number of segments. Lines starting with # are comments.
package ignore

import (
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

const FileName = ".kmmignore"

type Matcher struct {
	root     string
	patterns []string
}

func ListPatterns(fs afero.Fs, rootDir string) ([]string, error) {
	ignoreFile := filepath.Join(rootDir, FileName)
	exists, err := afero.Exists(fs, ignoreFile)
	if err != nil {
		return nil, err
	}

	patterns := make([]string, 0)
	if !exists {
		return patterns, nil
	}

	data, err := afero.ReadFile(fs, ignoreFile)
	if err != nil {
		return nil, err
	}

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, filepath.ToSlash(line))
	}

	return patterns, nil
}

func Load(fs afero.Fs, rootDir string) (*Matcher, error) {
	patterns, err := ListPatterns(fs, rootDir)
	if err != nil {
		return nil, err
	}
	return New(rootDir, patterns), nil
}

func New(rootDir string, patterns []string) *Matcher {
	return &Matcher{root: filepath.Clean(rootDir), patterns: patterns}
}

func (m *Matcher) Patterns() []string {
	return append([]string(nil), m.patterns...)
}

// Match reports whether path, absolute or relative to the current directory in
// the same form as the root, is covered by a pattern. Paths outside the root
// never match.
func (m *Matcher) Match(path string) bool {
	cleanPath := filepath.Clean(path)

	if cleanPath != m.root && !strings.HasPrefix(cleanPath, m.root+string(filepath.Separator)) {
		return false
	}

	rel := strings.TrimPrefix(cleanPath, m.root)
	rel = strings.TrimPrefix(rel, string(filepath.Separator))
	rel = filepath.ToSlash(rel)

	for _, pattern := range m.patterns {
		if globMatch(pattern, rel) {
			return true
		}
	}

	return false
}

func globMatch(pattern string, target string) bool {
	pattern = strings.TrimPrefix(pattern, "./")
	pattern = strings.TrimPrefix(pattern, "/")
	target = strings.TrimPrefix(target, "./")

	patternParts := strings.Split(pattern, "/")
	targetParts := strings.Split(target, "/")

	var match func(pi, ti int) bool
	match = func(pi, ti int) bool {
		if pi == len(patternParts) {
			return ti == len(targetParts)
		}

		part := patternParts[pi]
		if part == "**" {
			for skip := ti; skip <= len(targetParts); skip++ {
				if match(pi+1, skip) {
					return true
				}
			}
			return false
		}

		if ti >= len(targetParts) {
			return false
		}

		ok, err := filepath.Match(part, targetParts[ti])
		if err != nil || !ok {
			return false
		}
		return match(pi+1, ti+1)
	}

	return match(0, 0)
}

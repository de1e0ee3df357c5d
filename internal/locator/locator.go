// Package locator maps a working directory to the wiki document that tracks it.
//
// Documents live under <context_root>/<classification>/<relative path>/, where
// classification is "work" or "personal" and the relative path is the working
// directory relative to the user's home.
package locator

import (
	"path/filepath"
	"strings"
)

const (
	Work     = "work"
	Personal = "personal"

	// HistoryDirName holds full session logs next to the document.
	HistoryDirName = "history"
)

// Target is where one working directory's knowledge is stored.
type Target struct {
	Project        string `json:"project"`
	Classification string `json:"classification"`
	Dir            string `json:"dir"`
	Document       string `json:"document"`
	HistoryDir     string `json:"history_dir"`
}

// Options are the locator-relevant settings.
type Options struct {
	ContextRoot      string
	FileName         string
	WorkPathPatterns []string
}

// Classify returns Work if cwd starts with any work pattern, else Personal.
func Classify(cwd string, workPatterns []string) string {
	for _, p := range workPatterns {
		if p != "" && strings.HasPrefix(cwd, p) {
			return Work
		}
	}
	return Personal
}

// IsExcluded reports whether cwd starts with any excluded prefix.
func IsExcluded(cwd string, excluded []string) bool {
	for _, p := range excluded {
		if p != "" && strings.HasPrefix(cwd, p) {
			return true
		}
	}
	return false
}

// RelativePath returns cwd relative to home, or its last two segments when
// cwd is outside home.
func RelativePath(cwd, home string) string {
	cwd = filepath.Clean(cwd)
	if home != "" {
		home = filepath.Clean(home)
		if rel, err := filepath.Rel(home, cwd); err == nil && rel != "." && !strings.HasPrefix(rel, "..") {
			return filepath.ToSlash(rel)
		}
	}

	parts := strings.Split(strings.Trim(filepath.ToSlash(cwd), "/"), "/")
	if len(parts) >= 2 {
		return strings.Join(parts[len(parts)-2:], "/")
	}
	if parts[0] == "" {
		return "root"
	}
	return parts[0]
}

// Resolve computes the Target for cwd.
func Resolve(opts Options, cwd, home string) Target {
	class := Classify(cwd, opts.WorkPathPatterns)
	dir := filepath.Join(opts.ContextRoot, class, filepath.FromSlash(RelativePath(cwd, home)))
	return Target{
		Project:        filepath.Base(filepath.Clean(cwd)),
		Classification: class,
		Dir:            dir,
		Document:       filepath.Join(dir, opts.FileName),
		HistoryDir:     filepath.Join(dir, HistoryDirName),
	}
}

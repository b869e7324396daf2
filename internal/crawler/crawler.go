// Package crawler discovers candidate documents under a directory tree.
package crawler

import (
	"io/fs"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
)

// Crawler scans a directory for documents matching include globs.
type Crawler struct {
	include []string
	ignored []string
}

// NewCrawler creates a crawler with the given doublestar include patterns.
// With no patterns it matches Markdown files.
func NewCrawler(include []string) *Crawler {
	if len(include) == 0 {
		include = []string{"**/*.md"}
	}
	return &Crawler{
		include: include,
		ignored: []string{".git", "vendor", "node_modules", "testdata"},
	}
}

// ScanDir walks the root directory and streams matching document paths
// through the callback, preventing large memory buildup on big trees.
func (c *Crawler) ScanDir(root string, onDoc func(path string)) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		// Skip ignored directories
		if d.IsDir() {
			for _, ign := range c.ignored {
				if d.Name() == ign {
					return filepath.SkipDir
				}
			}
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		if !c.Matches(filepath.ToSlash(rel)) {
			return nil
		}

		onDoc(path)
		return nil
	})
}

// Matches reports whether a slash-separated relative path matches any
// include pattern.
func (c *Crawler) Matches(rel string) bool {
	for _, pattern := range c.include {
		if ok, err := doublestar.Match(pattern, rel); err == nil && ok {
			return true
		}
	}
	return false
}

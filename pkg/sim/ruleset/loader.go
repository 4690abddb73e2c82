package ruleset

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Loader reads rule-set documents from disk. The path may be a single YAML
// file or a directory; directories are walked lexically, so multi-file rule
// sets register in a stable order.
type Loader struct {
	path   string
	logger *slog.Logger
}

// NewLoader creates a loader for a file or directory path.
func NewLoader(path string, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		path:   path,
		logger: logger.With("component", "sim.ruleset"),
	}
}

// Path returns the loader's path.
func (l *Loader) Path() string { return l.path }

// Load reads and parses all rule specs under the path, in deterministic
// order. Files that fail to parse are skipped with a warning so a single
// broken file does not take down a reload; structural errors within a
// document (duplicate names across files, for instance) are fatal.
func (l *Loader) Load() (*Document, error) {
	info, err := os.Stat(l.path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat rule set path %q: %w", l.path, err)
	}

	var merged Document

	if !info.IsDir() {
		doc, err := l.loadFile(l.path)
		if err != nil {
			return nil, err
		}
		merged.Rules = doc.Rules
	} else {
		err := filepath.Walk(l.path, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if info.IsDir() {
				return nil
			}
			ext := filepath.Ext(path)
			if ext != ".yaml" && ext != ".yml" {
				return nil
			}
			doc, err := l.loadFile(path)
			if err != nil {
				l.logger.Warn("skipping invalid rule file",
					"path", path,
					"error", err,
				)
				return nil
			}
			merged.Rules = append(merged.Rules, doc.Rules...)
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to walk rule set directory %q: %w", l.path, err)
		}
	}

	if err := merged.Validate(); err != nil {
		return nil, err
	}

	l.logger.Info("rule set loaded",
		"path", l.path,
		"rule_count", len(merged.Rules),
	)
	return &merged, nil
}

// loadFile reads and parses one rule-set file.
func (l *Loader) loadFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rule file %q: %w", path, err)
	}
	doc, err := ParseDocument(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse rule file %q: %w", path, err)
	}
	l.logger.Debug("loaded rule file", "path", path, "rule_count", len(doc.Rules))
	return doc, nil
}

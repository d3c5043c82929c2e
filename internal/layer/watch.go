package layer

import (
	"path/filepath"

	"github.com/bmatcuk/doublestar"
)

// watchList gathers the files a rerun depends on: every nuxt.config, every
// configuration file read and the existing candidates of each relative import
// that backs a surviving value. Excluded paths are dropped.
func (l *Loader) watchList(layers []Layer, results []*Result) []string {
	set := newPathSet()
	for _, layer := range layers {
		set.add(layer.NuxtConfig())
	}
	for _, res := range results {
		for _, file := range res.Files {
			set.add(file)
		}
		for _, imp := range res.Registry.Imports() {
			if !imp.Relative {
				continue
			}
			target := filepath.FromSlash(imp.From)
			if info, err := l.reader.Fs().Stat(target); err == nil && !info.IsDir() {
				set.add(target)
			}
			for _, path := range l.reader.Existing(target) {
				set.add(path)
			}
		}
	}

	var out []string
	for _, path := range set.list() {
		if l.excluded(path) {
			continue
		}
		out = append(out, path)
	}
	return out
}

func (l *Loader) excluded(path string) bool {
	slashed := filepath.ToSlash(path)
	for _, pattern := range l.opts.Exclude {
		matched, err := doublestar.Match(pattern, slashed)
		if err != nil {
			l.logger.Warn("invalid watch exclude pattern", "pattern", pattern, "error", err)
			continue
		}
		if matched {
			return true
		}
	}
	return false
}

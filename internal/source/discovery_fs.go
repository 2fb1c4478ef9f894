package source

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
)

// FileSystemDiscovery finds inputs below a root directory using glob
// patterns relative to it. A "**" segment matches any number of directories.
type FileSystemDiscovery struct {
	root  string
	files []File
}

// NewFileSystemDiscovery walks root and classifies every file matching one
// of the schema or document patterns. Schema files ending in .json are
// introspection results.
func NewFileSystemDiscovery(ctx context.Context, root string, schemaGlobs, documentGlobs []string) (*FileSystemDiscovery, error) {
	d := &FileSystemDiscovery{root: root}
	err := filepath.WalkDir(root, func(p string, entry os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if entry.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return fmt.Errorf("failed to get relative path for %q: %w", p, err)
		}
		rel = filepath.ToSlash(rel)
		switch {
		case matchAny(schemaGlobs, rel):
			kind := KindSchema
			if strings.EqualFold(path.Ext(rel), ".json") {
				kind = KindIntrospection
			}
			d.files = append(d.files, File{Path: rel, Kind: kind})
		case matchAny(documentGlobs, rel):
			d.files = append(d.files, File{Path: rel, Kind: KindDocument})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk root directory %q: %w", root, err)
	}
	sortFiles(d.files)
	return d, nil
}

// List implements Discovery.
func (d *FileSystemDiscovery) List(ctx context.Context) ([]File, error) {
	return append([]File(nil), d.files...), nil
}

// Read implements Discovery.
func (d *FileSystemDiscovery) Read(ctx context.Context, p string) (string, error) {
	content, err := os.ReadFile(filepath.Join(d.root, filepath.FromSlash(p)))
	if err != nil {
		return "", fmt.Errorf("failed to read %q: %w", p, err)
	}
	return string(content), nil
}

func sortFiles(files []File) {
	sort.SliceStable(files, func(i, j int) bool {
		ri, rj := kindRank(files[i].Kind), kindRank(files[j].Kind)
		if ri != rj {
			return ri < rj
		}
		return files[i].Path < files[j].Path
	})
}

func matchAny(patterns []string, rel string) bool {
	for _, p := range patterns {
		if match(strings.Split(path.Clean(p), "/"), strings.Split(rel, "/")) {
			return true
		}
	}
	return false
}

// match reports whether the path segments name match the pattern segments.
func match(pattern, name []string) bool {
	for len(pattern) > 0 {
		if pattern[0] == "**" {
			for i := 0; i <= len(name); i++ {
				if match(pattern[1:], name[i:]) {
					return true
				}
			}
			return false
		}
		if len(name) == 0 {
			return false
		}
		ok, err := path.Match(pattern[0], name[0])
		if err != nil || !ok {
			return false
		}
		pattern, name = pattern[1:], name[1:]
	}
	return len(name) == 0
}

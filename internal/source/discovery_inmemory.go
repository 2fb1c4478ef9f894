package source

import (
	"context"
	"fmt"
)

// InMemoryFile is an input held in memory.
type InMemoryFile struct {
	Path    string
	Kind    Kind
	Content string
}

// InMemoryDiscovery serves inputs from memory.
type InMemoryDiscovery struct {
	files    []File
	contents map[string]string
}

// NewInMemoryDiscovery creates a discovery over files.
func NewInMemoryDiscovery(files []InMemoryFile) *InMemoryDiscovery {
	d := &InMemoryDiscovery{contents: make(map[string]string, len(files))}
	for _, f := range files {
		d.files = append(d.files, File{Path: f.Path, Kind: f.Kind})
		d.contents[f.Path] = f.Content
	}
	sortFiles(d.files)
	return d
}

// List implements Discovery.
func (d *InMemoryDiscovery) List(ctx context.Context) ([]File, error) {
	return append([]File(nil), d.files...), nil
}

// Read implements Discovery.
func (d *InMemoryDiscovery) Read(ctx context.Context, path string) (string, error) {
	content, ok := d.contents[path]
	if !ok {
		return "", fmt.Errorf("file %q not found", path)
	}
	return content, nil
}

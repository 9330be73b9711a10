package asset

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// The Resource type wraps a streamable model file or one of the files it
// references (material libraries, included object files).
type Resource struct {
	io.ReadCloser
	path string
}

// Returns the path to this resource.
func (r *Resource) Path() string {
	return r.path
}

// Returns the directory that relative references in this resource are
// resolved against.
func (r *Resource) Dir() string {
	return filepath.Dir(r.path)
}

// Open a resource. If relTo is specified and pathToResource is relative, the
// path is resolved against the directory of relTo. Windows style separators
// are normalized because exporters emit them in mtllib statements.
//
// The caller must close the returned resource.
func NewResource(pathToResource string, relTo *Resource) (*Resource, error) {
	path := filepath.FromSlash(strings.Replace(pathToResource, `\`, `/`, -1))

	if !filepath.IsAbs(path) && relTo != nil {
		base, err := filepath.Abs(relTo.Dir())
		if err != nil {
			return nil, fmt.Errorf("resource: could not detect abs path for %s; %s", relTo.path, err.Error())
		}
		path = filepath.Join(base, path)
	}

	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("resource: could not open '%s': %w", path, err)
	}

	return &Resource{
		ReadCloser: f,
		path:       path,
	}, nil
}

// Create a resource from a reader.
func NewResourceFromStream(name string, source io.Reader) *Resource {
	return &Resource{
		ReadCloser: io.NopCloser(source),
		path:       name,
	}
}

package reader

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/assetforge/modelpreview/asset"
	"github.com/assetforge/modelpreview/scene"
)

// The Reader interface is implemented by all model readers.
type Reader interface {
	// Read model geometry from a resource.
	Read(*asset.Resource) (*scene.Geometry, error)
}

// Read model geometry from file.
func ReadGeometry(filename string) (*scene.Geometry, error) {
	// Select reader based on file extension
	var reader Reader
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".obj":
		reader = newWavefrontReader()
	default:
		return nil, fmt.Errorf("%w: no reader for %q", asset.ErrUnsupportedFormat, filepath.Ext(filename))
	}

	res, err := asset.NewResource(filename, nil)
	if err != nil {
		return nil, err
	}
	defer res.Close()

	return reader.Read(res)
}

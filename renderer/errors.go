package renderer

import "errors"

var (
	ErrInvalidArguments = errors.New("renderer: invalid arguments")
	ErrImportFailure    = errors.New("renderer: model import failed")
	ErrRenderFailure    = errors.New("renderer: render failed")
	ErrNoEngine         = errors.New("renderer: no engine attached")
)

package asset

import "errors"

var (
	ErrInputNotFound     = errors.New("asset: input file not found")
	ErrUnsupportedFormat = errors.New("asset: unsupported input format")
)

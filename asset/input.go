package asset

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/h2non/filetype"
)

// Extensions accepted by CheckInput.
var SupportedExtensions = []string{".fbx", ".obj"}

// glTF files are rejected until the blender importer options for them are
// validated against the preview scripts.
var gltfExtensions = []string{".glb", ".gltf"}

// filetype only needs the first 261 bytes to match a signature.
const sniffLen = 261

// Verify that path points to an existing model file the engines can import.
// Content is sniffed so that e.g. a zip archive renamed to .obj is rejected
// before an engine is started.
func CheckInput(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrInputNotFound, path)
		}
		return fmt.Errorf("%w: %s: %w", ErrInputNotFound, path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%w: %s is a directory", ErrInputNotFound, path)
	}

	ext := strings.ToLower(filepath.Ext(path))
	if contains(gltfExtensions, ext) {
		return fmt.Errorf("%w: %s files are not supported yet (glTF import is a known compatibility gap); convert the model to .fbx or .obj", ErrUnsupportedFormat, ext)
	}
	if !contains(SupportedExtensions, ext) {
		return fmt.Errorf("%w: %q (supported: %s)", ErrUnsupportedFormat, ext, strings.Join(SupportedExtensions, ", "))
	}

	return sniff(path)
}

func sniff(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInputNotFound, path, err)
	}
	defer f.Close()

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return fmt.Errorf("asset: could not read %s: %w", path, err)
	}

	kind, _ := filetype.Match(head[:n])
	if kind != filetype.Unknown {
		return fmt.Errorf("%w: %s contains %s data (%s)", ErrUnsupportedFormat, path, kind.Extension, kind.MIME.Value)
	}
	return nil
}

// Create the parent directory of an output file.
func EnsureOutputDir(outputPath string) error {
	dir := filepath.Dir(outputPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("asset: could not create output dir %s: %w", dir, err)
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

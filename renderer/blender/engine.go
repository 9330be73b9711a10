// Package blender renders previews by driving a blender binary in background
// mode.
package blender

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/assetforge/modelpreview/log"
	"github.com/assetforge/modelpreview/renderer"
	"github.com/assetforge/modelpreview/scene"
)

// Options controls how blender is invoked.
type Options struct {
	// Path to the blender executable.
	Binary string

	// Extra arguments passed to blender before the script arguments.
	ExtraArgs []string

	// Limit for each blender run. Zero means no limit.
	Timeout time.Duration
}

// Engine imports and renders models by running blender with embedded python
// scripts.
type Engine struct {
	opts   Options
	logger log.Logger
}

// Create a new blender engine.
func NewEngine(opts Options) *Engine {
	if opts.Binary == "" {
		opts.Binary = "blender"
	}
	return &Engine{
		opts:   opts,
		logger: log.New("blender"),
	}
}

func (e *Engine) Name() string {
	return "blender"
}

// Import runs the probe script against the model and returns a session
// holding the reported meshes. Blender does not keep state between runs so
// the session re-imports the model when rendering.
func (e *Engine) Import(ctx context.Context, inputPath string) (renderer.Session, error) {
	workDir, err := os.MkdirTemp("", "modelpreview-blender-")
	if err != nil {
		return nil, fmt.Errorf("blender: could not create work dir: %w", err)
	}

	sess := &session{
		engine:    e,
		workDir:   workDir,
		inputPath: inputPath,
	}

	probePath := filepath.Join(workDir, "probe.py")
	if err = os.WriteFile(probePath, probeScript, 0644); err != nil {
		sess.Close()
		return nil, fmt.Errorf("blender: could not write probe script: %w", err)
	}

	output, err := e.run(ctx, probePath, inputPath)
	if err != nil {
		sess.Close()
		return nil, err
	}

	if sess.geometry, err = parseProbeOutput(output); err != nil {
		sess.Close()
		return nil, err
	}

	e.logger.Infof("blender reported %d meshes", sess.geometry.Len())
	return sess, nil
}

// Run blender in background mode with the given python script. Script
// errors make blender exit with a non-zero status.
func (e *Engine) run(ctx context.Context, script string, scriptArgs ...string) ([]byte, error) {
	if e.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.opts.Timeout)
		defer cancel()
	}

	args := []string{"-b"}
	args = append(args, e.opts.ExtraArgs...)
	args = append(args, "--python-exit-code", "1", "-P", script, "--")
	args = append(args, scriptArgs...)

	e.logger.Debugf("running %s %s", e.opts.Binary, strings.Join(args, " "))
	start := time.Now()

	cmd := exec.CommandContext(ctx, e.opts.Binary, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return output, fmt.Errorf("blender: %s timed out after %s", filepath.Base(script), e.opts.Timeout)
		}
		if msg := scriptError(output); msg != "" {
			return output, fmt.Errorf("blender: %s: %s", filepath.Base(script), msg)
		}
		return output, fmt.Errorf("blender: %s failed: %w; output: %s", filepath.Base(script), err, strings.TrimSpace(string(output)))
	}

	e.logger.Debugf("%s completed in %d ms", filepath.Base(script), time.Since(start).Nanoseconds()/1e6)
	return output, nil
}

// Find the message reported by the embedded scripts on failure.
func scriptError(output []byte) string {
	for _, line := range strings.Split(string(output), "\n") {
		if strings.HasPrefix(line, errorMarker) {
			return strings.TrimSpace(strings.TrimPrefix(line, errorMarker))
		}
	}
	return ""
}

type session struct {
	engine    *Engine
	workDir   string
	inputPath string
	geometry  *scene.Geometry
}

func (s *session) Geometry() *scene.Geometry {
	return s.geometry
}

// Render writes a script with the frame settings baked in and runs it.
func (s *session) Render(ctx context.Context, frame renderer.Frame, outputPath string) error {
	script, err := renderScript(frame)
	if err != nil {
		return err
	}

	scriptPath := filepath.Join(s.workDir, "render.py")
	if err = os.WriteFile(scriptPath, script, 0644); err != nil {
		return fmt.Errorf("blender: could not write render script: %w", err)
	}

	absOutput, err := filepath.Abs(outputPath)
	if err != nil {
		return fmt.Errorf("blender: %w", err)
	}

	// write_still does not always fail loudly; drop any earlier preview so
	// the check below only sees this run's output.
	if err = os.Remove(absOutput); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("blender: could not remove previous output: %w", err)
	}

	if _, err = s.engine.run(ctx, scriptPath, s.inputPath, absOutput); err != nil {
		return err
	}

	if _, err = os.Stat(absOutput); err != nil {
		return fmt.Errorf("blender: no image written to %s", absOutput)
	}
	return nil
}

func (s *session) Close() error {
	return os.RemoveAll(s.workDir)
}

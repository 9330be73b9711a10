package cmd

import (
	"context"
	"path/filepath"
	"time"

	"github.com/assetforge/modelpreview/renderer"
	"github.com/fsnotify/fsnotify"
	"github.com/urfave/cli"
)

// Exporters often write a model in several steps; wait for the writes to
// settle before rendering.
const watchSettleDelay = 250 * time.Millisecond

// Render a preview and render it again whenever the input file changes.
func WatchModel(ctx *cli.Context) error {
	cfg, err := setup(ctx)
	if err != nil {
		return err
	}

	req, err := parseRequest(ctx.Args(), true)
	if err != nil {
		return err
	}

	engine, err := newEngine(cfg)
	if err != nil {
		return err
	}
	driver := renderer.NewDriver(engine)

	runCtx, cancel := signalContext()
	defer cancel()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	// Watch the parent dir so files replaced by rename are still tracked.
	inputPath, err := filepath.Abs(req.InputPath)
	if err != nil {
		return err
	}
	if err = watcher.Add(filepath.Dir(inputPath)); err != nil {
		return err
	}

	render := func() {
		stats, err := driver.Render(runCtx, req)
		if err != nil {
			logger.Errorf("render failed: %s", err)
			return
		}
		displayFrameStats(stats)
	}

	render()
	logger.Noticef("watching %s for changes; press ctrl+c to exit", req.InputPath)
	watchChanges(runCtx, watcher, inputPath, watchSettleDelay, render)
	return nil
}

// Returns true if the event modifies the file at path.
func isInputChange(evt fsnotify.Event, path string) bool {
	if filepath.Clean(evt.Name) != path {
		return false
	}
	return evt.Has(fsnotify.Write) || evt.Has(fsnotify.Create)
}

// Invoke onChange once changes to path have settled for settleDelay. Blocks
// until ctx is cancelled or the watcher is closed.
func watchChanges(ctx context.Context, watcher *fsnotify.Watcher, path string, settleDelay time.Duration, onChange func()) {
	var settle <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return
		case evt, ok := <-watcher.Events:
			if !ok {
				return
			}
			if !isInputChange(evt, path) {
				continue
			}
			logger.Debugf("input changed (%s)", evt.Op)
			settle = time.After(settleDelay)
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logger.Warningf("watcher error: %s", err)
		case <-settle:
			settle = nil
			onChange()
		}
	}
}

package cmd

import (
	"bytes"
	"fmt"

	"github.com/assetforge/modelpreview/renderer"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
)

// Render a preview image.
func RenderPreview(ctx *cli.Context) error {
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

	runCtx, cancel := signalContext()
	defer cancel()

	stats, err := renderer.NewDriver(engine).Render(runCtx, req)
	if err != nil {
		return err
	}

	displayFrameStats(stats)
	return nil
}

func displayFrameStats(stats *renderer.FrameStats) {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Engine", "Meshes", "Quality", "Resolution", "Import time", "Render time"})
	table.Append([]string{
		stats.Engine,
		fmt.Sprintf("%d", stats.MeshCount),
		stats.Plan.Request.Quality.String(),
		fmt.Sprintf("%dx%d", stats.Plan.Frame.Profile.Width, stats.Plan.Frame.Profile.Height),
		stats.ImportTime.String(),
		stats.RenderTime.String(),
	})
	table.SetFooter([]string{"", "", "", "", "OUTPUT", stats.OutputPath})

	table.Render()
	logger.Noticef("frame statistics\n%s", buf.String())
}

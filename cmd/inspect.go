package cmd

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/assetforge/modelpreview/renderer"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
)

// Print the bounds, camera, lights and render settings that would be used
// for a model without rendering it.
func InspectModel(ctx *cli.Context) error {
	cfg, err := setup(ctx)
	if err != nil {
		return err
	}

	req, err := parseRequest(ctx.Args(), false)
	if err != nil {
		return err
	}

	engine, err := newEngine(cfg)
	if err != nil {
		return err
	}

	runCtx, cancel := signalContext()
	defer cancel()

	plan, err := renderer.NewDriver(engine).Plan(runCtx, req)
	if err != nil {
		return err
	}

	return writePlanTable(os.Stdout, engine.Name(), plan)
}

func writePlanTable(w io.Writer, engineName string, plan *renderer.Plan) error {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeader([]string{"Property", "Value"})

	table.Append([]string{"Engine", engineName})
	table.Append([]string{"Meshes", fmt.Sprintf("%d", plan.MeshCount)})
	if plan.Bounds != nil {
		table.Append([]string{"Bounds min", plan.Bounds.Min.String()})
		table.Append([]string{"Bounds max", plan.Bounds.Max.String()})
		table.Append([]string{"Center", plan.Bounds.Center.String()})
		table.Append([]string{"Max extent", fmt.Sprintf("%.3f", plan.Bounds.MaxExtent)})
	} else {
		table.Append([]string{"Bounds", "none (empty scene)"})
	}

	cam := plan.Frame.Camera
	table.Append([]string{"Camera position", cam.Position.String()})
	table.Append([]string{"Camera rotation", fmt.Sprintf("(%.3f, %.3f, %.3f)", cam.Rotation.X, cam.Rotation.Y, cam.Rotation.Z)})
	if cam.Target != nil {
		table.Append([]string{"Camera target", cam.Target.String()})
	}

	lights := plan.Frame.Lighting
	table.Append([]string{"Sun position", lights.SunPosition.String()})
	table.Append([]string{"Sun intensity", fmt.Sprintf("%.2f", lights.SunIntensity)})
	table.Append([]string{"Ambient intensity", fmt.Sprintf("%.2f", lights.AmbientIntensity)})

	p := plan.Frame.Profile
	table.Append([]string{"Quality", plan.Request.Quality.String()})
	table.Append([]string{"Resolution", fmt.Sprintf("%dx%d", p.Width, p.Height)})
	table.Append([]string{"Samples", fmt.Sprintf("%d", p.Samples)})
	table.Append([]string{"Ambient occlusion", fmt.Sprintf("%t", p.AmbientOcclusion)})
	table.Append([]string{"Bloom", fmt.Sprintf("%t", p.Bloom)})
	table.Append([]string{"Reflections", fmt.Sprintf("%t", p.ScreenSpaceReflections)})
	table.Append([]string{"Format", p.Format.FileFormat + " " + p.Format.ColorMode})

	table.Render()
	_, err := w.Write(buf.Bytes())
	return err
}

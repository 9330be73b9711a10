package blender

import (
	"bufio"
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"text/template"

	"github.com/assetforge/modelpreview/renderer"
	"github.com/assetforge/modelpreview/scene"
	"github.com/assetforge/modelpreview/types"
)

// Markers emitted by the embedded scripts.
const (
	meshMarker  = "PREVIEW_MESH "
	errorMarker = "PREVIEW_ERROR "
)

//go:embed scripts/probe.py
var probeScript []byte

//go:embed scripts/render.py.tmpl
var renderScriptSrc string

var renderScriptTpl = template.Must(
	template.New("render.py").Funcs(template.FuncMap{
		"num": pyFloat,
		"vec": pyVec,
		"py":  pyBool,
	}).Parse(renderScriptSrc),
)

// Generate the python script that applies frame and renders it.
func renderScript(frame renderer.Frame) ([]byte, error) {
	var buf bytes.Buffer
	if err := renderScriptTpl.Execute(&buf, frame); err != nil {
		return nil, fmt.Errorf("blender: could not generate render script: %w", err)
	}
	return buf.Bytes(), nil
}

func pyFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func pyVec(v types.Vec3) string {
	return fmt.Sprintf("(%s, %s, %s)", pyFloat(v[0]), pyFloat(v[1]), pyFloat(v[2]))
}

func pyBool(v bool) string {
	if v {
		return "True"
	}
	return "False"
}

// A mesh record printed by the probe script.
type meshRecord struct {
	Name    string        `json:"name"`
	Corners [8][3]float64 `json:"corners"`
	Matrix  [4][4]float64 `json:"matrix"`
}

// Extract the scene meshes from the probe script output. Lines without a
// marker are blender's own logging and are ignored.
func parseProbeOutput(output []byte) (*scene.Geometry, error) {
	geometry := &scene.Geometry{}

	scanner := bufio.NewScanner(bytes.NewReader(output))
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for lineNum := 1; scanner.Scan(); lineNum++ {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, errorMarker):
			return nil, fmt.Errorf("blender: %s", strings.TrimPrefix(line, errorMarker))
		case strings.HasPrefix(line, meshMarker):
			var rec meshRecord
			if err := json.Unmarshal([]byte(strings.TrimPrefix(line, meshMarker)), &rec); err != nil {
				return nil, fmt.Errorf("blender: malformed mesh record at output line %d: %w", lineNum, err)
			}
			mesh, err := rec.mesh()
			if err != nil {
				return nil, fmt.Errorf("blender: mesh record at output line %d: %w", lineNum, err)
			}
			geometry.Meshes = append(geometry.Meshes, mesh)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("blender: could not read probe output: %w", err)
	}
	return geometry, nil
}

func (rec meshRecord) mesh() (*scene.Mesh, error) {
	for _, row := range rec.Matrix {
		for _, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, fmt.Errorf("mesh %q has a non-finite world matrix", rec.Name)
			}
		}
	}

	m := &scene.Mesh{
		Name:  rec.Name,
		World: types.Mat4FromRows(rec.Matrix),
	}
	for i, c := range rec.Corners {
		m.Corners[i] = types.XYZ(c[0], c[1], c[2])
		if !m.Corners[i].IsFinite() {
			return nil, fmt.Errorf("mesh %q has a non-finite bounding box corner", rec.Name)
		}
	}
	return m, nil
}

package reader

import (
	"bufio"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/assetforge/modelpreview/asset"
	"github.com/assetforge/modelpreview/log"
	"github.com/assetforge/modelpreview/scene"
	"github.com/assetforge/modelpreview/types"
)

// Diffuse color for faces that are not assigned a material.
var defaultDiffuse = types.Vec3{0.7, 0.7, 0.7}

type wavefrontMaterial struct {
	Name string

	// Diffuse/Albedo color.
	Kd types.Vec3
}

type wavefrontMesh struct {
	Name      string
	Triangles []scene.Triangle

	// The material selected when the first face of the mesh was parsed.
	material *wavefrontMaterial
}

type wavefrontInstance struct {
	meshIndex int
	transform types.Mat4
}

type wavefrontSceneReader struct {
	logger log.Logger

	meshes    []*wavefrontMesh
	instances []wavefrontInstance

	// A map of material names to parsed wavefront materials
	materials map[string]*wavefrontMaterial

	// Currently selected material.
	curMaterial *wavefrontMaterial

	// Vertex coordinates. Only the number of uv and normal coords is
	// tracked so face indices can be validated.
	vertexList  []types.Vec3
	uvCount     int
	normalCount int

	// An error stack that provides additional error information when
	// model files include other files (models, mat libs e.t.c)
	errStack []string
}

// Create a new wavefront model reader.
func newWavefrontReader() *wavefrontSceneReader {
	return &wavefrontSceneReader{
		logger:     log.New("wavefront reader"),
		materials:  make(map[string]*wavefrontMaterial),
		vertexList: make([]types.Vec3, 0),
		errStack:   make([]string, 0),
	}
}

// Read model geometry.
func (r *wavefrontSceneReader) Read(res *asset.Resource) (*scene.Geometry, error) {
	r.logger.Infof(`parsing model from "%s"`, res.Path())
	start := time.Now()

	err := r.parse(res)
	if err != nil {
		return nil, err
	}

	// Place meshes that are never instanced at the origin
	instanced := make(map[int]bool, len(r.instances))
	for _, inst := range r.instances {
		instanced[inst.meshIndex] = true
	}
	for meshIndex := range r.meshes {
		if !instanced[meshIndex] {
			r.instances = append(r.instances, wavefrontInstance{meshIndex: meshIndex, transform: types.Ident4()})
		}
	}

	geometry := r.buildGeometry()
	r.logger.Infof("parsed %d meshes (%d triangles) in %d ms", geometry.Len(), geometry.TriangleCount(), time.Since(start).Nanoseconds()/1e6)
	return geometry, nil
}

// Emit a scene mesh for each parsed mesh instance.
func (r *wavefrontSceneReader) buildGeometry() *scene.Geometry {
	geometry := &scene.Geometry{
		Meshes: make([]*scene.Mesh, 0, len(r.instances)),
	}

	for _, inst := range r.instances {
		mesh := r.meshes[inst.meshIndex]
		color := defaultDiffuse
		if mesh.material != nil {
			color = mesh.material.Kd
		}

		geometry.Meshes = append(geometry.Meshes, &scene.Mesh{
			Name:      mesh.Name,
			Corners:   scene.TriangleCorners(mesh.Triangles),
			World:     inst.transform,
			Triangles: mesh.Triangles,
			Color:     color,
		})
	}

	return geometry
}

// Generate an error message that also includes any data in the error stack.
func (r *wavefrontSceneReader) emitError(file string, line int, msgFormat string, args ...interface{}) error {
	msg := fmt.Sprintf(msgFormat, args...)

	var errMsg string
	if file != "" {
		errMsg = fmt.Sprintf("[%s: %d] error: %s\n%s", file, line, msg, strings.Join(r.errStack, "\n"))
	} else {
		errMsg = fmt.Sprintf("error: %s\n%s", msg, strings.Join(r.errStack, "\n"))
	}

	return fmt.Errorf("wavefront: %s", strings.Trim(errMsg, "\n"))
}

// Push a frame to the error stack.
func (r *wavefrontSceneReader) pushFrame(msg string) {
	r.errStack = append([]string{msg}, r.errStack...)
}

// Pop a frame from the error stack.
func (r *wavefrontSceneReader) popFrame() {
	r.errStack = r.errStack[1:]
}

// Parse wavefront object format.
func (r *wavefrontSceneReader) parse(res *asset.Resource) error {
	var lineNum int

	// The main obj file may include (call) several other object files. Each
	// object file contains 1-based indices (when they are positive). By
	// tracking the current vertex/uv/normal offsets we can apply them
	// while parsing faces to select the correct coordinates.
	relVertexOffset := len(r.vertexList)
	relUvOffset := r.uvCount
	relNormalOffset := r.normalCount

	scanner := bufio.NewScanner(res)
	for scanner.Scan() {
		lineNum++
		lineTokens := strings.Fields(scanner.Text())
		if len(lineTokens) == 0 || strings.HasPrefix(lineTokens[0], "#") {
			continue
		}

		switch lineTokens[0] {
		case "call", "mtllib":
			if len(lineTokens) != 2 {
				return r.emitError(res.Path(), lineNum, `unsupported syntax for "%s"; expected 1 argument; got %d`, lineTokens[0], len(lineTokens)-1)
			}

			r.pushFrame(fmt.Sprintf("referenced from %s:%d [%s]", res.Path(), lineNum, lineTokens[0]))

			incRes, err := asset.NewResource(lineTokens[1], res)
			if err != nil {
				return r.emitError(res.Path(), lineNum, "%s", err.Error())
			}

			switch lineTokens[0] {
			case "call":
				err = r.parse(incRes)
			case "mtllib":
				err = r.parseMaterials(incRes)
			}
			incRes.Close()

			if err != nil {
				return err
			}
			r.popFrame()
		case "usemtl":
			if len(lineTokens) != 2 {
				return r.emitError(res.Path(), lineNum, `unsupported syntax for 'usemtl'; expected 1 argument; got %d`, len(lineTokens)-1)
			}

			mat, exists := r.materials[lineTokens[1]]
			if !exists {
				return r.emitError(res.Path(), lineNum, `undefined material with name "%s"`, lineTokens[1])
			}
			r.curMaterial = mat
		case "v":
			v, err := parseVec3(lineTokens)
			if err != nil {
				return r.emitError(res.Path(), lineNum, "%s", err.Error())
			}
			r.vertexList = append(r.vertexList, v)
		case "vn", "vt":
			if len(lineTokens) < 3 {
				return r.emitError(res.Path(), lineNum, `unsupported syntax for "%s"; expected at least 2 arguments; got %d`, lineTokens[0], len(lineTokens)-1)
			}
			if lineTokens[0] == "vn" {
				r.normalCount++
			} else {
				r.uvCount++
			}
		case "g", "o":
			if len(lineTokens) < 2 {
				return r.emitError(res.Path(), lineNum, `unsupported syntax for "%s"; expected 1 argument for object name; got %d`, lineTokens[0], len(lineTokens)-1)
			}

			r.verifyLastParsedMesh()
			r.meshes = append(r.meshes, &wavefrontMesh{Name: lineTokens[1]})
		case "f":
			tris, err := r.parseFace(lineTokens, relVertexOffset, relUvOffset, relNormalOffset)
			if err != nil {
				return r.emitError(res.Path(), lineNum, "%s", err.Error())
			}

			// If no object has been defined create a default one
			if len(r.meshes) == 0 {
				r.meshes = append(r.meshes, &wavefrontMesh{Name: "default"})
			}

			mesh := r.meshes[len(r.meshes)-1]
			if len(mesh.Triangles) == 0 {
				mesh.material = r.curMaterial
			}
			mesh.Triangles = append(mesh.Triangles, tris...)
		case "instance":
			instance, err := r.parseMeshInstance(lineTokens)
			if err != nil {
				return r.emitError(res.Path(), lineNum, "%s", err.Error())
			}
			r.instances = append(r.instances, instance)
		}
	}

	if err := scanner.Err(); err != nil {
		return r.emitError(res.Path(), lineNum, "%s", err.Error())
	}

	r.verifyLastParsedMesh()
	return nil
}

// Drop the last parsed mesh if it contains no faces.
func (r *wavefrontSceneReader) verifyLastParsedMesh() {
	lastMeshIndex := len(r.meshes) - 1
	if lastMeshIndex >= 0 && len(r.meshes[lastMeshIndex].Triangles) == 0 {
		r.logger.Warningf(`dropping mesh "%s" as it contains no polygons`, r.meshes[lastMeshIndex].Name)
		r.meshes = r.meshes[:lastMeshIndex]
	}
}

// Parse mesh instance definition. Definitions use the following format:
// instance mesh_name tX tY tZ rX rY rZ sX sY sZ
// where:
// - tX, tY, tZ : translation vector
// - rX, rY, rZ : XYZ euler rotation angles in degrees
// - sX, sY, sZ : scale
func (r *wavefrontSceneReader) parseMeshInstance(lineTokens []string) (wavefrontInstance, error) {
	if len(lineTokens) != 11 {
		return wavefrontInstance{}, fmt.Errorf(`unsupported syntax for "instance"; expected 10 arguments: mesh_name tX tY tZ rX rY rZ sX sY sZ; got %d`, len(lineTokens)-1)
	}

	// Find object by name
	meshName := lineTokens[1]
	meshIndex := -1
	for index, mesh := range r.meshes {
		if mesh.Name == meshName {
			meshIndex = index
			break
		}
	}

	if meshIndex == -1 {
		return wavefrontInstance{}, fmt.Errorf(`unknown mesh with name "%s"`, meshName)
	}
	if len(r.meshes[meshIndex].Triangles) == 0 {
		return wavefrontInstance{}, fmt.Errorf(`mesh "%s" contains no polygons`, meshName)
	}

	var args [9]float64
	for index := range args {
		v, err := parseFloat(lineTokens[index+2])
		if err != nil {
			return wavefrontInstance{}, err
		}
		args[index] = v
	}

	deg := math.Pi / 180.0
	translation := types.Vec3{args[0], args[1], args[2]}
	rotation := types.Euler{X: args[3] * deg, Y: args[4] * deg, Z: args[5] * deg}
	scale := types.Vec3{args[6], args[7], args[8]}

	// Generate final matrix: M = T * R * S
	transform := types.Translate4(translation).Mul4(rotation.Mat4().Mul4(types.Scale4(scale)))

	return wavefrontInstance{meshIndex: meshIndex, transform: transform}, nil
}

// Parse face definition. Each face definitions consists of 3 or 4
// arguments, one for each vertex. Each one of the vertex arguments is
// comprised of 1, 2 or 3 args separated by a slash character. The following
// formats are supported:
// - vertexIndex
// - vertexIndex/uvIndex
// - vertexIndex//normalIndex
// - vertexIndex/uvIndex/normalIndex
//
// Indices start from 1 and may be negative to indicate
// an offset off the end of the vertex/uv list.
//
// Quads are split into two triangles.
func (r *wavefrontSceneReader) parseFace(lineTokens []string, relVertexOffset, relUvOffset, relNormalOffset int) ([]scene.Triangle, error) {
	if len(lineTokens) < 4 || len(lineTokens) > 5 {
		return nil, fmt.Errorf(`unsupported syntax for "f"; expected 3 arguments for triangular face or 4 arguments for a quad face; got %d. Select the triangulation option in your exporter`, len(lineTokens)-1)
	}

	var vertices [4]types.Vec3
	expIndices := 0
	for arg := 0; arg < len(lineTokens)-1; arg++ {
		vTokens := strings.Split(lineTokens[arg+1], "/")

		// The first arg defines the format for the following args
		if arg == 0 {
			expIndices = len(vTokens)
		} else if len(vTokens) != expIndices {
			return nil, fmt.Errorf("expected each face argument to contain %d indices; arg %d contains %d indices", expIndices, arg, len(vTokens))
		}

		// Faces must at least define a vertex coord
		if vTokens[0] == "" {
			return nil, fmt.Errorf("face argument %d does not include a vertex index", arg)
		}

		vOffset, err := selectFaceCoordIndex(vTokens[0], len(r.vertexList), relVertexOffset)
		if err != nil {
			return nil, fmt.Errorf("could not parse vertex coord for face argument %d: %s", arg, err.Error())
		}
		vertices[arg] = r.vertexList[vOffset]

		if expIndices > 1 && vTokens[1] != "" {
			if _, err = selectFaceCoordIndex(vTokens[1], r.uvCount, relUvOffset); err != nil {
				return nil, fmt.Errorf("could not parse tex coord for face argument %d: %s", arg, err.Error())
			}
		}

		if expIndices > 2 && vTokens[2] != "" {
			if _, err = selectFaceCoordIndex(vTokens[2], r.normalCount, relNormalOffset); err != nil {
				return nil, fmt.Errorf("could not parse normal coord for face argument %d: %s", arg, err.Error())
			}
		}
	}

	tris := []scene.Triangle{{vertices[0], vertices[1], vertices[2]}}
	if len(lineTokens) == 5 {
		tris = append(tris, scene.Triangle{vertices[0], vertices[2], vertices[3]})
	}
	return tris, nil
}

// Parse a wavefront material library. Only diffuse colors are used by the
// preview engines; other properties are skipped.
func (r *wavefrontSceneReader) parseMaterials(res *asset.Resource) error {
	var lineNum int
	var err error

	r.logger.Infof(`parsing material library "%s"`, res.Path())

	scanner := bufio.NewScanner(res)

	var curMaterial *wavefrontMaterial

	for scanner.Scan() {
		lineNum++
		lineTokens := strings.Fields(scanner.Text())
		if len(lineTokens) == 0 || strings.HasPrefix(lineTokens[0], "#") {
			continue
		}

		switch lineTokens[0] {
		case "newmtl":
			if len(lineTokens) != 2 {
				return r.emitError(res.Path(), lineNum, `unsupported syntax for "newmtl"; expected 1 argument; got %d`, len(lineTokens)-1)
			}

			matName := lineTokens[1]
			if _, exists := r.materials[matName]; exists {
				return r.emitError(res.Path(), lineNum, `material "%s" already defined`, matName)
			}

			curMaterial = &wavefrontMaterial{Name: matName, Kd: defaultDiffuse}
			r.materials[matName] = curMaterial
		default:
			if curMaterial == nil {
				return r.emitError(res.Path(), lineNum, `got "%s" without a "newmtl"`, lineTokens[0])
			}

			switch lineTokens[0] {
			case "include":
				if len(lineTokens) < 2 {
					return r.emitError(res.Path(), lineNum, `unsupported syntax for "%s"; expected 1 argument; got %d`, lineTokens[0], len(lineTokens)-1)
				}

				base, exists := r.materials[lineTokens[1]]
				if !exists {
					return r.emitError(res.Path(), lineNum, `could not include unknown material "%s"`, lineTokens[1])
				}

				// Overwrite material but keep the original name
				curMaterial.Kd = base.Kd
			case "Kd":
				curMaterial.Kd, err = parseVec3(lineTokens)
			}

			if err != nil {
				return r.emitError(res.Path(), lineNum, "%s", err.Error())
			}
		}
	}

	return scanner.Err()
}

// Given an index for a face coord type (vertex, normal, tex) calculate the
// proper offset into the coord list. Wavefront format can also use negative
// indices to reference elements from the end of the coord list.
func selectFaceCoordIndex(indexToken string, coordListLen int, relOffset int) (int, error) {
	index, err := strconv.ParseInt(indexToken, 10, 32)
	if err != nil {
		return -1, err
	}

	var vOffset int
	if index < 0 {
		vOffset = coordListLen + int(index)
	} else {
		vOffset = relOffset + int(index-1)
	}
	if vOffset < 0 || vOffset >= coordListLen {
		return -1, fmt.Errorf("index out of bounds")
	}
	return vOffset, nil
}

// Parse a Vec3 row.
func parseVec3(lineTokens []string) (types.Vec3, error) {
	if len(lineTokens) < 4 {
		return types.Vec3{}, fmt.Errorf(`unsupported syntax for "%s"; expected 3 arguments; got %d`, lineTokens[0], len(lineTokens)-1)
	}

	v := types.Vec3{}
	for tokIdx := 1; tokIdx <= 3; tokIdx++ {
		coord, err := parseFloat(lineTokens[tokIdx])
		if err != nil {
			return v, err
		}
		v[tokIdx-1] = coord
	}
	return v, nil
}

// Parse a finite float. ParseFloat also accepts "inf" and "nan".
func parseFloat(token string) (float64, error) {
	v, err := strconv.ParseFloat(token, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("non-finite value %q", token)
	}
	return v, nil
}

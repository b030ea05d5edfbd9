package server

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"gonum.org/v1/gonum/floats"

	"github.com/ironsheep/keypoint-density-mcp/internal/annotation"
	"github.com/ironsheep/keypoint-density-mcp/internal/density"
	"github.com/ironsheep/keypoint-density-mcp/internal/imaging"
	"github.com/ironsheep/keypoint-density-mcp/internal/npy"
)

// Limits on request sizes. Kernels and maps are allocated up front, so an
// unchecked radius or shape from a client could exhaust memory.
const (
	maxKernelRadius = 64
	maxDrawRadius   = density.MaxFootprintRadius
	maxMapCells     = density.MaxCells
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "density_generate").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		if s.cfg.Debug {
			log.Printf("tool %s failed: %v", params.Name, err)
		}
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
//
// Each tool handler:
//  1. Unmarshals arguments from JSON
//  2. Applies default values for optional parameters
//  3. Resolves the map shape from an image or explicit dimensions
//  4. Calls the appropriate density/npy/imaging function
//  5. Returns the result or error
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Image Information
	case "image_dimensions":
		return s.handleImageDimensions(args)

	// Kernel Operations
	case "density_kernel":
		return s.handleDensityKernel(args)
	case "density_radii":
		return s.handleDensityRadii(args)

	// Density Synthesis
	case "density_generate":
		return s.handleDensityGenerate(args)
	case "density_draw":
		return s.handleDensityDraw(args)
	case "density_batch":
		return s.handleDensityBatch(args)
	case "density_inspect":
		return s.handleDensityInspect(args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// Panics are suppressed; on marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// params merges per-call overrides onto the configured radius bounds.
func (s *Server) params(maxScale, maxRadius float64) density.Params {
	p := s.cfg.Params
	if maxScale != 0 {
		p.MaxScale = maxScale
	}
	if maxRadius != 0 {
		p.MaxRadius = maxRadius
	}
	return p
}

// resolveShape returns the (height, width) of the map to build: the image's
// dimensions when path is set, otherwise the explicit values.
func (s *Server) resolveShape(path string, width, height int) (int, int, error) {
	if path != "" {
		dims, err := imaging.GetDimensions(s.cache, path)
		if err != nil {
			return 0, 0, err
		}
		width, height = dims.Width, dims.Height
	}
	if width <= 0 || height <= 0 {
		return 0, 0, fmt.Errorf("map shape required: give an image path or positive width and height (got %dx%d)", width, height)
	}
	if width > maxMapCells/height {
		return 0, 0, fmt.Errorf("map %dx%d exceeds %d cells", width, height, maxMapCells)
	}
	return height, width, nil
}

// === Image Information Handlers ===

type imageDimensionsArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleImageDimensions(args json.RawMessage) (interface{}, error) {
	var a imageDimensionsArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return imaging.GetDimensions(s.cache, a.Path)
}

// === Kernel Operation Handlers ===

type densityKernelArgs struct {
	Radius int     `json:"radius"`
	Delta  float64 `json:"delta"`
}

// KernelResult is a footprint together with its total mass.
type KernelResult struct {
	density.Kernel
	Radius int     `json:"radius"`
	Sum    float64 `json:"sum"`
}

func (s *Server) handleDensityKernel(args json.RawMessage) (interface{}, error) {
	var a densityKernelArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Delta == 0 {
		a.Delta = density.DefaultDelta
	}
	if a.Radius < 0 || a.Radius > maxKernelRadius {
		return nil, fmt.Errorf("radius must be between 0 and %d, got %d", maxKernelRadius, a.Radius)
	}
	if a.Delta < 0 {
		return nil, fmt.Errorf("delta must be positive, got %g", a.Delta)
	}

	k := density.Footprint(a.Radius, a.Delta)
	return &KernelResult{Kernel: k, Radius: a.Radius, Sum: floats.Sum(k.Weights)}, nil
}

type densityRadiiArgs struct {
	Points    []annotation.Click `json:"points"`
	MaxScale  float64            `json:"max_scale"`
	MaxRadius float64            `json:"max_radius"`
}

// RadiiResult lists the adaptive radius picked for each drawn point.
type RadiiResult struct {
	PointCount int            `json:"point_count"`
	Params     density.Params `json:"params"`
	Radii      []int          `json:"radii"`
}

func (s *Server) handleDensityRadii(args json.RawMessage) (interface{}, error) {
	var a densityRadiiArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	params := s.params(a.MaxScale, a.MaxRadius)
	if err := params.Validate(); err != nil {
		return nil, err
	}
	points := annotation.Points(a.Points)
	radii := density.Radii(points, params)
	if radii == nil {
		radii = []int{}
	}
	return &RadiiResult{PointCount: len(points), Params: params, Radii: radii}, nil
}

// === Density Synthesis Handlers ===

type densityGenerateArgs struct {
	Path         string             `json:"path"`
	Width        int                `json:"width"`
	Height       int                `json:"height"`
	Points       []annotation.Click `json:"points"`
	ScaleFactor  float64            `json:"scale_factor"`
	MaxScale     float64            `json:"max_scale"`
	MaxRadius    float64            `json:"max_radius"`
	Normalize    *bool              `json:"normalize"`
	OutputPath   string             `json:"output_path"`
	Preview      bool               `json:"preview"`
	PreviewScale float64            `json:"preview_scale"`
}

// MapStats summarizes a density map.
type MapStats struct {
	Width  int     `json:"width"`
	Height int     `json:"height"`
	Sum    float64 `json:"sum"`
	Min    float32 `json:"min"`
	Max    float32 `json:"max"`
}

func statsOf(m *density.Map) MapStats {
	return MapStats{
		Width:  m.Width,
		Height: m.Height,
		Sum:    m.Sum(),
		Min:    m.Min(),
		Max:    m.Max(),
	}
}

// GenerateResult describes a synthesized density map and where it was saved.
type GenerateResult struct {
	MapStats
	PointCount  int                    `json:"point_count"`
	Normalized  bool                   `json:"normalized"`
	Radii       []int                  `json:"radii"`
	DensityFile string                 `json:"density_file,omitempty"`
	SidecarFile string                 `json:"sidecar_file,omitempty"`
	Preview     *imaging.PreviewResult `json:"preview,omitempty"`
}

func (s *Server) handleDensityGenerate(args json.RawMessage) (interface{}, error) {
	var a densityGenerateArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	normalize := a.Normalize == nil || *a.Normalize

	height, width, err := s.resolveShape(a.Path, a.Width, a.Height)
	if err != nil {
		return nil, err
	}

	clicks := a.Points
	if a.ScaleFactor != 0 {
		clicks, err = annotation.ToOriginal(clicks, a.ScaleFactor)
		if err != nil {
			return nil, err
		}
	}
	points := annotation.Points(clicks)
	params := s.params(a.MaxScale, a.MaxRadius)
	if err := params.Validate(); err != nil {
		return nil, err
	}

	m, radii, err := density.SynthesizeWithRadii(points, height, width, params)
	if err != nil {
		return nil, err
	}
	if normalize {
		m.Normalize(len(points))
	}

	if radii == nil {
		radii = []int{}
	}
	res := &GenerateResult{
		MapStats:   statsOf(m),
		PointCount: len(points),
		Normalized: normalize && len(points) > 0,
		Radii:      radii,
	}

	if a.OutputPath != "" {
		if err := npy.WriteFile(a.OutputPath, m); err != nil {
			return nil, err
		}
		sidecarPath := strings.TrimSuffix(a.OutputPath, filepath.Ext(a.OutputPath)) + ".json"
		sidecar := &annotation.Sidecar{
			Density: filepath.Base(a.OutputPath),
			Points:  clicks,
		}
		if a.Path != "" {
			sidecar.Filename = filepath.Base(a.Path)
		}
		if sidecar.Points == nil {
			sidecar.Points = []annotation.Click{}
		}
		if err := annotation.WriteSidecar(sidecarPath, sidecar); err != nil {
			return nil, err
		}
		res.DensityFile = a.OutputPath
		res.SidecarFile = sidecarPath
		if s.cfg.Debug {
			log.Printf("saved density %s (%d points, sum %.4f)", a.OutputPath, len(points), res.Sum)
		}
	}

	if a.Preview {
		if a.PreviewScale == 0 {
			a.PreviewScale = 1.0
		}
		res.Preview, err = imaging.DensityPreview(m, a.PreviewScale)
		if err != nil {
			return nil, err
		}
	}
	return res, nil
}

type densityDrawArgs struct {
	Width      int     `json:"width"`
	Height     int     `json:"height"`
	Footprints []struct {
		X      float64 `json:"x"`
		Y      float64 `json:"y"`
		Radius int     `json:"radius"`
	} `json:"footprints"`
	Overlap   string  `json:"overlap"`
	PeakScale float64 `json:"peak_scale"`
	Delta     float64 `json:"delta"`
	Preview   bool    `json:"preview"`
}

// DrawResult describes a map built from explicit footprints.
type DrawResult struct {
	MapStats
	Overlap string                 `json:"overlap"`
	Drawn   int                    `json:"drawn"`
	Preview *imaging.PreviewResult `json:"preview,omitempty"`
}

func (s *Server) handleDensityDraw(args json.RawMessage) (interface{}, error) {
	var a densityDrawArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	opts := density.DefaultDrawOptions()
	if a.Overlap != "" {
		opts.Overlap = density.OverlapMode(a.Overlap)
	}
	if a.PeakScale != 0 {
		opts.PeakScale = a.PeakScale
	}
	if a.Delta != 0 {
		opts.Delta = a.Delta
	}

	height, width, err := s.resolveShape("", a.Width, a.Height)
	if err != nil {
		return nil, err
	}
	m, err := density.NewMap(height, width)
	if err != nil {
		return nil, err
	}

	for i, f := range a.Footprints {
		if f.Radius > maxDrawRadius {
			return nil, fmt.Errorf("footprint %d: radius %d exceeds %d", i, f.Radius, maxDrawRadius)
		}
		if err := density.DrawGaussian(m, density.Point{X: f.X, Y: f.Y}, f.Radius, opts); err != nil {
			return nil, fmt.Errorf("footprint %d: %w", i, err)
		}
	}

	res := &DrawResult{
		MapStats: statsOf(m),
		Overlap:  string(opts.Overlap),
		Drawn:    len(a.Footprints),
	}
	if a.Preview {
		res.Preview, err = imaging.DensityPreview(m, 1.0)
		if err != nil {
			return nil, err
		}
	}
	return res, nil
}

type densityBatchArgs struct {
	Items []struct {
		Name   string             `json:"name"`
		Path   string             `json:"path"`
		Width  int                `json:"width"`
		Height int                `json:"height"`
		Points []annotation.Click `json:"points"`
	} `json:"items"`
	MaxScale  float64 `json:"max_scale"`
	MaxRadius float64 `json:"max_radius"`
	Normalize *bool   `json:"normalize"`
	OutputDir string  `json:"output_dir"`
}

// BatchItemResult reports the outcome for one image of a batch.
type BatchItemResult struct {
	Name        string    `json:"name"`
	Stats       *MapStats `json:"stats,omitempty"`
	PointCount  int       `json:"point_count"`
	Radii       []int     `json:"radii,omitempty"`
	DensityFile string    `json:"density_file,omitempty"`
	Error       string    `json:"error,omitempty"`
}

// BatchResult summarizes a batch run.
type BatchResult struct {
	Succeeded int               `json:"succeeded"`
	Failed    int               `json:"failed"`
	Items     []BatchItemResult `json:"items"`
}

func (s *Server) handleDensityBatch(args json.RawMessage) (interface{}, error) {
	var a densityBatchArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	normalize := a.Normalize == nil || *a.Normalize
	params := s.params(a.MaxScale, a.MaxRadius)
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if a.OutputDir != "" {
		if err := os.MkdirAll(a.OutputDir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create output dir: %w", err)
		}
	}

	items := make([]BatchItemResult, len(a.Items))
	jobs := make([]density.Job, 0, len(a.Items))
	jobIndex := make([]int, 0, len(a.Items))

	for i, item := range a.Items {
		name := item.Name
		if name == "" && item.Path != "" {
			base := filepath.Base(item.Path)
			name = strings.TrimSuffix(base, filepath.Ext(base))
		}
		if name == "" {
			name = fmt.Sprintf("item-%d", i)
		}
		items[i].Name = name

		// Image decoding goes through the shared cache, so shapes are
		// resolved here before the parallel fan-out.
		height, width, err := s.resolveShape(item.Path, item.Width, item.Height)
		if err != nil {
			items[i].Error = err.Error()
			continue
		}
		points := annotation.Points(item.Points)
		items[i].PointCount = len(points)
		jobs = append(jobs, density.Job{
			Name:      name,
			Points:    points,
			Height:    height,
			Width:     width,
			Params:    params,
			Normalize: normalize,
		})
		jobIndex = append(jobIndex, i)
	}

	for j, r := range density.SynthesizeBatch(jobs) {
		item := &items[jobIndex[j]]
		if r.Err != nil {
			item.Error = r.Err.Error()
			continue
		}
		stats := statsOf(r.Map)
		item.Stats = &stats
		item.Radii = r.Radii
		if a.OutputDir != "" {
			path := filepath.Join(a.OutputDir, r.Name+".npy")
			if err := npy.WriteFile(path, r.Map); err != nil {
				item.Error = err.Error()
				continue
			}
			item.DensityFile = path
		}
	}

	res := &BatchResult{Items: items}
	for _, item := range items {
		if item.Error != "" {
			res.Failed++
		} else {
			res.Succeeded++
		}
	}
	if s.cfg.Debug {
		log.Printf("batch: %d succeeded, %d failed", res.Succeeded, res.Failed)
	}
	return res, nil
}

type densityInspectArgs struct {
	Path string `json:"path"`
}

// InspectResult describes a density map loaded from disk.
type InspectResult struct {
	MapStats
	Path          string `json:"path"`
	NonZeroCells  int    `json:"nonzero_cells"`
	EstimateCount int    `json:"estimated_count"`
}

func (s *Server) handleDensityInspect(args json.RawMessage) (interface{}, error) {
	var a densityInspectArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	m, err := npy.ReadFile(a.Path)
	if err != nil {
		return nil, err
	}

	nonZero := 0
	for _, v := range m.Data {
		if v != 0 {
			nonZero++
		}
	}
	stats := statsOf(m)
	return &InspectResult{
		MapStats:      stats,
		Path:          a.Path,
		NonZeroCells:  nonZero,
		EstimateCount: int(stats.Sum + 0.5),
	}, nil
}

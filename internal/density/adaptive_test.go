package density

import (
	"errors"
	"math"
	"reflect"
	"testing"
)

func TestSynthesize_NoPoints(t *testing.T) {
	shapes := []struct{ h, w int }{{1, 1}, {50, 50}, {17, 91}}
	for _, s := range shapes {
		m, err := Synthesize(nil, s.h, s.w, DefaultParams())
		if err != nil {
			t.Fatalf("Synthesize(%dx%d) failed: %v", s.h, s.w, err)
		}
		if m.Height != s.h || m.Width != s.w || len(m.Data) != s.h*s.w {
			t.Errorf("shape: got %dx%d (%d cells), want %dx%d", m.Height, m.Width, len(m.Data), s.h, s.w)
		}
		for i, v := range m.Data {
			if v != 0 {
				t.Fatalf("cell %d = %v, want 0", i, v)
			}
		}
	}
}

func TestSynthesize_InvalidShape(t *testing.T) {
	shapes := []struct{ h, w int }{
		{0, 10},
		{10, -1},
		{MaxCells, 2},
		{1 << 32, 1 << 32},
		{3037000500, 3037000500},
	}
	for _, s := range shapes {
		_, err := Synthesize([]Point{{X: 1, Y: 1}}, s.h, s.w, DefaultParams())
		if !errors.Is(err, ErrInvalidShape) {
			t.Errorf("%dx%d: got %v, want ErrInvalidShape", s.h, s.w, err)
		}
	}
}

func TestSynthesizeWithRadii(t *testing.T) {
	points := []Point{{X: 10, Y: 10}, {X: 12, Y: 12}, {X: 40, Y: 30}}
	m, radii, err := SynthesizeWithRadii(points, 50, 50, DefaultParams())
	if err != nil {
		t.Fatalf("SynthesizeWithRadii failed: %v", err)
	}
	if want := Radii(points, DefaultParams()); !reflect.DeepEqual(radii, want) {
		t.Errorf("radii: got %v, want %v", radii, want)
	}
	plain, _ := Synthesize(points, 50, 50, DefaultParams())
	if !reflect.DeepEqual(m.Data, plain.Data) {
		t.Error("map differs from Synthesize")
	}

	_, radii, err = SynthesizeWithRadii(nil, 5, 5, DefaultParams())
	if err != nil || radii != nil {
		t.Errorf("no points: got radii %v err %v", radii, err)
	}
}

func TestSynthesize_InvalidParams(t *testing.T) {
	tests := []struct {
		name   string
		params Params
	}{
		{"zero scale", Params{MaxScale: 0, MaxRadius: 15}},
		{"negative radius", Params{MaxScale: 3, MaxRadius: -1}},
		{"NaN scale", Params{MaxScale: math.NaN(), MaxRadius: 15}},
		{"infinite radius", Params{MaxScale: 3, MaxRadius: math.Inf(1)}},
		{"radius above footprint limit", Params{MaxScale: 3, MaxRadius: 1e7}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Synthesize([]Point{{X: 5, Y: 5}}, 20, 20, tt.params); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestSynthesize_SinglePoint(t *testing.T) {
	points := []Point{{X: 25, Y: 25}}

	if got := Radii(points, DefaultParams()); !reflect.DeepEqual(got, []int{15}) {
		t.Errorf("Radii: got %v, want [15]", got)
	}

	m, err := Synthesize(points, 50, 50, DefaultParams())
	if err != nil {
		t.Fatalf("Synthesize failed: %v", err)
	}
	if math.Abs(m.Sum()-1) > 1e-5 {
		t.Errorf("mass: got %v, want 1", m.Sum())
	}
	if x, y := argmax(m); x != 25 || y != 25 {
		t.Errorf("peak at (%d,%d), want (25,25)", x, y)
	}
	for d := 1; d <= 15; d++ {
		if m.At(25-d, 25) != m.At(25+d, 25) || m.At(25, 25-d) != m.At(25, 25+d) {
			t.Errorf("asymmetric blob at offset %d", d)
		}
	}
	// Radius 15 reaches exactly to columns 10 and 40.
	if m.At(10, 25) == 0 || m.At(9, 25) != 0 || m.At(41, 25) != 0 {
		t.Errorf("footprint extent wrong: at10=%v at9=%v at41=%v", m.At(10, 25), m.At(9, 25), m.At(41, 25))
	}
}

func TestSynthesize_SinglePointUsesMaxRadius(t *testing.T) {
	params := Params{MaxScale: 3, MaxRadius: 8.7}
	if got := Radii([]Point{{X: 1, Y: 1}}, params); !reflect.DeepEqual(got, []int{8}) {
		t.Errorf("Radii: got %v, want [8]", got)
	}
}

func TestSynthesize_ClosePair(t *testing.T) {
	points := []Point{{X: 10, Y: 10}, {X: 12, Y: 12}}

	if got := Radii(points, DefaultParams()); !reflect.DeepEqual(got, []int{3, 3}) {
		t.Errorf("Radii: got %v, want [3 3]", got)
	}

	m, err := Synthesize(points, 50, 50, DefaultParams())
	if err != nil {
		t.Fatalf("Synthesize failed: %v", err)
	}
	if math.Abs(m.Sum()-2) > 1e-5 {
		t.Errorf("mass: got %v, want 2", m.Sum())
	}
	// Two overlapping blobs: cells between them carry mass from both.
	if m.At(11, 11) <= m.At(10, 13) {
		t.Errorf("expected overlap to peak between the points")
	}
	if m.At(20, 20) != 0 {
		t.Errorf("mass leaked outside footprints: %v", m.At(20, 20))
	}
}

func TestRadii_CoincidentPoints(t *testing.T) {
	points := []Point{{X: 5, Y: 5}, {X: 5, Y: 5}, {X: 30, Y: 30}}
	got := Radii(points, DefaultParams())
	want := []int{3, 3, 3}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Radii: got %v, want %v", got, want)
	}

	m, err := Synthesize(points, 40, 40, DefaultParams())
	if err != nil {
		t.Fatalf("Synthesize failed: %v", err)
	}
	if math.Abs(m.Sum()-3) > 1e-5 {
		t.Errorf("mass: got %v, want 3", m.Sum())
	}
}

func TestRadii_Bounds(t *testing.T) {
	tests := []struct {
		name   string
		points []Point
		params Params
		want   []int
	}{
		{
			"capped by max radius",
			[]Point{{X: 0, Y: 0}, {X: 100, Y: 0}},
			DefaultParams(),
			[]int{15, 15},
		},
		{
			"capped by max scale",
			[]Point{{X: 0, Y: 0}, {X: 4, Y: 0}, {X: 60, Y: 0}},
			Params{MaxScale: 3, MaxRadius: 100},
			[]int{4, 4, 12},
		},
		{
			"floored distance",
			[]Point{{X: 0, Y: 0}, {X: 5, Y: 5}},
			Params{MaxScale: 3, MaxRadius: 100},
			[]int{7, 7},
		},
		{
			"min radius floor",
			[]Point{{X: 0, Y: 0}, {X: 1, Y: 0}},
			DefaultParams(),
			[]int{3, 3},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Radii(tt.points, tt.params); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Radii: got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRadii_TighterSpacingNeverWidens(t *testing.T) {
	params := Params{MaxScale: 3, MaxRadius: 100}
	const d = 20.0

	even := []Point{{X: 10, Y: 50}, {X: 10 + d, Y: 50}, {X: 10 + 2*d, Y: 50}}
	uneven := []Point{{X: 10, Y: 50}, {X: 10 + d, Y: 50}, {X: 10 + 11*d, Y: 50}}

	evenRadii := Radii(even, params)
	unevenRadii := Radii(uneven, params)

	if evenRadii[1] > unevenRadii[1] {
		t.Errorf("middle radius: even spacing %d > uneven spacing %d", evenRadii[1], unevenRadii[1])
	}
	if unevenRadii[2] <= evenRadii[2] {
		t.Errorf("isolated point radius %d should exceed crowded radius %d", unevenRadii[2], evenRadii[2])
	}
	if unevenRadii[2] != 60 {
		t.Errorf("isolated point radius: got %d, want max_scale*dis_min = 60", unevenRadii[2])
	}
}

func TestNearestDistances(t *testing.T) {
	points := []Point{{X: 0, Y: 0}, {X: 3, Y: 4}, {X: 3, Y: 10}}
	got := nearestDistances(points)
	want := []float64{5, 5, 6}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-12 {
			t.Errorf("point %d: got %v, want %v", i, got[i], want[i])
		}
	}
}

func TestMap_Normalize(t *testing.T) {
	m, err := Synthesize([]Point{{X: 0, Y: 0}, {X: 30, Y: 30}}, 40, 40, DefaultParams())
	if err != nil {
		t.Fatalf("Synthesize failed: %v", err)
	}
	if m.Sum() >= 2 {
		t.Fatalf("expected boundary loss, got mass %v", m.Sum())
	}
	m.Normalize(2)
	if math.Abs(m.Sum()-2) > 1e-4 {
		t.Errorf("normalized mass: got %v, want 2", m.Sum())
	}

	empty := mustMap(t, 5, 5)
	empty.Normalize(3)
	if empty.Sum() != 0 {
		t.Errorf("normalizing a zero map should be a no-op, got %v", empty.Sum())
	}
	empty.Normalize(0)
}

func TestMap_Stats(t *testing.T) {
	m := mustMap(t, 2, 3)
	copy(m.Data, []float32{0, 1, 2, 3, 4, -1})
	if m.Sum() != 9 {
		t.Errorf("Sum: got %v, want 9", m.Sum())
	}
	if m.Max() != 4 {
		t.Errorf("Max: got %v, want 4", m.Max())
	}
	if m.Min() != -1 {
		t.Errorf("Min: got %v, want -1", m.Min())
	}
	if m.At(2, 1) != -1 {
		t.Errorf("At(2,1): got %v, want -1", m.At(2, 1))
	}
	if f := m.Float64s(); len(f) != 6 || f[4] != 4 {
		t.Errorf("Float64s: got %v", f)
	}
}

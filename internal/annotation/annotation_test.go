package annotation

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/ironsheep/keypoint-density-mcp/internal/density"
)

func TestClick_Missing(t *testing.T) {
	x := 3.0
	tests := []struct {
		name  string
		click Click
		want  bool
	}{
		{"both set", NewClick(1, 2), false},
		{"zero value", Click{}, true},
		{"only x", Click{X: &x}, true},
		{"only y", Click{Y: &x}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.click.Missing(); got != tt.want {
				t.Errorf("Missing: got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestToOriginal(t *testing.T) {
	clicks := []Click{NewClick(100, 51), {}, NewClick(10.4, 0)}
	got, err := ToOriginal(clicks, 0.5)
	if err != nil {
		t.Fatalf("ToOriginal failed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d clicks, want 3", len(got))
	}
	if *got[0].X != 200 || *got[0].Y != 102 {
		t.Errorf("click 0: got (%v,%v), want (200,102)", *got[0].X, *got[0].Y)
	}
	if !got[1].Missing() {
		t.Error("click 1 should stay missing")
	}
	if *got[2].X != 21 || *got[2].Y != 0 {
		t.Errorf("click 2: got (%v,%v), want (21,0)", *got[2].X, *got[2].Y)
	}

	// Source clicks are not mutated.
	if *clicks[0].X != 100 {
		t.Errorf("input mutated: %v", *clicks[0].X)
	}
}

func TestToOriginal_InvalidScale(t *testing.T) {
	for _, s := range []float64{0, -1} {
		if _, err := ToOriginal([]Click{NewClick(1, 1)}, s); err == nil {
			t.Errorf("scale %v: expected error", s)
		}
	}
}

func TestPoints(t *testing.T) {
	clicks := []Click{NewClick(1, 2), {}, NewClick(3, 4)}
	got := Points(clicks)
	want := []density.Point{{X: 1, Y: 2}, {X: 3, Y: 4}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Points: got %v, want %v", got, want)
	}
	if got := Points(nil); len(got) != 0 {
		t.Errorf("Points(nil): got %v", got)
	}
}

func TestSidecar_WriteRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "frame.json")
	s := &Sidecar{
		Filename: "frame.png",
		Density:  "frame.npy",
		Points:   []Click{NewClick(10, 20), {}},
	}
	if err := WriteSidecar(path, s); err != nil {
		t.Fatalf("WriteSidecar failed: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back failed: %v", err)
	}
	if !strings.Contains(string(raw), `"x": null`) {
		t.Errorf("missing click not encoded as null: %s", raw)
	}

	got, err := ReadSidecar(path)
	if err != nil {
		t.Fatalf("ReadSidecar failed: %v", err)
	}
	if got.Filename != "frame.png" || got.Density != "frame.npy" || len(got.Points) != 2 {
		t.Fatalf("unexpected sidecar: %+v", got)
	}
	if *got.Points[0].X != 10 || !got.Points[1].Missing() {
		t.Errorf("points not preserved: %+v", got.Points)
	}
}

func TestReadSidecar_Errors(t *testing.T) {
	if _, err := ReadSidecar("/nonexistent/frame.json"); err == nil {
		t.Error("expected error for missing file")
	}
	bad := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(bad, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadSidecar(bad); err == nil {
		t.Error("expected error for malformed JSON")
	}
}

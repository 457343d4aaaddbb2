package analysis

import (
	"math"
	"strings"
	"testing"

	"github.com/jakecoffman/cp"
	"github.com/san-kum/orbitlab/internal/dynamo"
	"github.com/san-kum/orbitlab/internal/experiment"
)

func TestDominantPeriod(t *testing.T) {
	const dt = 0.5
	tests := []struct {
		name   string
		n      int
		period float64
	}{
		{"power of two", 256, 32},
		{"odd length", 300, 50},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := make([]float64, tt.n)
			for i := range data {
				data[i] = 200 + 20*math.Sin(2*math.Pi*float64(i)*dt/tt.period)
			}
			got, ok := DominantPeriod(data, dt)
			if !ok {
				t.Fatal("no period found")
			}
			if math.Abs(got-tt.period) > 0.05*tt.period {
				t.Errorf("expected period %f, got %f", tt.period, got)
			}
		})
	}
}

func TestDominantPeriod_Flat(t *testing.T) {
	data := make([]float64, 64)
	for i := range data {
		data[i] = 5
	}
	if _, ok := DominantPeriod(data, 1); ok {
		t.Error("flat series should have no period")
	}
	if _, ok := DominantPeriod([]float64{1, 2}, 1); ok {
		t.Error("short series should have no period")
	}
}

func TestExtractSeries(t *testing.T) {
	sun := dynamo.BodyView{ID: 0, Kind: dynamo.Sun}
	samples := []experiment.Sample{
		{Frame: 0, Time: 0, Bodies: []dynamo.BodyView{sun,
			{ID: 1, Position: cp.Vector{X: 0, Y: -200}, Velocity: cp.Vector{X: -7.5}}}},
		{Frame: 1, Time: 0.5, Bodies: []dynamo.BodyView{sun,
			{ID: 1, Position: cp.Vector{X: 300}, Velocity: cp.Vector{X: 2}, Locked: true}}},
		{Frame: 2, Time: 1, Bodies: []dynamo.BodyView{sun}},
	}
	s := ExtractSeries(samples, 1)
	if s.Len() != 2 {
		t.Fatalf("expected 2 points, got %d", s.Len())
	}
	if s.Distance[0] != 200 || s.Distance[1] != 300 {
		t.Errorf("distances = %v", s.Distance)
	}
	if math.Abs(s.Tangential[0]-7.5) > 1e-9 || s.Radial[0] != 0 {
		t.Errorf("components = %f, %f", s.Radial[0], s.Tangential[0])
	}
	if s.Radial[1] != 0 {
		t.Errorf("locked body reported radial %f", s.Radial[1])
	}
	if s.Dt() != 0.5 {
		t.Errorf("dt = %f", s.Dt())
	}
}

func TestApsides(t *testing.T) {
	rp, ra, e := Apsides([]float64{150, 200, 250, 200})
	if rp != 150 || ra != 250 || math.Abs(e-0.25) > 1e-12 {
		t.Errorf("got %f %f %f", rp, ra, e)
	}
}

func TestASCII(t *testing.T) {
	s := &Series{Distance: []float64{100, 150, 200}, Radial: []float64{-1, 0, 1}}
	out := PhasePortraitToASCII(NewPhasePortrait(s), 20, 5)
	if strings.Count(out, "\n") != 5 || !strings.Contains(out, "•") {
		t.Errorf("unexpected portrait:\n%s", out)
	}
	if PhasePortraitToASCII(nil, 10, 10) != "" {
		t.Error("nil portrait should render empty")
	}

	survey := SurveyToASCII([]SurveyPoint{{1, []float64{3}}, {2, []float64{5}}}, 10, 4)
	if !strings.Contains(survey, "•") {
		t.Errorf("unexpected survey:\n%s", survey)
	}
}

package storage

import (
	"bytes"
	"context"
	"testing"

	"github.com/jakecoffman/cp"
	"github.com/san-kum/orbitlab/internal/config"
	"github.com/san-kum/orbitlab/internal/dynamo"
	"github.com/san-kum/orbitlab/internal/experiment"
)

func TestSaveLoad(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Planets = 2
	exp, err := experiment.New(experiment.Config{World: cfg, Frames: 20, Every: 5})
	if err != nil {
		t.Fatal(err)
	}
	res, err := exp.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	s := New(t.TempDir())
	if err := s.Init(); err != nil {
		t.Fatal(err)
	}
	id, err := s.Save("default", cfg, 20, res)
	if err != nil {
		t.Fatal(err)
	}

	meta, err := s.Load(id)
	if err != nil {
		t.Fatal(err)
	}
	if meta.Frames != 20 || meta.Planets != 2 || meta.Name != "default" {
		t.Errorf("unexpected metadata: %+v", meta)
	}
	if _, ok := meta.Metrics["population"]; !ok {
		t.Error("metrics not stored")
	}
	if meta.Config == nil || meta.Config.G != cfg.G {
		t.Error("config not stored")
	}

	samples, err := s.LoadTrace(id)
	if err != nil {
		t.Fatal(err)
	}
	if len(samples) != len(res.Samples) {
		t.Fatalf("expected %d samples, got %d", len(res.Samples), len(samples))
	}
	got := samples[len(samples)-1]
	want, _ := res.Final()
	if got.Frame != want.Frame || len(got.Bodies) != len(want.Bodies) {
		t.Fatalf("final sample mismatch: %d/%d bodies at frame %d/%d",
			len(got.Bodies), len(want.Bodies), got.Frame, want.Frame)
	}
	if got.Bodies[0].Kind != dynamo.Sun || got.Bodies[1].ID != want.Bodies[1].ID {
		t.Error("body order not preserved")
	}

	runs, err := s.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 || runs[0].ID != id {
		t.Errorf("list = %+v", runs)
	}
}

func TestList_MissingDir(t *testing.T) {
	runs, err := New(t.TempDir() + "/absent").List()
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 0 {
		t.Errorf("expected no runs, got %d", len(runs))
	}
}

func TestTraceRoundTrip(t *testing.T) {
	samples := []experiment.Sample{{
		Frame: 3,
		Time:  1.5,
		Bodies: []dynamo.BodyView{
			{ID: 0, Kind: dynamo.Sun, Name: "Sun", Color: "#ffcc33", Radius: 40, Mass: 10000},
			{ID: 4, Kind: dynamo.Planet, Name: "Planet, the fourth", Color: "#00ff00",
				Position: cp.Vector{X: 1.25, Y: -2}, Velocity: cp.Vector{X: 0.5}, Radius: 9, Mass: 0.25, Locked: true},
		},
	}}
	var buf bytes.Buffer
	if err := WriteTrace(&buf, samples); err != nil {
		t.Fatal(err)
	}
	back, err := ReadTrace(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if len(back) != 1 || len(back[0].Bodies) != 2 {
		t.Fatalf("unexpected shape: %+v", back)
	}
	p := back[0].Bodies[1]
	if p.Name != "Planet, the fourth" || !p.Locked || p.Position.X != 1.25 || p.Mass != 0.25 {
		t.Errorf("planet = %+v", p)
	}
	if back[0].Time != 1.5 {
		t.Errorf("time = %f", back[0].Time)
	}
}

func TestReadTrace_Malformed(t *testing.T) {
	in := "frame,time,id,kind,name,color,x,y,vx,vy,radius,mass,locked,held\n" +
		"x,0,1,planet,p,#fff,0,0,0,0,1,1,false,false\n"
	if _, err := ReadTrace(bytes.NewBufferString(in)); err == nil {
		t.Error("expected error for bad frame")
	}
}

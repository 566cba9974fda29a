package factory

import (
	"errors"
	"testing"
	"time"

	"NetSimDash/internal/config"
	"NetSimDash/internal/model"
)

type stubWriter struct{ interval time.Duration }

func (w *stubWriter) Write(model.SimulationSnapshot, string) error { return nil }
func (w *stubWriter) GetInterval() time.Duration                   { return w.interval }

func init() {
	RegisterWriter("stub", func(def config.WriterDef) (model.Writer, error) {
		d, err := time.ParseDuration(def.Interval)
		if err != nil {
			return nil, err
		}
		return &stubWriter{interval: d}, nil
	})
	RegisterWriter("broken", func(config.WriterDef) (model.Writer, error) {
		return nil, errors.New("no backend")
	})
}

func TestCreateSkipsDisabledWriters(t *testing.T) {
	cfg := &config.Config{Writers: []config.WriterDef{
		{Type: "stub", Enabled: true, Interval: "2s"},
		{Type: "stub", Enabled: false, Interval: "3s"},
	}}

	writers, err := Create(cfg)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if len(writers) != 1 || writers[0].GetInterval() != 2*time.Second {
		t.Fatalf("expected one 2s writer, got %+v", writers)
	}
}

func TestCreateErrors(t *testing.T) {
	if _, err := Create(&config.Config{Writers: []config.WriterDef{{Type: "missing", Enabled: true}}}); err == nil {
		t.Error("expected error for unknown writer type")
	}
	if _, err := Create(&config.Config{Writers: []config.WriterDef{{Type: "broken", Enabled: true}}}); err == nil {
		t.Error("expected factory error to propagate")
	}
}

func TestRegisterWriterPanicsOnDuplicate(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic on duplicate registration")
		}
	}()
	RegisterWriter("stub", nil)
}

func TestTypes(t *testing.T) {
	types := Types()
	if len(types) < 2 || types[0] != "broken" || types[1] != "stub" {
		t.Errorf("unexpected registered types %v", types)
	}
}

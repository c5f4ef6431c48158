package log

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/bft-labs/pulseship/internal/ports"
)

func TestSink_Push(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.DebugLevel)
	s := NewSink(logger, ports.StreamInfo{Name: "ShimmerGSR", ChannelCount: 1, NominalRate: 128})

	if err := s.Push(context.Background(), []float64{251.5}); err != nil {
		t.Fatalf("Push() error = %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d log lines, want 2: %q", len(lines), buf.String())
	}

	var entry struct {
		Level   string    `json:"level"`
		Stream  string    `json:"stream"`
		Sample  []float64 `json:"sample"`
		Message string    `json:"message"`
	}
	if err := json.Unmarshal([]byte(lines[1]), &entry); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if entry.Level != "debug" || entry.Stream != "ShimmerGSR" || entry.Message != "sample" {
		t.Errorf("unexpected entry %+v", entry)
	}
	if len(entry.Sample) != 1 || entry.Sample[0] != 251.5 {
		t.Errorf("sample = %v, want [251.5]", entry.Sample)
	}
}

func TestSink_SuppressedBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	s := NewSink(zerolog.New(&buf).Level(zerolog.WarnLevel), ports.StreamInfo{Name: "x"})
	_ = s.Push(context.Background(), []float64{1})
	if buf.Len() != 0 {
		t.Errorf("expected no output at warn level, got %q", buf.String())
	}
}

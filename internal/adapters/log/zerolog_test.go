package log

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/bft-labs/pulseship/internal/ports"
)

func TestZerologAdapter_Fields(t *testing.T) {
	var buf bytes.Buffer
	z := NewZerologAdapterWithLogger(zerolog.New(&buf))

	z.Info("connected",
		ports.String("port", "COM5"),
		ports.Int("attempt", 2),
		ports.Float64("rate", 128),
		ports.Bool("ok", true),
		ports.Duration("elapsed", 500*time.Millisecond),
		ports.Err(errors.New("boom")),
	)

	var got map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal %q: %v", buf.String(), err)
	}

	if got["message"] != "connected" {
		t.Errorf("message = %v, want connected", got["message"])
	}
	if got["port"] != "COM5" {
		t.Errorf("port = %v, want COM5", got["port"])
	}
	if got["attempt"] != float64(2) {
		t.Errorf("attempt = %v, want 2", got["attempt"])
	}
	if got["error"] != "boom" {
		t.Errorf("error = %v, want boom", got["error"])
	}
	if got["level"] != "info" {
		t.Errorf("level = %v, want info", got["level"])
	}
}

func TestZerologAdapter_DisabledLevel(t *testing.T) {
	var buf bytes.Buffer
	z := NewZerologAdapterWithLogger(zerolog.New(&buf).Level(zerolog.InfoLevel))

	z.Debug("hidden", ports.String("k", "v"))
	if buf.Len() != 0 {
		t.Errorf("debug output written at info level: %q", buf.String())
	}
}

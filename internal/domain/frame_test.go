package domain

import (
	"errors"
	"fmt"
	"testing"
)

func testFrame() Frame {
	return Frame{Channels: []Channel{
		{Key: ChannelKey{ChannelSystemTimestamp, FormatCAL}, Reading: Reading{Value: 1000, Unit: "mSecs"}},
		{Key: ChannelKey{ChannelGSR, FormatRAW}, Reading: Reading{Value: 2048, Unit: "no units"}},
		{Key: ChannelKey{ChannelGSR, FormatCAL}, Reading: Reading{Value: 4.2, Unit: "uS"}},
	}}
}

func TestFrame_Index(t *testing.T) {
	f := testFrame()

	tests := []struct {
		key    ChannelKey
		want   int
		wantOK bool
	}{
		{ChannelKey{ChannelSystemTimestamp, FormatCAL}, 0, true},
		{ChannelKey{ChannelGSR, FormatRAW}, 1, true},
		{ChannelKey{ChannelGSR, FormatCAL}, 2, true},
		{ChannelKey{ChannelInternalADCA13, FormatCAL}, -1, false},
	}

	for _, tt := range tests {
		got, ok := f.Index(tt.key)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("Index(%v) = (%d, %v), want (%d, %v)", tt.key, got, ok, tt.want, tt.wantOK)
		}
	}

	if r := f.At(2); r.Value != 4.2 || r.Unit != "uS" {
		t.Errorf("At(2) = %+v, want {4.2 uS}", r)
	}
}

func TestDeviceState_String(t *testing.T) {
	tests := []struct {
		state DeviceState
		want  string
	}{
		{StateNone, "None"},
		{StateConnecting, "Connecting"},
		{StateConnected, "Connected"},
		{StateStreaming, "Streaming"},
		{DeviceState(42), "Unknown"},
	}

	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("DeviceState(%d).String() = %s, want %s", tt.state, got, tt.want)
		}
	}
}

func TestParseHardwareVersion(t *testing.T) {
	if v, ok := ParseHardwareVersion("shimmer3"); !ok || v != HardwareShimmer3 {
		t.Errorf("ParseHardwareVersion(shimmer3) = (%v, %v)", v, ok)
	}
	if v, ok := ParseHardwareVersion("shimmer2r"); !ok || v != HardwareShimmer2R {
		t.Errorf("ParseHardwareVersion(shimmer2r) = (%v, %v)", v, ok)
	}
	if _, ok := ParseHardwareVersion("nope"); ok {
		t.Error("ParseHardwareVersion(nope) should fail")
	}
}

func TestChannelResolutionError_Is(t *testing.T) {
	err := fmt.Errorf("session: %w", &ChannelResolutionError{
		Missing: []ChannelKey{{ChannelGSR, FormatCAL}},
	})

	if !errors.Is(err, ErrChannelResolution) {
		t.Errorf("errors.Is(%v, ErrChannelResolution) = false", err)
	}

	var cre *ChannelResolutionError
	if !errors.As(err, &cre) || len(cre.Missing) != 1 {
		t.Fatalf("errors.As failed for %v", err)
	}
	if got := cre.Error(); got != "pulseship: channel resolution failed: missing GSR (CAL)" {
		t.Errorf("Error() = %q", got)
	}
}

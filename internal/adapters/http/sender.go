package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"runtime"

	"github.com/bft-labs/pulseship/internal/ports"
)

// SampleSender implements ports.Sink by POSTing each sample as JSON.
// Push blocks for the duration of the request.
type SampleSender struct {
	client   ports.HTTPClient
	logger   ports.Logger
	url      string
	authKey  string
	info     ports.StreamInfo
	hostname string
}

// NewSampleSender creates a sender posting to url. authKey, when set, is sent
// as a bearer token.
func NewSampleSender(client ports.HTTPClient, url, authKey string, info ports.StreamInfo, logger ports.Logger) *SampleSender {
	hostname, _ := os.Hostname()
	return &SampleSender{
		client:   client,
		logger:   logger,
		url:      url,
		authKey:  authKey,
		info:     info,
		hostname: hostname,
	}
}

// Push sends one sample.
func (s *SampleSender) Push(ctx context.Context, sample []float64) error {
	body, err := json.Marshal(ports.NewSampleMessage(s.info, sample))
	if err != nil {
		return fmt.Errorf("marshal sample: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if s.authKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.authKey)
	}
	req.Header.Set("X-Agent-Hostname", s.hostname)
	req.Header.Set("X-Agent-OSArch", runtime.GOOS+"/"+runtime.GOARCH)
	req.Header.Set("X-Pulseship-Stream", s.info.Name)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, string(respBody))
	}
	// Drain so the connection can be reused.
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// Close releases idle connections when the client supports it.
func (s *SampleSender) Close() error {
	if c, ok := s.client.(interface{ CloseIdleConnections() }); ok {
		c.CloseIdleConnections()
	}
	s.logger.Debug("http sink closed", ports.String("url", s.url))
	return nil
}

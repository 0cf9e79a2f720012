// Package datadog implements a Datadog backend for the metrics package using
// the DogStatsD protocol. Labels become Datadog tags; Flush closes the client
// at the end of a run so buffered data reaches the agent.
package datadog

import (
	"fmt"

	"github.com/DataDog/datadog-go/v5/statsd"

	"nycetl/internal/metrics"
)

// Config holds Datadog backend configuration.
type Config struct {
	// Addr is the DogStatsD address, e.g. "127.0.0.1:8125".
	Addr string

	// Namespace is an optional prefix added to all metric names.
	Namespace string

	// GlobalTags are tags applied to every metric, e.g. "env:prod".
	GlobalTags []string
}

// Backend adapts metrics.Backend onto a statsd.Client.
type Backend struct {
	client *statsd.Client
}

// NewBackend constructs a Datadog metrics backend. Addr is required.
func NewBackend(cfg Config) (*Backend, error) {
	if cfg.Addr == "" {
		return nil, fmt.Errorf("datadog: Addr is required")
	}
	var opts []statsd.Option
	if cfg.Namespace != "" {
		opts = append(opts, statsd.WithNamespace(cfg.Namespace))
	}
	if len(cfg.GlobalTags) > 0 {
		opts = append(opts, statsd.WithTags(cfg.GlobalTags))
	}
	c, err := statsd.New(cfg.Addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("datadog: create client: %w", err)
	}
	return &Backend{client: c}, nil
}

func (b *Backend) IncCounter(name string, delta float64, labels metrics.Labels) {
	if b.client == nil {
		return
	}
	b.client.Count(name, int64(delta), labelsToTags(labels), 1)
}

func (b *Backend) ObserveDuration(name string, seconds float64, labels metrics.Labels) {
	if b.client == nil {
		return
	}
	b.client.Histogram(name, seconds, labelsToTags(labels), 1)
}

// Flush closes the client, which flushes any buffered data.
func (b *Backend) Flush() error {
	if b.client == nil {
		return nil
	}
	return b.client.Close()
}

// labelsToTags converts labels into Datadog "key:value" tags.
func labelsToTags(lbls metrics.Labels) []string {
	if len(lbls) == 0 {
		return nil
	}
	out := make([]string, 0, len(lbls))
	for k, v := range lbls {
		out = append(out, fmt.Sprintf("%s:%s", k, v))
	}
	return out
}

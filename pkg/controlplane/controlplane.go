// Package controlplane wires the control ingestion HTTP service to
// the audit store and to a channel the embedding application drains to feed
// Control messages into the cluster's compilers.
//
// Usage:
//
//	cp, err := controlplane.New(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer cp.Close()
//
//	go cp.Start(ctx)
//	for msg := range cp.Messages() {
//	    cluster.SubmitControl(msg, nextLogicalTime())
//	}
package controlplane

import (
	"context"
	"fmt"

	"github.com/streamshard/megaflow/internal/logger"
	"github.com/streamshard/megaflow/pkg/control"
	"github.com/streamshard/megaflow/pkg/controlplane/api"
	"github.com/streamshard/megaflow/pkg/controlplane/store"
	"github.com/streamshard/megaflow/pkg/metrics"
)

// ChannelSink is a handlers.ControlSink backed by a buffered channel: the
// HTTP layer's Submit call never blocks on the cluster's own pace, up to
// the channel's capacity.
type ChannelSink struct {
	ch chan control.Message
}

// NewChannelSink allocates a ChannelSink with the given channel capacity.
func NewChannelSink(capacity int) *ChannelSink {
	if capacity <= 0 {
		capacity = 1
	}
	return &ChannelSink{ch: make(chan control.Message, capacity)}
}

// Submit implements handlers.ControlSink.
func (s *ChannelSink) Submit(msg control.Message) {
	s.ch <- msg
}

// Messages returns the channel the embedding application drains to feed
// Control messages into the cluster.
func (s *ChannelSink) Messages() <-chan control.Message {
	return s.ch
}

// ControlPlane is the control ingestion service: the audit store, the HTTP
// server that admits Control messages, and the sink that forwards admitted
// messages to the cluster.
type ControlPlane struct {
	store     *store.GORMStore
	apiServer *api.Server
	sink      *ChannelSink
}

// Options configures the ControlPlane.
type Options struct {
	// Database configures the audit store's PostgreSQL connection.
	Database *store.Config

	// API configures the control ingestion HTTP server. Set Enabled=false
	// to build a ControlPlane with no HTTP surface (e.g. for tests that
	// drive the sink directly).
	API *api.APIConfig

	// SinkCapacity bounds how many admitted messages may be buffered
	// before the embedding application has drained them. Default: 64.
	SinkCapacity int

	// Metrics records control admission events. May be nil.
	Metrics metrics.DataflowMetrics
}

// New creates a new ControlPlane: connects the audit store, and — if
// opts.API.Enabled — constructs the HTTP server. Call Start to begin
// serving, and Close to release the store's connection pool.
func New(ctx context.Context, opts *Options) (*ControlPlane, error) {
	if opts == nil {
		return nil, fmt.Errorf("controlplane: options cannot be nil")
	}
	if opts.Database == nil {
		return nil, fmt.Errorf("controlplane: database configuration is required")
	}

	db, err := store.New(opts.Database)
	if err != nil {
		return nil, fmt.Errorf("controlplane: failed to open audit store: %w", err)
	}

	capacity := opts.SinkCapacity
	if capacity == 0 {
		capacity = 64
	}
	sink := NewChannelSink(capacity)

	cp := &ControlPlane{
		store: db,
		sink:  sink,
	}

	if opts.API != nil && opts.API.IsEnabled() {
		srv, err := api.NewServer(*opts.API, db, sink, opts.Metrics)
		if err != nil {
			return nil, fmt.Errorf("controlplane: failed to create control ingestion server: %w", err)
		}
		cp.apiServer = srv
		logger.Info("control ingestion server initialized", logger.Port(opts.API.Port))
	}

	return cp, nil
}

// Store returns the audit store.
func (cp *ControlPlane) Store() *store.GORMStore {
	return cp.store
}

// Messages returns the channel of admitted Control messages. Close drains
// nothing — callers must stop reading once Close is called.
func (cp *ControlPlane) Messages() <-chan control.Message {
	return cp.sink.Messages()
}

// Start runs the HTTP server until ctx is cancelled. Returns immediately
// with nil if no API server was configured.
func (cp *ControlPlane) Start(ctx context.Context) error {
	if cp.apiServer == nil {
		return nil
	}
	return cp.apiServer.Start(ctx)
}

// Close releases the audit store's connection pool.
func (cp *ControlPlane) Close() error {
	return cp.store.Close()
}

package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Attribute keys for dataflow operations.
const (
	// ========================================================================
	// Cluster/worker attributes
	// ========================================================================
	AttrWorker     = "dataflow.worker"
	AttrBin        = "dataflow.bin"
	AttrSequence   = "dataflow.sequence"
	AttrInstKind   = "dataflow.installation.kind"
	AttrMapDigest  = "dataflow.installation.map_digest"
	AttrMoveCount  = "dataflow.installation.move_count"
	AttrPending    = "dataflow.pending_count"

	// ========================================================================
	// Frontier attributes
	// ========================================================================
	AttrControlFrontier = "dataflow.frontier.control"
	AttrDataFrontier    = "dataflow.frontier.data"
	AttrProbe           = "dataflow.frontier.probe"

	// ========================================================================
	// Control ingestion attributes
	// ========================================================================
	AttrIdempotencyToken = "control.idempotency_token"
	AttrRemoteAddr       = "control.remote_addr"
)

// Span names for dataflow operations.
const (
	SpanInstallation     = "stateful.install"
	SpanRoutingAdvance   = "stateful.routing.advance"
	SpanStateAdvance     = "stateful.state.advance"
	SpanClusterTick      = "runtime.tick"
	SpanControlIngest    = "controlplane.ingest"
	SpanControlHistory   = "controlplane.history"
	SpanAuditInsert      = "store.audit.insert"
)

// Worker returns an attribute for a worker index.
func Worker(w int) attribute.KeyValue {
	return attribute.Int(AttrWorker, w)
}

// Bin returns an attribute for a key bin.
func Bin(bin int) attribute.KeyValue {
	return attribute.Int(AttrBin, bin)
}

// Sequence returns an attribute for a Control message sequence number.
func Sequence(seq uint64) attribute.KeyValue {
	return attribute.Int64(AttrSequence, int64(seq))
}

// InstKind returns an attribute for an installation kind (none, map, move).
func InstKind(kind string) attribute.KeyValue {
	return attribute.String(AttrInstKind, kind)
}

// MapDigest returns an attribute identifying the resulting Map, e.g. a hash
// or version string, for correlating installations across workers.
func MapDigest(digest string) attribute.KeyValue {
	return attribute.String(AttrMapDigest, digest)
}

// MoveCount returns an attribute for the number of bins moved by an
// installation.
func MoveCount(count int) attribute.KeyValue {
	return attribute.Int(AttrMoveCount, count)
}

// PendingCount returns an attribute for the number of control or data
// records currently stashed awaiting installation.
func PendingCount(count int) attribute.KeyValue {
	return attribute.Int(AttrPending, count)
}

// ControlFrontier returns an attribute for the cluster's control-input
// frontier at a given tick.
func ControlFrontier(t string) attribute.KeyValue {
	return attribute.String(AttrControlFrontier, t)
}

// DataFrontier returns an attribute for the cluster's data-input frontier
// at a given tick.
func DataFrontier(t string) attribute.KeyValue {
	return attribute.String(AttrDataFrontier, t)
}

// Probe returns an attribute for the cluster-wide outstanding-work probe
// reported by State.OutstandingFrontier.
func Probe(t string) attribute.KeyValue {
	return attribute.String(AttrProbe, t)
}

// IdempotencyToken returns an attribute for a control ingestion request's
// idempotency token.
func IdempotencyToken(token string) attribute.KeyValue {
	return attribute.String(AttrIdempotencyToken, token)
}

// RemoteAddr returns an attribute for the originating address of a control
// ingestion request.
func RemoteAddr(addr string) attribute.KeyValue {
	return attribute.String(AttrRemoteAddr, addr)
}

// StartInstallationSpan starts a span around a routing operator's
// installation of a new Map, tagging it with the worker and the
// installation's sequence and kind.
func StartInstallationSpan(ctx context.Context, worker int, seq uint64, kind string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	allAttrs := []attribute.KeyValue{
		Worker(worker),
		Sequence(seq),
		InstKind(kind),
	}
	allAttrs = append(allAttrs, attrs...)
	return StartSpan(ctx, SpanInstallation, trace.WithAttributes(allAttrs...))
}

// StartTickSpan starts a span around one cluster re-activation round.
func StartTickSpan(ctx context.Context, controlFrontier, dataFrontier string) (context.Context, trace.Span) {
	return StartSpan(ctx, SpanClusterTick, trace.WithAttributes(
		ControlFrontier(controlFrontier),
		DataFrontier(dataFrontier),
	))
}

// StartControlIngestSpan starts a span around admitting one Control message
// through the ingestion HTTP service.
func StartControlIngestSpan(ctx context.Context, seq uint64, idempotencyToken string) (context.Context, trace.Span) {
	return StartSpan(ctx, SpanControlIngest, trace.WithAttributes(
		Sequence(seq),
		IdempotencyToken(idempotencyToken),
	))
}

package logger

import (
	"log/slog"
)

// Standard field keys for structured logging.
// Use these keys consistently across all log statements for log aggregation and querying.
const (
	// ========================================================================
	// Distributed Tracing
	// ========================================================================
	KeyTraceID = "trace_id" // OpenTelemetry trace ID for request correlation
	KeySpanID  = "span_id"  // OpenTelemetry span ID for operation tracking

	// ========================================================================
	// Cluster / worker identity
	// ========================================================================
	KeyWorker = "worker" // Worker index within the cluster
	KeyBin    = "bin"    // Key bin number (0..NumBins)

	// ========================================================================
	// Control protocol
	// ========================================================================
	KeySequence        = "sequence"         // Control message / ControlSet sequence number
	KeyInstKind        = "inst_kind"        // Installation kind: none, map, move
	KeyMoveCount       = "move_count"       // Number of bins moved by an installation
	KeyIdempotencyKey  = "idempotency_key"  // Idempotency token on an ingested Control message
	KeyMapDigest       = "map_digest"       // Identifier for the resulting bin-to-worker Map

	// ========================================================================
	// Frontiers
	// ========================================================================
	KeyControlFrontier = "control_frontier" // Cluster's control-input frontier
	KeyDataFrontier    = "data_frontier"    // Cluster's data-input frontier
	KeyProbe           = "probe"            // Downstream outstanding-work probe

	// ========================================================================
	// Stash / queue depths
	// ========================================================================
	KeyControlStashDepth = "control_stash_depth"
	KeyDataStashDepth    = "data_stash_depth"
	KeyPendingDepth      = "pending_depth"

	// ========================================================================
	// HTTP / control ingestion
	// ========================================================================
	KeyRequestID  = "request_id"  // HTTP request ID
	KeyMethod     = "method"      // HTTP method
	KeyPath       = "path"        // HTTP request path
	KeyRemoteAddr = "remote_addr" // Client remote address
	KeyStatus     = "status"      // HTTP response status code
	KeyBytes      = "bytes"       // HTTP response byte count

	// ========================================================================
	// Operation metadata
	// ========================================================================
	KeyDurationMs = "duration_ms" // Operation duration in milliseconds
	KeyError      = "error"       // Error message
	KeyPort       = "port"        // TCP port
)

// ----------------------------------------------------------------------------
// Distributed Tracing
// ----------------------------------------------------------------------------

// TraceID returns a slog.Attr for OpenTelemetry trace ID.
func TraceID(id string) slog.Attr {
	return slog.String(KeyTraceID, id)
}

// SpanID returns a slog.Attr for OpenTelemetry span ID.
func SpanID(id string) slog.Attr {
	return slog.String(KeySpanID, id)
}

// ----------------------------------------------------------------------------
// Cluster / worker identity
// ----------------------------------------------------------------------------

// Worker returns a slog.Attr for a worker index.
func Worker(w int) slog.Attr {
	return slog.Int(KeyWorker, w)
}

// Bin returns a slog.Attr for a key bin.
func Bin(bin int) slog.Attr {
	return slog.Int(KeyBin, bin)
}

// ----------------------------------------------------------------------------
// Control protocol
// ----------------------------------------------------------------------------

// Sequence returns a slog.Attr for a Control message or ControlSet sequence
// number.
func Sequence(seq uint64) slog.Attr {
	return slog.Uint64(KeySequence, seq)
}

// InstKind returns a slog.Attr for an installation kind (none, map, move).
func InstKind(kind string) slog.Attr {
	return slog.String(KeyInstKind, kind)
}

// MoveCount returns a slog.Attr for the number of bins moved by an
// installation.
func MoveCount(n int) slog.Attr {
	return slog.Int(KeyMoveCount, n)
}

// IdempotencyKey returns a slog.Attr for a Control message's idempotency
// token.
func IdempotencyKey(token string) slog.Attr {
	return slog.String(KeyIdempotencyKey, token)
}

// MapDigest returns a slog.Attr identifying the resulting bin-to-worker Map.
func MapDigest(digest string) slog.Attr {
	return slog.String(KeyMapDigest, digest)
}

// ----------------------------------------------------------------------------
// Frontiers
// ----------------------------------------------------------------------------

// ControlFrontier returns a slog.Attr for the cluster's control-input
// frontier.
func ControlFrontier(t string) slog.Attr {
	return slog.String(KeyControlFrontier, t)
}

// DataFrontier returns a slog.Attr for the cluster's data-input frontier.
func DataFrontier(t string) slog.Attr {
	return slog.String(KeyDataFrontier, t)
}

// Probe returns a slog.Attr for the downstream outstanding-work probe.
func Probe(t string) slog.Attr {
	return slog.String(KeyProbe, t)
}

// ----------------------------------------------------------------------------
// Stash / queue depths
// ----------------------------------------------------------------------------

// ControlStashDepth returns a slog.Attr for the number of control messages
// stashed awaiting their frontier.
func ControlStashDepth(n int) slog.Attr {
	return slog.Int(KeyControlStashDepth, n)
}

// DataStashDepth returns a slog.Attr for the number of data records stashed
// awaiting their frontier.
func DataStashDepth(n int) slog.Attr {
	return slog.Int(KeyDataStashDepth, n)
}

// PendingDepth returns a slog.Attr for the number of compiled-but-not-yet-
// installed snapshots queued at a worker.
func PendingDepth(n int) slog.Attr {
	return slog.Int(KeyPendingDepth, n)
}

// ----------------------------------------------------------------------------
// HTTP / control ingestion
// ----------------------------------------------------------------------------

// RequestID returns a slog.Attr for an HTTP request ID.
func RequestID(id string) slog.Attr {
	return slog.String(KeyRequestID, id)
}

// Method returns a slog.Attr for an HTTP method.
func Method(m string) slog.Attr {
	return slog.String(KeyMethod, m)
}

// Path returns a slog.Attr for an HTTP request path.
func Path(p string) slog.Attr {
	return slog.String(KeyPath, p)
}

// RemoteAddr returns a slog.Attr for a client's remote address.
func RemoteAddr(addr string) slog.Attr {
	return slog.String(KeyRemoteAddr, addr)
}

// Status returns a slog.Attr for an HTTP response status code.
func Status(code int) slog.Attr {
	return slog.Int(KeyStatus, code)
}

// Bytes returns a slog.Attr for an HTTP response byte count.
func Bytes(n int) slog.Attr {
	return slog.Int(KeyBytes, n)
}

// ----------------------------------------------------------------------------
// Operation metadata
// ----------------------------------------------------------------------------

// DurationMs returns a slog.Attr for duration in milliseconds.
func DurationMs(ms float64) slog.Attr {
	return slog.Float64(KeyDurationMs, ms)
}

// Err returns a slog.Attr for an error.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String(KeyError, err.Error())
}

// Port returns a slog.Attr for a TCP port.
func Port(p int) slog.Attr {
	return slog.Int(KeyPort, p)
}

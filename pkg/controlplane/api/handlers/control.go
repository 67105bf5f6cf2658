package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"fmt"

	"github.com/streamshard/megaflow/internal/logger"
	"github.com/streamshard/megaflow/internal/telemetry"
	"github.com/streamshard/megaflow/pkg/control"
	"github.com/streamshard/megaflow/pkg/controlplane/models"
	"github.com/streamshard/megaflow/pkg/controlplane/store"
	"github.com/streamshard/megaflow/pkg/megakey"
	"github.com/streamshard/megaflow/pkg/metrics"
)

// ControlSink receives a Control message once it has been admitted and
// durably audited, for delivery onto the compiler's input stream. The
// concrete implementation is controlplane.ChannelSink; cmd/megaflow drains
// its channel into runtime.Cluster.SubmitControl.
type ControlSink interface {
	Submit(msg control.Message)
}

// ControlHandler implements the control ingestion HTTP surface:
// admitting Control messages from an external policy engine, durably
// logging them, and forwarding them onto the compiler's input stream.
type ControlHandler struct {
	db      *store.GORMStore
	sink    ControlSink
	metrics metrics.DataflowMetrics
}

// NewControlHandler returns a ControlHandler backed by the audit store db
// and forwarding admitted messages to sink.
func NewControlHandler(db *store.GORMStore, sink ControlSink) *ControlHandler {
	return &ControlHandler{db: db, sink: sink}
}

// SetMetrics installs m, recording one RecordControlAdmitted call per
// successfully admitted message. A nil m (the default) is zero overhead.
func (h *ControlHandler) SetMetrics(m metrics.DataflowMetrics) {
	h.metrics = m
}

// envelopeDTO is the wire shape of a POST /api/v1/control request body
// ("ControlEnvelope"): a Control message plus a caller-supplied
// idempotency token, converted to control.Message via toMessage.
type envelopeDTO struct {
	IdempotencyToken string `json:"idempotency_token"`
	Sequence         uint64 `json:"sequence"`
	Count            int    `json:"count"`
	Inst             struct {
		Kind   string `json:"kind"`
		Map    []int  `json:"map,omitempty"`
		Bin    int    `json:"bin,omitempty"`
		Worker int    `json:"worker,omitempty"`
	} `json:"inst"`
}

// Ingest handles POST /api/v1/control: decode, validate sequence ordering,
// persist an audit record, and forward the message to the sink. A replayed
// idempotency token returns 200 with the previously admitted record and is
// not forwarded again. A non-monotonic sequence returns 409 — a
// request-scoped, non-fatal error, unlike the compiler's own invariant
// assertions.
func (h *ControlHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	var env envelopeDTO
	if err := json.NewDecoder(r.Body).Decode(&env); err != nil {
		BadRequest(w, "invalid request body: "+err.Error())
		return
	}

	ctx, span := telemetry.StartControlIngestSpan(r.Context(), env.Sequence, env.IdempotencyToken)
	defer span.End()
	r = r.WithContext(ctx)

	if env.IdempotencyToken != "" {
		if existing, err := h.db.FindByIdempotencyToken(r.Context(), env.IdempotencyToken); err != nil {
			InternalServerError(w, err.Error())
			return
		} else if existing != nil {
			WriteJSONOK(w, existing)
			return
		}
	}

	last, err := h.db.LastSequence(r.Context())
	if err != nil {
		InternalServerError(w, err.Error())
		return
	}
	if env.Sequence < last {
		Conflict(w, "sequence "+strconv.FormatUint(env.Sequence, 10)+" is behind last admitted sequence "+strconv.FormatUint(last, 10))
		return
	}

	msg, instKind, mapDigest, err := env.toMessage()
	if err != nil {
		BadRequest(w, err.Error())
		return
	}

	rec := &models.AuditRecord{
		Sequence:         env.Sequence,
		ReceivedAt:       time.Now().UTC(),
		InstKind:         instKind,
		MapDigest:        mapDigest,
		IdempotencyToken: env.IdempotencyToken,
	}
	if err := h.db.InsertAuditRecord(r.Context(), rec); err != nil {
		if errors.Is(err, store.ErrSequenceAlreadyAdmitted) {
			Conflict(w, "sequence or idempotency token already admitted")
			return
		}
		InternalServerError(w, err.Error())
		return
	}

	h.sink.Submit(msg)
	metrics.RecordControlAdmitted(h.metrics, instKind)
	logger.Info("control message admitted",
		logger.Sequence(env.Sequence),
		logger.InstKind(instKind),
		logger.IdempotencyKey(env.IdempotencyToken),
		logger.RemoteAddr(r.RemoteAddr),
	)

	WriteJSONCreated(w, rec)
}

// History handles GET /api/v1/control/history?since=&limit=: a paginated
// read of the audit log.
func (h *ControlHandler) History(w http.ResponseWriter, r *http.Request) {
	since := parseUintQuery(r, "since", 0)
	limit := int(parseUintQuery(r, "limit", 0))

	recs, err := h.db.ListSince(r.Context(), since, limit)
	if err != nil {
		InternalServerError(w, err.Error())
		return
	}
	WriteJSONOK(w, recs)
}

func (e envelopeDTO) toMessage() (control.Message, string, string, error) {
	msg := control.Message{Sequence: e.Sequence, Count: e.Count}

	switch e.Inst.Kind {
	case "", "none":
		msg.Inst = control.Inst{Kind: control.InstNone}
		return msg, "none", "none", nil
	case "map":
		m := make([]int, len(e.Inst.Map))
		copy(m, e.Inst.Map)
		msg.Inst = control.Inst{Kind: control.InstMap, Map: m}
		return msg, "map", "map(len=" + strconv.Itoa(len(m)) + ")", nil
	case "move":
		msg.Inst = control.Inst{Kind: control.InstMove, Bin: megakey.Bin(e.Inst.Bin), Worker: e.Inst.Worker}
		return msg, "move", "move(bin=" + strconv.Itoa(e.Inst.Bin) + ",worker=" + strconv.Itoa(e.Inst.Worker) + ")", nil
	default:
		return control.Message{}, "", "", fmt.Errorf("controlplane/api: unknown inst kind %q", e.Inst.Kind)
	}
}

func parseUintQuery(r *http.Request, key string, def uint64) uint64 {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def
	}
	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return def
	}
	return n
}

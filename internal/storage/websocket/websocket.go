package websocket

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/soa-sim/mctrial/internal/config"
	v1 "github.com/soa-sim/mctrial/internal/export/v1"
	"github.com/soa-sim/mctrial/pkg/core"
	"github.com/soa-sim/mctrial/pkg/streaming"
)

const defaultAckTimeout = 30 * time.Second

// Backend streams trials over WebSocket to a trial server.
// Every message waits for the server ack, so WriteTrial returns only once
// the server has accepted the trial.
type Backend struct {
	conn       *connection
	cfg        config.WebSocketConfig
	ackTimeout time.Duration
}

// New creates a new WebSocket storage backend.
func New(cfg config.WebSocketConfig, logger zerolog.Logger) *Backend {
	timeout := cfg.AckTimeout
	if timeout <= 0 {
		timeout = defaultAckTimeout
	}
	return &Backend{
		conn:       newConnection(logger.With().Str("backend", "websocket").Logger()),
		cfg:        cfg,
		ackTimeout: timeout,
	}
}

// Init connects to the WebSocket server.
func (b *Backend) Init() error {
	return b.conn.dial(b.cfg.URL, b.cfg.Secret, b.cfg.DialTimeout)
}

// Close disconnects from the WebSocket server.
func (b *Backend) Close() error {
	return b.conn.close()
}

// marshalEnvelope builds a JSON-encoded Envelope from a message type and payload.
func marshalEnvelope(msgType string, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", msgType, err)
	}
	env := streaming.Envelope{Type: msgType, Payload: raw}
	data, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("marshal %s envelope: %w", msgType, err)
	}
	return data, nil
}

// sendEnvelopeAndWait marshals the payload and waits for a server ack.
func (b *Backend) sendEnvelopeAndWait(msgType string, payload any) error {
	data, err := marshalEnvelope(msgType, payload)
	if err != nil {
		return err
	}
	return b.conn.sendAndWait(data, msgType, b.ackTimeout)
}

// BeginBatch sends batch_start and waits for server ack.
func (b *Backend) BeginBatch(runID string, numTrials int) error {
	data, err := marshalEnvelope(streaming.TypeBatchStart, streaming.BatchStartPayload{
		RunID:     runID,
		NumTrials: numTrials,
	})
	if err != nil {
		return err
	}

	// Cache for reconnect replay.
	b.conn.mu.Lock()
	b.conn.cachedStartMsg = data
	b.conn.mu.Unlock()

	return b.conn.sendAndWait(data, streaming.TypeBatchStart, b.ackTimeout)
}

// EndBatch sends batch_end and waits for server ack.
func (b *Backend) EndBatch(runID string, written int) error {
	err := b.sendEnvelopeAndWait(streaming.TypeBatchEnd, streaming.BatchEndPayload{
		RunID:   runID,
		Written: written,
	})

	// Clear cached state regardless of error.
	b.conn.mu.Lock()
	b.conn.cachedStartMsg = nil
	b.conn.mu.Unlock()

	return err
}

// WriteTrial sends the trial document and waits for server ack.
func (b *Backend) WriteTrial(t *core.Trial) error {
	doc, err := v1.Build(t)
	if err != nil {
		return fmt.Errorf("failed to build trial document: %w", err)
	}
	return b.sendEnvelopeAndWait(streaming.TypeTrial, doc)
}

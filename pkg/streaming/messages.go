// Package streaming defines the JSON envelopes exchanged with a trial server.
package streaming

import (
	"encoding/json"
)

// Message type constants matching the streaming protocol.
const (
	TypeBatchStart = "batch_start"
	TypeTrial      = "trial"
	TypeBatchEnd   = "batch_end"
	TypeAck        = "ack"
)

// Envelope wraps all messages sent over the WebSocket.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// AckMessage is the server's acknowledgement response.
type AckMessage struct {
	Type string `json:"type"` // always "ack"
	For  string `json:"for"`  // the message type being acknowledged
}

// BatchStartPayload opens a run.
type BatchStartPayload struct {
	RunID     string `json:"runId"`
	NumTrials int    `json:"numTrials"`
}

// BatchEndPayload closes a run.
type BatchEndPayload struct {
	RunID   string `json:"runId"`
	Written int    `json:"written"`
}

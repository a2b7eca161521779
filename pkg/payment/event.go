package payment

import (
	"bytes"
	"encoding/json"
	"fmt"
)

const (
	EventPaymentSucceeded = "payment_intent.succeeded"
	EventPaymentFailed    = "payment_intent.payment_failed"
)

// Event is a gateway webhook payload: {type, data:{object:{id, ...}}}.
type Event struct {
	ID   string    `json:"id"`
	Type string    `json:"type"`
	Data EventData `json:"data"`
}

type EventData struct {
	Object EventObject `json:"object"`
}

type EventObject struct {
	ID       string  `json:"id"`
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

// ParseEvent decodes a webhook body into a typed event. It fails closed:
// a payload without a type or an intent id is rejected rather than handled
// optimistically.
func ParseEvent(body []byte) (*Event, error) {
	dec := json.NewDecoder(bytes.NewReader(body))

	var event Event
	if err := dec.Decode(&event); err != nil {
		return nil, fmt.Errorf("malformed event payload: %w", err)
	}
	if event.Type == "" {
		return nil, fmt.Errorf("event payload missing type")
	}
	if event.Data.Object.ID == "" {
		return nil, fmt.Errorf("event payload missing intent id")
	}
	return &event, nil
}

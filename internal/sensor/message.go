package sensor

import (
	"encoding/json"
	"fmt"
)

// Message is the part of a sensor payload the exporter reads.
// Contact stays untyped so a non-boolean value decodes instead of failing.
type Message struct {
	Contact any
}

// decodeMessage parses a UTF-8 JSON payload. Only a syntax error is
// malformed; any valid JSON that is not an object has no contact field.
func decodeMessage(payload []byte) (Message, error) {
	var doc any
	if err := json.Unmarshal(payload, &doc); err != nil {
		return Message{}, fmt.Errorf("%w: %w", ErrMalformedPayload, err)
	}

	fields, ok := doc.(map[string]any)
	if !ok {
		return Message{}, nil
	}
	return Message{Contact: fields["contact"]}, nil
}

// Value reduces the message to the gauge value: 1 only when contact is
// exactly boolean true.
func (m Message) Value() float64 {
	if closed, ok := m.Contact.(bool); ok && closed {
		return 1
	}
	return 0
}

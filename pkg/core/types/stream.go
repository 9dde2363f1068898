package types

import (
	"encoding/json"
	"strings"
)

// StreamEvent is the interface for all optimize-stream event types.
type StreamEvent interface {
	EventType() string
}

// ProgressEvent reports that a pipeline node produced output.
type ProgressEvent struct {
	Node NodeName `json:"node"`
	Data string   `json:"data"`
}

func (e ProgressEvent) EventType() string { return "progress" }

// ResultEvent is the terminal event carrying the full optimize result.
type ResultEvent struct {
	Type   string         `json:"type"` // "result"
	Result OptimizeResult `json:"result"`
}

func (e ResultEvent) EventType() string { return "result" }

// ErrorFrameEvent is emitted when the backend reports a pipeline failure
// inside the stream rather than via the response status.
type ErrorFrameEvent struct {
	Message string `json:"error"`
}

func (e ErrorFrameEvent) EventType() string { return "error" }

// UnknownStreamEvent is returned for payloads that parse as JSON but match
// no known shape. Callers skip it; the protocol is forward-compatible.
type UnknownStreamEvent struct{}

func (e UnknownStreamEvent) EventType() string { return "unknown" }

// UnmarshalStreamEvent decodes one optimize-stream payload into a typed
// event. The discriminant is structural: a "result" field marks the
// terminal event, an "error" field a mid-stream failure, and a "node"
// field a progress report.
func UnmarshalStreamEvent(data []byte) (StreamEvent, error) {
	var probe struct {
		Type   string          `json:"type"`
		Result json.RawMessage `json:"result"`
		Error  json.RawMessage `json:"error"`
		Node   NodeName        `json:"node"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, err
	}

	switch {
	case probe.Type == "result" || len(probe.Result) > 0:
		var event ResultEvent
		if err := json.Unmarshal(data, &event); err != nil {
			return nil, err
		}
		return event, nil

	case len(probe.Error) > 0:
		var event ErrorFrameEvent
		if err := json.Unmarshal(data, &event); err != nil {
			return nil, err
		}
		if event.Message == "" {
			event.Message = strings.TrimSpace(string(probe.Error))
		}
		return event, nil

	case probe.Node != "":
		var event ProgressEvent
		if err := json.Unmarshal(data, &event); err != nil {
			return nil, err
		}
		return event, nil

	default:
		return UnknownStreamEvent{}, nil
	}
}

// ChatDelta is one frame of the conversational stream. Content fields of
// successive deltas concatenate into the reply; Done marks the final frame
// (its content may be empty).
type ChatDelta struct {
	Content string `json:"content"`
	Done    bool   `json:"done"`
}

// UnmarshalChatDelta decodes one chat-stream payload.
func UnmarshalChatDelta(data []byte) (ChatDelta, error) {
	var delta ChatDelta
	if err := json.Unmarshal(data, &delta); err != nil {
		return ChatDelta{}, err
	}
	return delta, nil
}

package revopt

import (
	"io"
	"log/slog"

	"github.com/hotelkit/revopt-go/pkg/core/types"
)

// optimizeEventStream classifies decoded payloads into typed pipeline
// events. Malformed frames and progress events for unknown nodes are
// dropped; the stream continues past them.
type optimizeEventStream struct {
	reader *sseReader
	logger *slog.Logger
}

func newOptimizeEventStream(reader *sseReader, logger *slog.Logger) *optimizeEventStream {
	return &optimizeEventStream{reader: reader, logger: logger}
}

func (s *optimizeEventStream) Next() (types.StreamEvent, error) {
	for {
		payload, err := s.reader.Next()
		if err != nil {
			return nil, err
		}

		event, err := types.UnmarshalStreamEvent([]byte(payload))
		if err != nil {
			s.logger.Debug("dropping malformed stream frame", "error", err)
			continue
		}

		switch e := event.(type) {
		case types.UnknownStreamEvent:
			continue
		case types.ProgressEvent:
			if !e.Node.IsValid() {
				s.logger.Debug("dropping progress for unknown node", "node", string(e.Node))
				continue
			}
			return e, nil
		default:
			return event, nil
		}
	}
}

func (s *optimizeEventStream) Close() error {
	return s.reader.Close()
}

// chatEventStream classifies decoded payloads into chat deltas. A delta
// with done=true terminates the stream; nothing after it is classified.
type chatEventStream struct {
	reader *sseReader
	logger *slog.Logger
	ended  bool
}

func newChatEventStream(reader *sseReader, logger *slog.Logger) *chatEventStream {
	return &chatEventStream{reader: reader, logger: logger}
}

func (s *chatEventStream) Next() (types.ChatDelta, error) {
	for {
		if s.ended {
			return types.ChatDelta{}, io.EOF
		}

		payload, err := s.reader.Next()
		if err != nil {
			return types.ChatDelta{}, err
		}

		delta, err := types.UnmarshalChatDelta([]byte(payload))
		if err != nil {
			s.logger.Debug("dropping malformed chat frame", "error", err)
			continue
		}
		if delta.Done {
			s.ended = true
		}
		return delta, nil
	}
}

func (s *chatEventStream) Close() error {
	return s.reader.Close()
}

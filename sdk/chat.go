package revopt

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
)

// ChatService talks to the conversational endpoint. At most one chat
// stream is live per service; starting a new one supersedes the previous.
type ChatService struct {
	client *Client

	mu      sync.Mutex
	current *ChatStream
}

// Stream sends a message and returns the incremental reply stream.
// Any prior stream is closed before the request is issued, so two chat
// sessions are never live at once. Transport failures surface here
// synchronously; a stream is only returned once the backend has accepted
// the request.
func (s *ChatService) Stream(ctx context.Context, req *ChatRequest) (*ChatStream, error) {
	s.mu.Lock()
	if s.current != nil {
		_ = s.current.Close()
		s.current = nil
	}
	s.mu.Unlock()

	streamCtx, cancel := context.WithCancel(ctx)
	reader, err := s.client.openStream(streamCtx, chatStreamPath, req)
	if err != nil {
		cancel()
		return nil, err
	}

	cs := &ChatStream{
		events: make(chan string, 16),
		done:   make(chan struct{}),
		quit:   make(chan struct{}),
		cancel: cancel,
		reader: reader,
	}

	s.mu.Lock()
	s.current = cs
	s.mu.Unlock()

	go cs.read(streamCtx, newChatEventStream(reader, s.client.logger))
	return cs, nil
}

// Messages returns the stored conversation.
func (s *ChatService) Messages(ctx context.Context) ([]ChatMessage, error) {
	var out struct {
		Messages []ChatMessage `json:"messages"`
	}
	if err := s.client.doJSON(ctx, http.MethodGet, chatMessagesPath, nil, &out); err != nil {
		return nil, err
	}
	return out.Messages, nil
}

// ClearMessages deletes the stored conversation.
func (s *ChatService) ClearMessages(ctx context.Context) error {
	return s.client.doJSON(ctx, http.MethodDelete, chatMessagesPath, nil, nil)
}

// ChatStream yields the assistant reply incrementally. The stream ends at
// the frame marked done; nothing past it is ever yielded.
type ChatStream struct {
	events chan string
	done   chan struct{}
	quit   chan struct{}
	cancel context.CancelFunc
	reader *sseReader

	text      strings.Builder
	err       error
	closed    atomic.Bool
	closeOnce sync.Once
}

func (cs *ChatStream) read(ctx context.Context, events *chatEventStream) {
	defer close(cs.done)
	defer close(cs.events)
	defer cs.reader.Close()

	for {
		delta, err := events.Next()
		if err != nil {
			if !errors.Is(err, io.EOF) && ctx.Err() == nil && !cs.closed.Load() {
				cs.err = err
			}
			return
		}

		if delta.Content != "" {
			cs.text.WriteString(delta.Content)
			select {
			case cs.events <- delta.Content:
			case <-cs.quit:
				return
			}
		}
		if delta.Done {
			return
		}
	}
}

// Events returns the channel of reply fragments. It is closed when the
// stream ends for any reason.
func (cs *ChatStream) Events() <-chan string {
	return cs.events
}

// Text blocks until the stream ends and returns the accumulated reply.
func (cs *ChatStream) Text() string {
	<-cs.done
	return cs.text.String()
}

// Err returns the stream failure, if any, once the stream has ended.
func (cs *ChatStream) Err() error {
	<-cs.done
	return cs.err
}

// Close cancels the stream and releases the transport. Safe to call more
// than once and from any goroutine.
func (cs *ChatStream) Close() error {
	var err error
	cs.closeOnce.Do(func() {
		cs.closed.Store(true)
		close(cs.quit)
		cs.cancel()
		err = cs.reader.Close()
	})
	return err
}

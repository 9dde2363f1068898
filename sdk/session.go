package revopt

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/hotelkit/revopt-go/pkg/core"
	"github.com/hotelkit/revopt-go/pkg/core/types"
)

// PipelineController drives optimize runs and owns the observable
// PipelineState. At most one session is live at a time: starting a run
// cancels the previous one, and events from a superseded or canceled
// session are never applied, even if they are already in flight.
type PipelineController struct {
	client *Client
	logger *slog.Logger
	pacing time.Duration

	mu      sync.Mutex
	state   PipelineState
	current *pipelineSession
	subs    map[int]chan PipelineState
	nextSub int
	closed  bool
}

// pipelineSession is the handle for one run of the streaming protocol. The
// controller compares handles to decide whether an incoming action still
// belongs to the live run.
type pipelineSession struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// NewPipelineController creates a controller in the idle state.
func NewPipelineController(client *Client) *PipelineController {
	return &PipelineController{
		client: client,
		logger: client.logger,
		pacing: client.pacing,
		state:  NewPipelineState(ProviderAnthropic),
		subs:   make(map[int]chan PipelineState),
	}
}

// State returns the current state snapshot.
func (pc *PipelineController) State() PipelineState {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	return pc.state
}

// Subscribe returns a channel of state snapshots and a cancel function.
// Every applied action produces one snapshot; updates are dropped for
// subscribers that fall behind.
func (pc *PipelineController) Subscribe() (<-chan PipelineState, func()) {
	pc.mu.Lock()
	defer pc.mu.Unlock()

	id := pc.nextSub
	pc.nextSub++
	ch := make(chan PipelineState, 16)
	pc.subs[id] = ch

	unsubscribe := func() {
		pc.mu.Lock()
		defer pc.mu.Unlock()
		if sub, ok := pc.subs[id]; ok {
			delete(pc.subs, id)
			close(sub)
		}
	}
	return ch, unsubscribe
}

func (pc *PipelineController) notifyLocked() {
	for _, ch := range pc.subs {
		select {
		case ch <- pc.state:
		default:
		}
	}
}

// Start begins a new run, superseding any run still in flight. The
// returned channel is closed when the session's dispatch loop exits.
func (pc *PipelineController) Start(ctx context.Context, req OptimizeRequest) <-chan struct{} {
	runCtx, cancel := context.WithCancel(ctx)
	sess := &pipelineSession{cancel: cancel, done: make(chan struct{})}

	pc.mu.Lock()
	if pc.current != nil {
		pc.current.cancel()
	}
	pc.current = sess
	pc.state = Reduce(pc.state, StartAction{Provider: req.Provider})
	pc.notifyLocked()
	pc.mu.Unlock()

	pc.logger.Info("optimize run started", "hotel", req.HotelName, "provider", string(req.Provider))

	go func() {
		defer close(sess.done)
		defer cancel()
		pc.run(runCtx, sess, req)
	}()
	return sess.done
}

// Cancel stops the live session, if any. The state keeps whatever was last
// applied; no further action from the canceled session will touch it.
func (pc *PipelineController) Cancel() {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	pc.cancelLocked()
}

func (pc *PipelineController) cancelLocked() {
	if pc.current != nil {
		pc.current.cancel()
		pc.current = nil
	}
}

// Reset cancels the live session and returns the state to idle.
func (pc *PipelineController) Reset() {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	pc.cancelLocked()
	pc.state = Reduce(pc.state, ResetAction{})
	pc.notifyLocked()
}

// SelectNode moves the UI cursor. Permitted in any phase.
func (pc *PipelineController) SelectNode(node NodeName) {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	pc.state = Reduce(pc.state, SelectNodeAction{Node: node})
	pc.notifyLocked()
}

// ChangeProvider relabels node models for the provider. Only effective
// while idle.
func (pc *PipelineController) ChangeProvider(p Provider) {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	pc.state = Reduce(pc.state, ChangeProviderAction{Provider: p})
	pc.notifyLocked()
}

// Close cancels the live session and closes all subscriber channels.
func (pc *PipelineController) Close() {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	if pc.closed {
		return
	}
	pc.closed = true
	pc.cancelLocked()
	for id, ch := range pc.subs {
		delete(pc.subs, id)
		close(ch)
	}
}

// dispatch applies an action on behalf of sess. Actions from a session
// that is no longer current are dropped; this is what suppresses late
// events after cancellation or supersession.
func (pc *PipelineController) dispatch(sess *pipelineSession, a Action) bool {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	if pc.current != sess {
		return false
	}
	pc.state = Reduce(pc.state, a)
	pc.notifyLocked()
	return true
}

// run owns the decode → classify → dispatch loop for one session. Events
// are applied strictly in decode order; the only suspension points are the
// transport reads inside Next.
func (pc *PipelineController) run(ctx context.Context, sess *pipelineSession, req OptimizeRequest) {
	reader, err := pc.client.openStream(ctx, optimizeStreamPath, req)
	if err != nil {
		if ctx.Err() == nil {
			pc.dispatch(sess, FailAction{Message: failMessage(err)})
		}
		return
	}
	defer reader.Close()

	events := newOptimizeEventStream(reader, pc.logger)

	// A node stays active until the next node reports; its output is
	// committed at that point. The last node to report therefore remains
	// active when the result arrives.
	var pending *ProgressEvent
	terminal := false
	classified := false

	for {
		event, err := events.Next()
		if err != nil {
			switch {
			case terminal:
			case ctx.Err() != nil:
			case errors.Is(err, io.EOF):
				// Closure after events were classified is left for the
				// caller to judge; closure before any is a transport
				// failure.
				if !classified {
					pc.dispatch(sess, FailAction{Message: "stream closed before any event"})
				}
			default:
				pc.dispatch(sess, FailAction{Message: failMessage(err)})
			}
			return
		}
		classified = true

		switch e := event.(type) {
		case ProgressEvent:
			if pending != nil {
				if !pc.pause(ctx) {
					return
				}
				if !pc.dispatch(sess, NodeDoneAction{Node: pending.Node, Data: pending.Data}) {
					return
				}
			}
			if !pc.dispatch(sess, NodeActiveAction{Node: e.Node}) {
				return
			}
			progress := e
			pending = &progress

		case ResultEvent:
			terminal = true
			if !pc.dispatch(sess, CompleteAction{Result: e.Result}) {
				return
			}
			pc.logger.Info("optimize run complete", "query_type", string(e.Result.QueryType))

		case types.ErrorFrameEvent:
			terminal = true
			streamErr := core.NewStreamError(e.Message)
			if !pc.dispatch(sess, FailAction{Message: failMessage(streamErr)}) {
				return
			}
			pc.logger.Info("optimize run failed", "error", e.Message)
		}
	}
}

// pause waits out the configured pacing delay. Returns false if the
// session was canceled while waiting.
func (pc *PipelineController) pause(ctx context.Context) bool {
	if pc.pacing <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(pc.pacing)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}

func failMessage(err error) string {
	var apiErr *core.Error
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return err.Error()
}

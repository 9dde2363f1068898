package revopt

import "github.com/hotelkit/revopt-go/pkg/core/types"

// Phase is the top-level status of an optimize run.
type Phase string

const (
	PhaseIdle      Phase = "idle"
	PhaseStreaming Phase = "streaming"
	PhaseComplete  Phase = "complete"
	PhaseError     Phase = "error"
)

// NodeStatus is the per-node progress within a run.
type NodeStatus string

const (
	StatusPending NodeStatus = "pending"
	StatusActive  NodeStatus = "active"
	StatusDone    NodeStatus = "done"
	StatusError   NodeStatus = "error"
)

// NodeRecord is the observable state of one pipeline stage.
type NodeRecord struct {
	ID     NodeName
	Label  string
	Model  string
	Status NodeStatus
	Data   string
}

// PipelineState is the observable state of an optimize run. It is a value:
// Reduce returns a fresh copy for every action, so a snapshot handed to a
// consumer never changes underneath it.
type PipelineState struct {
	Phase    Phase
	Provider Provider
	Nodes    []NodeRecord
	Result   *OptimizeResult
	Err      string

	// Selected is a pure UI cursor over Nodes; it has no effect on
	// statuses. It follows the latest completed node unless the caller
	// has explicitly selected a node since the run started.
	Selected NodeName

	userSelected bool
}

// NewPipelineState returns the idle state: all nodes pending, labeled for
// the given provider.
func NewPipelineState(p Provider) PipelineState {
	if !p.IsValid() {
		p = ProviderAnthropic
	}
	return PipelineState{
		Phase:    PhaseIdle,
		Provider: p,
		Nodes:    newNodeRecords(p),
	}
}

func newNodeRecords(p Provider) []NodeRecord {
	names := types.PipelineNodes()
	nodes := make([]NodeRecord, len(names))
	for i, name := range names {
		nodes[i] = NodeRecord{
			ID:     name,
			Label:  name.Label(),
			Model:  name.ModelLabel(p),
			Status: StatusPending,
		}
	}
	return nodes
}

// Node returns the record for the given node, or nil if unknown.
func (s *PipelineState) Node(name NodeName) *NodeRecord {
	for i := range s.Nodes {
		if s.Nodes[i].ID == name {
			return &s.Nodes[i]
		}
	}
	return nil
}

// Action is one input to the pipeline reducer.
type Action interface {
	actionName() string
}

// StartAction begins a fresh run: phase becomes streaming, every node is
// reset to pending, and result, error, and selection are cleared.
type StartAction struct {
	Provider Provider
}

// NodeActiveAction marks a node as currently running. Repeats are
// idempotent; unknown nodes are ignored.
type NodeActiveAction struct {
	Node NodeName
}

// NodeDoneAction marks a node as finished and stores its output. The
// selection follows the completed node unless the caller selected one
// explicitly since the run started.
type NodeDoneAction struct {
	Node NodeName
	Data string
}

// CompleteAction ends the run successfully. Node statuses are left as last
// observed; the machine does not force remaining nodes to done.
type CompleteAction struct {
	Result OptimizeResult
}

// FailAction ends the run with an error; any node still active is marked
// error. Only Reset or Start exits this state.
type FailAction struct {
	Message string
}

// ResetAction returns to idle with all nodes pending.
type ResetAction struct{}

// SelectNodeAction moves the UI cursor; permitted in any phase.
type SelectNodeAction struct {
	Node NodeName
}

// ChangeProviderAction relabels each node's model display name for the new
// provider. Permitted only while idle; ignored mid-run.
type ChangeProviderAction struct {
	Provider Provider
}

func (StartAction) actionName() string          { return "start" }
func (NodeActiveAction) actionName() string     { return "node_active" }
func (NodeDoneAction) actionName() string       { return "node_done" }
func (CompleteAction) actionName() string       { return "complete" }
func (FailAction) actionName() string           { return "fail" }
func (ResetAction) actionName() string          { return "reset" }
func (SelectNodeAction) actionName() string     { return "select_node" }
func (ChangeProviderAction) actionName() string { return "change_provider" }

// Reduce applies one action to the state and returns the next state. It is
// pure: the input state is never mutated, and the returned state shares no
// node storage with it.
func Reduce(s PipelineState, a Action) PipelineState {
	next := s
	next.Nodes = append([]NodeRecord(nil), s.Nodes...)

	switch act := a.(type) {
	case StartAction:
		p := act.Provider
		if !p.IsValid() {
			p = s.Provider
		}
		started := NewPipelineState(p)
		started.Phase = PhaseStreaming
		return started

	case NodeActiveAction:
		if node := next.Node(act.Node); node != nil {
			node.Status = StatusActive
		}

	case NodeDoneAction:
		if node := next.Node(act.Node); node != nil {
			node.Status = StatusDone
			node.Data = act.Data
			if !next.userSelected {
				next.Selected = act.Node
			}
		}

	case CompleteAction:
		if next.Phase != PhaseStreaming {
			return s
		}
		result := act.Result
		next.Phase = PhaseComplete
		next.Result = &result

	case FailAction:
		if next.Phase != PhaseStreaming {
			return s
		}
		next.Phase = PhaseError
		next.Err = act.Message
		for i := range next.Nodes {
			if next.Nodes[i].Status == StatusActive {
				next.Nodes[i].Status = StatusError
			}
		}

	case ResetAction:
		return NewPipelineState(s.Provider)

	case SelectNodeAction:
		if node := next.Node(act.Node); node != nil {
			next.Selected = act.Node
			next.userSelected = true
		}

	case ChangeProviderAction:
		if next.Phase != PhaseIdle || !act.Provider.IsValid() {
			return s
		}
		next.Provider = act.Provider
		for i := range next.Nodes {
			next.Nodes[i].Model = next.Nodes[i].ID.ModelLabel(act.Provider)
		}
	}

	return next
}

package orchestrator

import "time"

// ActionKind names a deferred radio action.
type ActionKind string

const (
	// ActionPairStatic pairs after a static handover select.
	ActionPairStatic ActionKind = "pair.static"
	// ActionPairInbound pairs with the peer that sent us a request.
	ActionPairInbound ActionKind = "pair.inbound"
	// ActionPairAndTransfer pairs with the selected peer and then sends the
	// pending outgoing payload.
	ActionPairAndTransfer ActionKind = "pair.transfer"
)

// Action is one radio action, queued while the radio is disabled.
type Action struct {
	Kind       ActionKind
	Address    string
	TransferID string
}

// Direction reports the pairing direction label used for metrics.
func (a Action) Direction() string {
	switch a.Kind {
	case ActionPairInbound:
		return "inbound"
	case ActionPairAndTransfer:
		return "outbound"
	default:
		return "static"
	}
}

// TransferStage tracks progress of the pending outgoing transfer.
type TransferStage string

const (
	StageRequestSending TransferStage = "request_sending"
	StageAwaitingSelect TransferStage = "awaiting_select"
	StagePairing        TransferStage = "pairing"
	StageTransferring   TransferStage = "transferring"
)

// PendingTransfer is the single in-flight outgoing transfer.
type PendingTransfer struct {
	TransferID string
	Session    SessionID
	Payload    []byte
	RequestID  string
	Stage      TransferStage
	StartedAt  time.Time
}

// Phase is the derived orchestrator state.
type Phase string

const (
	PhaseIdle            Phase = "idle"
	PhaseAwaitingRadio   Phase = "awaiting_radio"
	PhasePairingInbound  Phase = "pairing_inbound"
	PhasePairingOutbound Phase = "pairing_outbound"
	PhaseTransferPending Phase = "transfer_pending"
)

// PendingSnapshot is a copy of the pending transfer without its payload.
type PendingSnapshot struct {
	TransferID   string
	RequestID    string
	Session      SessionID
	Stage        TransferStage
	PayloadBytes int
	StartedAt    time.Time
}

// Snapshot is a point-in-time copy of orchestrator state.
type Snapshot struct {
	Phase           Phase
	QueuedActions   []Action
	RemoteAddress   string
	EnableRequested bool
	Pending         *PendingSnapshot
}

type state struct {
	queue           []Action
	pending         *PendingTransfer
	remoteAddress   string
	enableRequested bool
}

// phase reports the most specific activity. Queued actions win, then an
// outbound pairing, then an inbound peer, then any other pending transfer.
func (s *state) phase() Phase {
	switch {
	case len(s.queue) > 0:
		return PhaseAwaitingRadio
	case s.pending != nil && s.pending.Stage == StagePairing:
		return PhasePairingOutbound
	case s.remoteAddress != "":
		return PhasePairingInbound
	case s.pending != nil:
		return PhaseTransferPending
	default:
		return PhaseIdle
	}
}

func (s *state) snapshot() Snapshot {
	out := Snapshot{
		Phase:           s.phase(),
		QueuedActions:   append([]Action(nil), s.queue...),
		RemoteAddress:   s.remoteAddress,
		EnableRequested: s.enableRequested,
	}
	if p := s.pending; p != nil {
		out.Pending = &PendingSnapshot{
			TransferID:   p.TransferID,
			RequestID:    p.RequestID,
			Session:      p.Session,
			Stage:        p.Stage,
			PayloadBytes: len(p.Payload),
			StartedAt:    p.StartedAt,
		}
	}
	return out
}

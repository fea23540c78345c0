package orchestrator

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/danmuck/handover/internal/logging"
	"github.com/danmuck/handover/internal/observability"
	"github.com/danmuck/handover/internal/protocol/handover"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var ErrMissingDependency = errors.New("orchestrator: missing dependency")

// Config tunes orchestrator behavior.
type Config struct {
	// EnableSetting is the settings key used to turn the radio on.
	EnableSetting string
	// ReplyTimeout fails a pending transfer whose select reply has not
	// arrived in time. Zero waits forever.
	ReplyTimeout time.Duration
	// CollisionSeed makes collision values deterministic when non-zero.
	CollisionSeed uint64
	Metrics       bool
}

func DefaultConfig() Config {
	return Config{
		EnableSetting: "bluetooth.enabled",
		Metrics:       true,
	}
}

// Dependencies are the collaborators the orchestrator drives.
type Dependencies struct {
	Transport Transport
	Radio     Radio
	Settings  Settings
	Files     FileSender
	Notifier  Notifier

	// Optional.
	Logger *zerolog.Logger
	Now    func() time.Time
}

// Orchestrator sequences carrier negotiation, pairing and transfer.
type Orchestrator struct {
	cfg       Config
	transport Transport
	radio     Radio
	settings  Settings
	files     FileSender
	notifier  Notifier
	log       zerolog.Logger
	now       func() time.Time
	rng       *rand.Rand

	st state
}

func New(cfg Config, deps Dependencies) (*Orchestrator, error) {
	switch {
	case deps.Transport == nil:
		return nil, fmt.Errorf("%w: transport", ErrMissingDependency)
	case deps.Radio == nil:
		return nil, fmt.Errorf("%w: radio", ErrMissingDependency)
	case deps.Settings == nil:
		return nil, fmt.Errorf("%w: settings", ErrMissingDependency)
	case deps.Files == nil:
		return nil, fmt.Errorf("%w: file sender", ErrMissingDependency)
	case deps.Notifier == nil:
		return nil, fmt.Errorf("%w: notifier", ErrMissingDependency)
	}
	if cfg.EnableSetting == "" {
		cfg.EnableSetting = DefaultConfig().EnableSetting
	}

	logger := logging.Component("orchestrator")
	if deps.Logger != nil {
		logger = deps.Logger.With().Str("component", "orchestrator").Logger()
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	seed := cfg.CollisionSeed
	if seed == 0 {
		seed = rand.Uint64()
	}

	return &Orchestrator{
		cfg:       cfg,
		transport: deps.Transport,
		radio:     deps.Radio,
		settings:  deps.Settings,
		files:     deps.Files,
		notifier:  deps.Notifier,
		log:       logger,
		now:       now,
		rng:       rand.New(rand.NewPCG(seed, seed^0x9E3779B97F4A7C15)),
	}, nil
}

// State returns a copy of the current state.
func (o *Orchestrator) State() Snapshot {
	return o.st.snapshot()
}

// IsHandoverInProgress reports whether an inbound handover peer is being paired.
func (o *Orchestrator) IsHandoverInProgress() bool {
	return o.st.remoteAddress != ""
}

// EnqueueOrRun runs action now when the radio is enabled. Otherwise the action
// waits for OnRadioReady and the radio is asked to turn on once per cycle.
func (o *Orchestrator) EnqueueOrRun(action Action) {
	if o.radio.Enabled() {
		o.run(action)
		return
	}
	o.st.queue = append(o.st.queue, action)
	o.recordQueue()
	o.log.Debug().
		Str("action", string(action.Kind)).
		Str("address", action.Address).
		Int("queued", len(o.st.queue)).
		Msg("radio disabled, action queued")
	if !o.st.enableRequested {
		o.st.enableRequested = true
		o.settings.RequestEnable(o.cfg.EnableSetting)
		o.log.Info().Str("setting", o.cfg.EnableSetting).Msg("requested radio enable")
	}
}

// OnRadioReady drains queued actions in FIFO order.
func (o *Orchestrator) OnRadioReady() {
	queued := o.st.queue
	o.st.queue = nil
	o.st.enableRequested = false
	o.recordQueue()
	o.log.Debug().Int("actions", len(queued)).Msg("radio ready")
	for _, action := range queued {
		o.run(action)
	}
}

// HandleMessage routes an incoming NDEF message by its handover kind.
// Anything that is not a handover request or select is ignored.
func (o *Orchestrator) HandleMessage(session SessionID, data []byte) {
	kind, err := handover.PeekKind(data)
	if err != nil {
		o.log.Debug().Err(err).Str("session", string(session)).Msg("ignoring non-handover message")
		o.recordMessage("unknown", observability.OutcomeIgnored)
		return
	}
	switch kind {
	case handover.KindSelect:
		o.HandleSelect(data)
	case handover.KindRequest:
		o.HandleRequest(data, session)
	}
}

// HandleSelect processes a Handover Select. With a pending outgoing transfer
// it answers our request; otherwise it is a static handover.
func (o *Orchestrator) HandleSelect(data []byte) {
	oob, ok := o.bluetoothCarrier(handover.KindSelect, data)
	if !ok {
		return
	}

	p := o.st.pending
	if p == nil {
		o.log.Info().Str("address", oob.Address).Str("name", oob.LocalName).Msg("static handover")
		o.recordMessage(handover.KindSelect.String(), observability.OutcomeHandled)
		o.EnqueueOrRun(Action{Kind: ActionPairStatic, Address: oob.Address})
		return
	}
	if p.Stage != StageRequestSending && p.Stage != StageAwaitingSelect {
		o.log.Warn().
			Str("transfer_id", p.TransferID).
			Str("stage", string(p.Stage)).
			Msg("duplicate select for pending transfer ignored")
		o.recordMessage(handover.KindSelect.String(), observability.OutcomeIgnored)
		return
	}

	p.Stage = StagePairing
	o.log.Info().
		Str("transfer_id", p.TransferID).
		Str("address", oob.Address).
		Msg("select received for pending transfer")
	o.recordMessage(handover.KindSelect.String(), observability.OutcomeHandled)
	o.EnqueueOrRun(Action{Kind: ActionPairAndTransfer, Address: oob.Address, TransferID: p.TransferID})
}

// HandleRequest answers a Handover Request with a Select carrying our address
// and pairs with the requester once the reply is sent.
func (o *Orchestrator) HandleRequest(data []byte, session SessionID) {
	oob, ok := o.bluetoothCarrier(handover.KindRequest, data)
	if !ok {
		return
	}

	o.st.remoteAddress = oob.Address
	reply, err := handover.EncodeSelect(o.radio.Address(), o.powerState())
	if err != nil {
		o.log.Error().Err(err).Str("local_address", o.radio.Address()).Msg("cannot build select reply")
		o.st.remoteAddress = ""
		o.recordMessage(handover.KindRequest.String(), observability.OutcomeSendFailed)
		return
	}

	o.log.Info().
		Str("session", string(session)).
		Str("address", oob.Address).
		Str("name", oob.LocalName).
		Msg("handover request, sending select")
	address := oob.Address
	o.transport.Send(session, reply, func(err error) {
		o.selectSent(address, err)
	})
}

// StartOutgoingTransfer sends a Handover Request for payload and waits for the
// peer's select. Failures are reported through the Notifier.
func (o *Orchestrator) StartOutgoingTransfer(session SessionID, payload []byte, requestID string) {
	if p := o.st.pending; p != nil {
		o.log.Warn().
			Str("request_id", requestID).
			Str("pending_request_id", p.RequestID).
			Msg("outgoing transfer already pending")
		o.notifier.TransferComplete(Completion{Status: StatusFailure, RequestID: requestID, Session: session})
		return
	}

	p := &PendingTransfer{
		TransferID: uuid.NewString(),
		Session:    session,
		Payload:    payload,
		RequestID:  requestID,
		Stage:      StageRequestSending,
		StartedAt:  o.now(),
	}
	o.st.pending = p

	collision := uint16(o.rng.UintN(1 << 16))
	req, err := handover.EncodeRequest(o.radio.Address(), o.powerState(), collision)
	if err != nil {
		o.log.Error().Err(err).Str("local_address", o.radio.Address()).Msg("cannot build handover request")
		o.fail(p, "encode request")
		return
	}

	o.log.Info().
		Str("transfer_id", p.TransferID).
		Str("request_id", requestID).
		Str("session", string(session)).
		Int("bytes", len(payload)).
		Uint16("collision", collision).
		Msg("sending handover request")
	id := p.TransferID
	o.transport.Send(session, req, func(err error) {
		o.requestSent(id, err)
	})
}

// CompleteTransfer ends the current handover: the inbound peer is unpaired and
// the pending outgoing transfer, if any, is resolved exactly once.
func (o *Orchestrator) CompleteTransfer(success bool) {
	if addr := o.st.remoteAddress; addr != "" {
		o.st.remoteAddress = ""
		o.radio.Unpair(addr)
		o.log.Info().Str("address", addr).Bool("success", success).Msg("inbound handover complete, unpaired")
	}
	p := o.st.pending
	if p == nil {
		return
	}
	if success {
		o.succeed(p)
		return
	}
	o.fail(p, "transfer failed")
}

// ExpirePending fails a pending transfer still waiting for its select reply
// after ReplyTimeout. It reports whether a transfer was expired.
func (o *Orchestrator) ExpirePending(now time.Time) bool {
	p := o.st.pending
	if o.cfg.ReplyTimeout <= 0 || p == nil {
		return false
	}
	if p.Stage != StageRequestSending && p.Stage != StageAwaitingSelect {
		return false
	}
	if now.Sub(p.StartedAt) < o.cfg.ReplyTimeout {
		return false
	}
	o.fail(p, "select reply timeout")
	return true
}

func (o *Orchestrator) run(action Action) {
	switch action.Kind {
	case ActionPairStatic, ActionPairInbound:
		o.radio.Pair(action.Address, func(err error) {
			o.paired(action, err)
		})
	case ActionPairAndTransfer:
		if p := o.st.pending; p == nil || p.TransferID != action.TransferID {
			o.log.Debug().Str("transfer_id", action.TransferID).Msg("stale transfer action skipped")
			return
		}
		o.radio.Pair(action.Address, func(err error) {
			o.transferPaired(action, err)
		})
	default:
		o.log.Warn().Str("action", string(action.Kind)).Msg("unknown action")
	}
}

func (o *Orchestrator) requestSent(transferID string, err error) {
	p := o.st.pending
	if p == nil || p.TransferID != transferID {
		return
	}
	if err != nil {
		o.log.Warn().Err(err).Str("transfer_id", transferID).Msg("handover request send failed")
		o.recordMessage(handover.KindRequest.String(), observability.OutcomeSendFailed)
		if p.Stage == StageRequestSending {
			o.fail(p, "request send failed")
		}
		return
	}
	if p.Stage == StageRequestSending {
		p.Stage = StageAwaitingSelect
	}
}

func (o *Orchestrator) selectSent(address string, err error) {
	if err != nil {
		o.log.Warn().Err(err).Str("address", address).Msg("select reply send failed")
		o.recordMessage(handover.KindRequest.String(), observability.OutcomeSendFailed)
		if o.st.remoteAddress == address {
			o.st.remoteAddress = ""
		}
		return
	}
	o.recordMessage(handover.KindRequest.String(), observability.OutcomeHandled)
	o.EnqueueOrRun(Action{Kind: ActionPairInbound, Address: address})
}

func (o *Orchestrator) paired(action Action, err error) {
	o.recordPairing(action, err == nil)
	if err != nil {
		o.log.Warn().Err(err).Str("action", string(action.Kind)).Str("address", action.Address).Msg("pairing failed")
		return
	}
	o.log.Info().Str("action", string(action.Kind)).Str("address", action.Address).Msg("paired")
}

func (o *Orchestrator) transferPaired(action Action, err error) {
	o.recordPairing(action, err == nil)
	p := o.st.pending
	if p == nil || p.TransferID != action.TransferID {
		return
	}
	if err != nil {
		o.log.Warn().Err(err).Str("transfer_id", p.TransferID).Str("address", action.Address).Msg("pairing for transfer failed")
		o.fail(p, "pairing failed")
		return
	}
	p.Stage = StageTransferring
	o.log.Info().
		Str("transfer_id", p.TransferID).
		Str("address", action.Address).
		Int("bytes", len(p.Payload)).
		Msg("paired, starting file transfer")
	o.files.SendFile(action.Address, p.Payload)
}

func (o *Orchestrator) succeed(p *PendingTransfer) {
	o.resolve(p, StatusSuccess)
	o.log.Info().Str("transfer_id", p.TransferID).Str("request_id", p.RequestID).Msg("outgoing transfer complete")
}

func (o *Orchestrator) fail(p *PendingTransfer, reason string) {
	o.resolve(p, StatusFailure)
	o.log.Warn().
		Str("transfer_id", p.TransferID).
		Str("request_id", p.RequestID).
		Str("reason", reason).
		Msg("outgoing transfer failed")
}

func (o *Orchestrator) resolve(p *PendingTransfer, status int) {
	if o.st.pending == p {
		o.st.pending = nil
	}
	if o.cfg.Metrics {
		observability.RecordTransfer(status, o.now().Sub(p.StartedAt))
	}
	o.notifier.TransferComplete(Completion{Status: status, RequestID: p.RequestID, Session: p.Session})
}

// bluetoothCarrier parses data as a handover message of the wanted kind and
// extracts its Bluetooth carrier. Malformed input is logged and ignored.
func (o *Orchestrator) bluetoothCarrier(want handover.Kind, data []byte) (handover.BluetoothOOB, bool) {
	info, err := handover.ParseBytes(data)
	if err != nil {
		o.log.Warn().Err(err).Str("kind", want.String()).Int("bytes", len(data)).Msg("malformed handover message ignored")
		o.recordMessage(want.String(), observability.OutcomeMalformed)
		return handover.BluetoothOOB{}, false
	}
	if info.Kind != want {
		o.log.Warn().Str("kind", info.Kind.String()).Str("want", want.String()).Msg("unexpected handover kind ignored")
		o.recordMessage(info.Kind.String(), observability.OutcomeIgnored)
		return handover.BluetoothOOB{}, false
	}
	rec, ok := handover.FindBluetoothCarrier(info)
	if !ok {
		o.log.Debug().Str("kind", want.String()).Int("carriers", len(info.Carriers)).Msg("no bluetooth carrier, ignored")
		o.recordMessage(want.String(), observability.OutcomeIgnored)
		return handover.BluetoothOOB{}, false
	}
	oob, err := handover.ParseBluetoothOOB(rec)
	if err != nil {
		o.log.Warn().Err(err).Str("kind", want.String()).Msg("malformed bluetooth carrier ignored")
		o.recordMessage(want.String(), observability.OutcomeMalformed)
		return handover.BluetoothOOB{}, false
	}
	return oob, true
}

func (o *Orchestrator) powerState() handover.PowerState {
	if o.radio.Enabled() {
		return handover.PowerActive
	}
	return handover.PowerActivating
}

func (o *Orchestrator) recordMessage(kind, outcome string) {
	if o.cfg.Metrics {
		observability.RecordMessage(kind, outcome)
	}
}

func (o *Orchestrator) recordPairing(action Action, success bool) {
	if o.cfg.Metrics {
		observability.RecordPairing(action.Direction(), success)
	}
}

func (o *Orchestrator) recordQueue() {
	if o.cfg.Metrics {
		observability.SetQueuedActions(len(o.st.queue))
	}
}

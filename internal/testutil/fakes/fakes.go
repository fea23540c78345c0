// Package fakes provides recording collaborators for the orchestrator.
//
// Completions run synchronously inside the call unless Manual is set, in which
// case the test completes them explicitly.
package fakes

import (
	"github.com/danmuck/handover/internal/orchestrator"
)

type Sent struct {
	Session orchestrator.SessionID
	Data    []byte
	done    func(error)
}

type Transport struct {
	Sent   []Sent
	Err    error
	Manual bool
	// OnSend, when set, sees every message before completion.
	OnSend func(session orchestrator.SessionID, data []byte)
}

func (t *Transport) Send(session orchestrator.SessionID, data []byte, done func(error)) {
	t.Sent = append(t.Sent, Sent{Session: session, Data: append([]byte(nil), data...), done: done})
	if t.OnSend != nil {
		t.OnSend(session, data)
	}
	if !t.Manual {
		done(t.Err)
	}
}

// Complete finishes the i-th manual send.
func (t *Transport) Complete(i int, err error) {
	t.Sent[i].done(err)
}

func (t *Transport) Last() Sent {
	if len(t.Sent) == 0 {
		return Sent{}
	}
	return t.Sent[len(t.Sent)-1]
}

type Pair struct {
	Address string
	done    func(error)
}

type Radio struct {
	On       bool
	Addr     string
	Pairs    []Pair
	Unpaired []string
	PairErr  error
	Manual   bool
}

func NewRadio(address string, enabled bool) *Radio {
	return &Radio{Addr: address, On: enabled}
}

func (r *Radio) Enabled() bool   { return r.On }
func (r *Radio) Address() string { return r.Addr }

func (r *Radio) Pair(address string, done func(error)) {
	r.Pairs = append(r.Pairs, Pair{Address: address, done: done})
	if !r.Manual {
		done(r.PairErr)
	}
}

func (r *Radio) Unpair(address string) {
	r.Unpaired = append(r.Unpaired, address)
}

// CompletePair finishes the i-th manual pairing.
func (r *Radio) CompletePair(i int, err error) {
	r.Pairs[i].done(err)
}

// PairedAddresses lists pairing targets in call order.
func (r *Radio) PairedAddresses() []string {
	out := make([]string, 0, len(r.Pairs))
	for _, p := range r.Pairs {
		out = append(out, p.Address)
	}
	return out
}

type Settings struct {
	Requests []string
	// OnRequest, when set, runs after a request is recorded.
	OnRequest func(key string)
}

func (s *Settings) RequestEnable(key string) {
	s.Requests = append(s.Requests, key)
	if s.OnRequest != nil {
		s.OnRequest(key)
	}
}

type FileSend struct {
	Address string
	Payload []byte
}

type Files struct {
	Sends []FileSend
	// OnSend, when set, runs after a transfer is recorded.
	OnSend func(address string, payload []byte)
}

func (f *Files) SendFile(address string, payload []byte) {
	f.Sends = append(f.Sends, FileSend{Address: address, Payload: append([]byte(nil), payload...)})
	if f.OnSend != nil {
		f.OnSend(address, payload)
	}
}

type Notifier struct {
	Completions []orchestrator.Completion
	OnComplete  func(orchestrator.Completion)
}

func (n *Notifier) TransferComplete(c orchestrator.Completion) {
	n.Completions = append(n.Completions, c)
	if n.OnComplete != nil {
		n.OnComplete(c)
	}
}

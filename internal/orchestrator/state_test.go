package orchestrator

import "testing"

func TestPhasePrecedence(t *testing.T) {
	cases := []struct {
		name string
		st   state
		want Phase
	}{
		{"idle", state{}, PhaseIdle},
		{"queued wins", state{queue: []Action{{Kind: ActionPairStatic}}, remoteAddress: "AA"}, PhaseAwaitingRadio},
		{"outbound over inbound", state{remoteAddress: "AA", pending: &PendingTransfer{Stage: StagePairing}}, PhasePairingOutbound},
		{"inbound over transferring", state{remoteAddress: "AA", pending: &PendingTransfer{Stage: StageTransferring}}, PhasePairingInbound},
		{"pending", state{pending: &PendingTransfer{Stage: StageAwaitingSelect}}, PhaseTransferPending},
	}
	for _, tc := range cases {
		if got := tc.st.phase(); got != tc.want {
			t.Fatalf("%s: phase=%s want %s", tc.name, got, tc.want)
		}
	}
}

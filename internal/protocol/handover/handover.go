package handover

import "github.com/danmuck/handover/internal/protocol/ndef"

// Well-known record types used by the handover layer.
const (
	TypeHandoverSelect      = "Hs"
	TypeHandoverRequest     = "Hr"
	TypeCollisionResolution = "cr"
	TypeAlternateCarrier    = "ac"

	// BluetoothOOBType is the MIME type of a classic Bluetooth carrier data record.
	BluetoothOOBType = "application/vnd.bluetooth.ep.oob"

	// Version is the handover version emitted by this package (1.2).
	Version byte = 0x12
)

// carrierDataID is the record id linking the emitted alternate carrier to its data record.
var carrierDataID = []byte("0")

type Kind int

const (
	KindRequest Kind = iota + 1
	KindSelect
)

func (k Kind) String() string {
	switch k {
	case KindRequest:
		return "request"
	case KindSelect:
		return "select"
	default:
		return "unknown"
	}
}

// PowerState is the carrier power state advertised in an alternate carrier record.
type PowerState byte

const (
	PowerInactive   PowerState = 0x00
	PowerActive     PowerState = 0x01
	PowerActivating PowerState = 0x02
	PowerUnknown    PowerState = 0x03

	powerStateMask byte = 0x03
)

func (p PowerState) String() string {
	switch p {
	case PowerInactive:
		return "inactive"
	case PowerActive:
		return "active"
	case PowerActivating:
		return "activating"
	default:
		return "unknown"
	}
}

// AlternateCarrier is one candidate carrier. CarrierData is the outer-message
// record its reference id points at.
type AlternateCarrier struct {
	PowerState    PowerState
	CarrierData   ndef.Record
	AuxiliaryRefs [][]byte
}

// Info is the decoded view of a Handover Request or Select message.
type Info struct {
	Kind           Kind
	MajorVersion   uint8
	MinorVersion   uint8
	HasCollision   bool
	CollisionValue uint16
	Carriers       []AlternateCarrier
}

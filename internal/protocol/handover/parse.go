package handover

import (
	"encoding/binary"
	"fmt"

	"github.com/danmuck/handover/internal/protocol/ndef"
)

// ParseBytes decodes b as an NDEF message and parses it as a handover message.
func ParseBytes(b []byte) (Info, error) {
	msg, err := ndef.Decode(b)
	if err != nil {
		return Info{}, err
	}
	return Parse(msg)
}

// PeekKind classifies b by its first record without resolving carriers.
func PeekKind(b []byte) (Kind, error) {
	msg, err := ndef.Decode(b)
	if err != nil {
		return 0, err
	}
	return kindOf(msg)
}

// Parse interprets msg as a Handover Request or Select. Only the first record
// is inspected for the handover kind; carrier references resolve against all
// records of msg.
func Parse(msg ndef.Message) (Info, error) {
	kind, err := kindOf(msg)
	if err != nil {
		return Info{}, err
	}

	r := ndef.NewReader(msg.Records[0].Payload)
	version, err := r.ReadOctet()
	if err != nil {
		return Info{}, fmt.Errorf("version: %w", err)
	}
	info := Info{
		Kind:         kind,
		MajorVersion: version >> 4,
		MinorVersion: version & 0x0F,
	}

	// A select without nested records carries no carrier.
	if kind == KindSelect && r.AtEnd() {
		return info, nil
	}
	nestedBytes, err := r.ReadOctets(r.Remaining())
	if err != nil {
		return Info{}, err
	}
	nested, err := ndef.Decode(nestedBytes)
	if err != nil {
		return Info{}, fmt.Errorf("nested message: %w", err)
	}

	carriers := nested.Records
	if kind == KindRequest {
		collision, err := collisionValue(nested)
		if err != nil {
			return Info{}, err
		}
		info.HasCollision = true
		info.CollisionValue = collision
		carriers = carriers[1:]
	}

	info.Carriers = make([]AlternateCarrier, 0, len(carriers))
	for i, rec := range carriers {
		ac, err := parseAlternateCarrier(rec, msg)
		if err != nil {
			return Info{}, fmt.Errorf("carrier %d: %w", i, err)
		}
		info.Carriers = append(info.Carriers, ac)
	}
	return info, nil
}

func kindOf(msg ndef.Message) (Kind, error) {
	if len(msg.Records) == 0 {
		return 0, fmt.Errorf("%w: empty message", ErrUnrecognizedHandoverType)
	}
	first := msg.Records[0]
	switch {
	case first.Is(ndef.TNFWellKnown, TypeHandoverSelect):
		return KindSelect, nil
	case first.Is(ndef.TNFWellKnown, TypeHandoverRequest):
		return KindRequest, nil
	default:
		return 0, fmt.Errorf("%w: tnf=%s type=%q", ErrUnrecognizedHandoverType, first.TNF, first.Type)
	}
}

func collisionValue(nested ndef.Message) (uint16, error) {
	cr := nested.Records[0]
	if !cr.Is(ndef.TNFWellKnown, TypeCollisionResolution) {
		return 0, fmt.Errorf("%w: first nested record type %q", ErrMissingCollisionRecord, cr.Type)
	}
	if len(cr.Payload) != 2 {
		return 0, fmt.Errorf("%w: payload length %d", ErrMissingCollisionRecord, len(cr.Payload))
	}
	return binary.BigEndian.Uint16(cr.Payload), nil
}

func parseAlternateCarrier(rec ndef.Record, outer ndef.Message) (AlternateCarrier, error) {
	if !rec.Is(ndef.TNFWellKnown, TypeAlternateCarrier) {
		return AlternateCarrier{}, fmt.Errorf("%w: tnf=%s type=%q", ErrInvalidAlternateCarrier, rec.TNF, rec.Type)
	}
	r := ndef.NewReader(rec.Payload)
	flags, err := r.ReadOctet()
	if err != nil {
		return AlternateCarrier{}, err
	}
	refLen, err := r.ReadOctet()
	if err != nil {
		return AlternateCarrier{}, err
	}
	ref, err := r.ReadOctets(int(refLen))
	if err != nil {
		return AlternateCarrier{}, err
	}
	aux, err := readAuxiliaryRefs(r)
	if err != nil {
		return AlternateCarrier{}, fmt.Errorf("auxiliary refs: %w", err)
	}

	if len(ref) == 0 {
		return AlternateCarrier{}, fmt.Errorf("%w: empty reference", ErrDanglingCarrierReference)
	}
	data, ok := outer.FindByID(ref)
	if !ok {
		return AlternateCarrier{}, fmt.Errorf("%w: %q", ErrDanglingCarrierReference, ref)
	}
	return AlternateCarrier{
		PowerState:    PowerState(flags & powerStateMask),
		CarrierData:   data,
		AuxiliaryRefs: aux,
	}, nil
}

// readAuxiliaryRefs reads the optional trailing auxiliary data reference list.
func readAuxiliaryRefs(r *ndef.Reader) ([][]byte, error) {
	if r.AtEnd() {
		return nil, nil
	}
	count, err := r.ReadOctet()
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, nil
	}
	refs := make([][]byte, 0, count)
	for i := 0; i < int(count); i++ {
		n, err := r.ReadOctet()
		if err != nil {
			return nil, err
		}
		ref, err := r.ReadOctets(int(n))
		if err != nil {
			return nil, err
		}
		refs = append(refs, append([]byte(nil), ref...))
	}
	return refs, nil
}

package ndef

import "bytes"

// Record header flag bits.
const (
	FlagMessageBegin byte = 0x80
	FlagMessageEnd   byte = 0x40
	FlagChunk        byte = 0x20
	FlagShortRecord  byte = 0x10
	FlagIDLength     byte = 0x08

	tnfMask byte = 0x07
)

// TNF is the 3-bit type-name-format of a record.
type TNF byte

const (
	TNFEmpty       TNF = 0x00
	TNFWellKnown   TNF = 0x01
	TNFMimeMedia   TNF = 0x02
	TNFAbsoluteURI TNF = 0x03
	TNFExternal    TNF = 0x04
	TNFUnknown     TNF = 0x05
	TNFUnchanged   TNF = 0x06
	TNFReserved    TNF = 0x07
)

func (t TNF) String() string {
	switch t {
	case TNFEmpty:
		return "empty"
	case TNFWellKnown:
		return "well-known"
	case TNFMimeMedia:
		return "mime-media"
	case TNFAbsoluteURI:
		return "absolute-uri"
	case TNFExternal:
		return "external"
	case TNFUnknown:
		return "unknown"
	case TNFUnchanged:
		return "unchanged"
	default:
		return "reserved"
	}
}

// Record is one decoded NDEF record.
type Record struct {
	TNF     TNF
	Type    []byte
	ID      []byte
	Payload []byte
}

// NewRecord copies its inputs so the record never aliases caller buffers.
func NewRecord(tnf TNF, typ, id, payload []byte) Record {
	return Record{
		TNF:     tnf,
		Type:    clone(typ),
		ID:      clone(id),
		Payload: clone(payload),
	}
}

// Is reports whether the record has the given type-name-format and type.
func (r Record) Is(tnf TNF, typ string) bool {
	return r.TNF == tnf && bytes.Equal(r.Type, []byte(typ))
}

// Message is an ordered, non-empty sequence of records.
type Message struct {
	Records []Record
}

// FindByID returns the first record whose id equals id byte for byte.
func (m Message) FindByID(id []byte) (Record, bool) {
	for _, rec := range m.Records {
		if bytes.Equal(rec.ID, id) {
			return rec, true
		}
	}
	return Record{}, false
}

func clone(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

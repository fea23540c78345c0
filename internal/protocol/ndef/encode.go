package ndef

import (
	"encoding/binary"
	"fmt"
)

const maxShortPayload = 0xFF

// Encode serializes records as one message. Boundary flags come from position:
// the first record carries message-begin, the final one message-end.
func Encode(records []Record) ([]byte, error) {
	if len(records) == 0 {
		return nil, ErrEmptyMessage
	}
	size, err := encodedLength(records)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, size)
	for i, rec := range records {
		out = appendRecord(out, rec, i == 0, i == len(records)-1)
	}
	return out, nil
}

// EncodeMessage is Encode over m.Records.
func EncodeMessage(m Message) ([]byte, error) {
	return Encode(m.Records)
}

func encodedLength(records []Record) (int, error) {
	total := 0
	for i, rec := range records {
		if len(rec.Type) > 0xFF {
			return 0, fmt.Errorf("%w: record %d type length %d", ErrFieldTooLong, i, len(rec.Type))
		}
		if len(rec.ID) > 0xFF {
			return 0, fmt.Errorf("%w: record %d id length %d", ErrFieldTooLong, i, len(rec.ID))
		}
		if uint64(len(rec.Payload)) > uint64(^uint32(0)) {
			return 0, fmt.Errorf("%w: record %d payload length %d", ErrFieldTooLong, i, len(rec.Payload))
		}
		total += 2 + len(rec.Type) + len(rec.ID) + len(rec.Payload)
		if len(rec.Payload) > maxShortPayload {
			total += 4
		} else {
			total++
		}
		if len(rec.ID) > 0 {
			total++
		}
	}
	return total, nil
}

func appendRecord(out []byte, rec Record, begin, end bool) []byte {
	header := byte(rec.TNF) & tnfMask
	if begin {
		header |= FlagMessageBegin
	}
	if end {
		header |= FlagMessageEnd
	}
	short := len(rec.Payload) <= maxShortPayload
	if short {
		header |= FlagShortRecord
	}
	if len(rec.ID) > 0 {
		header |= FlagIDLength
	}

	out = append(out, header, byte(len(rec.Type)))
	if short {
		out = append(out, byte(len(rec.Payload)))
	} else {
		out = binary.BigEndian.AppendUint32(out, uint32(len(rec.Payload)))
	}
	if len(rec.ID) > 0 {
		out = append(out, byte(len(rec.ID)))
	}
	out = append(out, rec.Type...)
	out = append(out, rec.ID...)
	out = append(out, rec.Payload...)
	return out
}

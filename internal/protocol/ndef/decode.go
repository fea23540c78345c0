package ndef

import "fmt"

// Decode parses b into a message, stopping after the record that carries the
// message-end flag. Bytes after that record are ignored.
func Decode(b []byte) (Message, error) {
	r := NewReader(b)
	records := make([]Record, 0, 2)
	for {
		rec, header, err := readRecord(r, len(records) == 0)
		if err != nil {
			return Message{}, fmt.Errorf("record %d: %w", len(records), err)
		}
		records = append(records, rec)
		if header&FlagMessageEnd != 0 {
			break
		}
	}
	return Message{Records: records}, nil
}

func readRecord(r *Reader, first bool) (Record, byte, error) {
	header, err := r.ReadOctet()
	if err != nil {
		return Record{}, 0, err
	}
	begin := header&FlagMessageBegin != 0
	if first && !begin {
		return Record{}, 0, ErrMissingMessageBegin
	}
	if !first && begin {
		return Record{}, 0, ErrUnexpectedMessageBegin
	}
	if header&FlagChunk != 0 {
		return Record{}, 0, ErrUnsupportedChunking
	}

	typeLen, err := r.ReadOctet()
	if err != nil {
		return Record{}, 0, err
	}
	payloadLen, err := readPayloadLength(r, header&FlagShortRecord != 0)
	if err != nil {
		return Record{}, 0, err
	}
	var idLen byte
	if header&FlagIDLength != 0 {
		if idLen, err = r.ReadOctet(); err != nil {
			return Record{}, 0, err
		}
	}

	typ, err := r.ReadOctets(int(typeLen))
	if err != nil {
		return Record{}, 0, err
	}
	id, err := r.ReadOctets(int(idLen))
	if err != nil {
		return Record{}, 0, err
	}
	if uint64(payloadLen) > uint64(r.Remaining()) {
		return Record{}, 0, fmt.Errorf("%w: payload length %d exceeds %d remaining", ErrBufferUnderrun, payloadLen, r.Remaining())
	}
	payload, err := r.ReadOctets(int(payloadLen))
	if err != nil {
		return Record{}, 0, err
	}

	return NewRecord(TNF(header&tnfMask), typ, id, payload), header, nil
}

func readPayloadLength(r *Reader, short bool) (uint32, error) {
	if short {
		b, err := r.ReadOctet()
		return uint32(b), err
	}
	var acc uint32
	for i := 0; i < 4; i++ {
		b, err := r.ReadOctet()
		if err != nil {
			return 0, err
		}
		acc = acc<<8 | uint32(b)
	}
	return acc, nil
}

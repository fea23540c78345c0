package ndef

import "fmt"

// Reader is a bounds-checked sequential reader over an immutable buffer.
type Reader struct {
	buf []byte
	pos int
}

func NewReader(buf []byte) *Reader {
	return &Reader{buf: buf}
}

// ReadOctet returns the byte at the cursor and advances by one.
func (r *Reader) ReadOctet() (byte, error) {
	if r.pos >= len(r.buf) {
		return 0, fmt.Errorf("%w: read octet at offset %d", ErrBufferUnderrun, r.pos)
	}
	b := r.buf[r.pos]
	r.pos++
	return b, nil
}

// ReadOctets returns the next n bytes. The slice aliases the underlying buffer.
func (r *Reader) ReadOctets(n int) ([]byte, error) {
	if err := r.check(n); err != nil {
		return nil, err
	}
	out := r.buf[r.pos : r.pos+n : r.pos+n]
	r.pos += n
	return out, nil
}

func (r *Reader) Skip(n int) error {
	if err := r.check(n); err != nil {
		return err
	}
	r.pos += n
	return nil
}

func (r *Reader) Remaining() int {
	return len(r.buf) - r.pos
}

func (r *Reader) AtEnd() bool {
	return r.pos == len(r.buf)
}

func (r *Reader) check(n int) error {
	if n < 0 || n > len(r.buf)-r.pos {
		return fmt.Errorf("%w: need %d octets at offset %d, have %d", ErrBufferUnderrun, n, r.pos, len(r.buf)-r.pos)
	}
	return nil
}

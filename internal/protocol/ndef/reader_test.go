package ndef

import (
	"bytes"
	"errors"
	"testing"
)

func TestReaderSequentialReads(t *testing.T) {
	r := NewReader([]byte{0x01, 0x02, 0x03, 0x04})

	b, err := r.ReadOctet()
	if err != nil || b != 0x01 {
		t.Fatalf("read octet: b=%#x err=%v", b, err)
	}
	got, err := r.ReadOctets(2)
	if err != nil {
		t.Fatalf("read octets: %v", err)
	}
	if !bytes.Equal(got, []byte{0x02, 0x03}) {
		t.Fatalf("unexpected octets: %x", got)
	}
	if r.Remaining() != 1 || r.AtEnd() {
		t.Fatalf("unexpected position remaining=%d at_end=%v", r.Remaining(), r.AtEnd())
	}
	if err := r.Skip(1); err != nil {
		t.Fatalf("skip: %v", err)
	}
	if !r.AtEnd() {
		t.Fatalf("expected reader at end")
	}
}

func TestReaderZeroLengthRead(t *testing.T) {
	r := NewReader(nil)
	got, err := r.ReadOctets(0)
	if err != nil {
		t.Fatalf("zero-length read: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty slice, got %x", got)
	}
}

func TestReaderUnderrun(t *testing.T) {
	r := NewReader([]byte{0xAA})
	if _, err := r.ReadOctets(2); !errors.Is(err, ErrBufferUnderrun) {
		t.Fatalf("expected ErrBufferUnderrun, got %v", err)
	}
	if err := r.Skip(2); !errors.Is(err, ErrBufferUnderrun) {
		t.Fatalf("expected ErrBufferUnderrun on skip, got %v", err)
	}
	if _, err := r.ReadOctet(); err != nil {
		t.Fatalf("failed reads must not move the cursor: %v", err)
	}
	if _, err := r.ReadOctet(); !errors.Is(err, ErrBufferUnderrun) {
		t.Fatalf("expected ErrBufferUnderrun at end, got %v", err)
	}
}

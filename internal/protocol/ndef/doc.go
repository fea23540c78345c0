// Package ndef owns the NDEF record container wire format.
//
// Ownership boundary:
// - bounds-checked octet reader
// - record header flags and type-name-format values
// - message decode/encode
//
// Chunked records are rejected on decode and never produced on encode.
package ndef

// Package handover owns the NFC Connection Handover message layer.
//
// Ownership boundary:
// - Handover Request (Hr) and Handover Select (Hs) parsing
// - alternate carrier resolution against the outer record set
// - Bluetooth out-of-band carrier data
// - request/select message construction
//
// Only the simple request/select exchange with a Bluetooth carrier is built.
// Parsing accepts any carrier and leaves carrier selection to the caller.
package handover

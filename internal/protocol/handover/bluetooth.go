package handover

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/danmuck/handover/internal/protocol/ndef"
)

// EIR data types interpreted from Bluetooth OOB carrier data.
const (
	EIRShortLocalName    byte = 0x08
	EIRCompleteLocalName byte = 0x09
	EIRClassOfDevice     byte = 0x0D
)

const addressLen = 6

// BluetoothOOB is the decoded classic Bluetooth out-of-band carrier data.
type BluetoothOOB struct {
	Address          string
	LocalName        string
	ClassOfDevice    uint32
	HasClassOfDevice bool
}

// FindBluetoothCarrier returns the carrier data of the first alternate carrier
// that is a Bluetooth OOB record.
func FindBluetoothCarrier(info Info) (ndef.Record, bool) {
	for _, ac := range info.Carriers {
		if ac.CarrierData.Is(ndef.TNFMimeMedia, BluetoothOOBType) {
			return ac.CarrierData, true
		}
	}
	return ndef.Record{}, false
}

// ParseBluetoothOOB decodes a Bluetooth OOB payload. The address is transmitted
// least-significant octet first.
func ParseBluetoothOOB(rec ndef.Record) (BluetoothOOB, error) {
	r := ndef.NewReader(rec.Payload)
	// Total OOB length, little endian. Not checked against the payload.
	if err := r.Skip(2); err != nil {
		return BluetoothOOB{}, err
	}
	raw, err := r.ReadOctets(addressLen)
	if err != nil {
		return BluetoothOOB{}, err
	}
	oob := BluetoothOOB{Address: formatAddress(raw)}

	for !r.AtEnd() {
		n, err := r.ReadOctet()
		if err != nil {
			return BluetoothOOB{}, err
		}
		// Zero length ends the significant part; the rest is padding.
		if n == 0 {
			break
		}
		typ, err := r.ReadOctet()
		if err != nil {
			return BluetoothOOB{}, err
		}
		value, err := r.ReadOctets(int(n) - 1)
		if err != nil {
			return BluetoothOOB{}, err
		}
		switch typ {
		case EIRShortLocalName, EIRCompleteLocalName:
			oob.LocalName = decodeName(value)
		case EIRClassOfDevice:
			if len(value) == 3 {
				oob.ClassOfDevice = uint32(value[0]) | uint32(value[1])<<8 | uint32(value[2])<<16
				oob.HasClassOfDevice = true
			}
		}
	}
	return oob, nil
}

// ParseAddress splits a colon separated address into its six octets, most
// significant first.
func ParseAddress(address string) ([addressLen]byte, error) {
	var out [addressLen]byte
	parts := strings.Split(strings.TrimSpace(address), ":")
	if len(parts) != addressLen {
		return out, fmt.Errorf("%w: %q", ErrMalformedAddress, address)
	}
	for i, part := range parts {
		if len(part) == 0 || len(part) > 2 {
			return out, fmt.Errorf("%w: %q", ErrMalformedAddress, address)
		}
		v, err := strconv.ParseUint(part, 16, 8)
		if err != nil {
			return out, fmt.Errorf("%w: %q", ErrMalformedAddress, address)
		}
		out[i] = byte(v)
	}
	return out, nil
}

// NormalizeAddress returns the canonical uppercase form of address.
func NormalizeAddress(address string) (string, error) {
	octets, err := ParseAddress(address)
	if err != nil {
		return "", err
	}
	return canonicalAddress(octets[:]), nil
}

// formatAddress renders transmitted octets as a canonical address.
func formatAddress(wire []byte) string {
	octets := make([]byte, len(wire))
	for i, b := range wire {
		octets[len(wire)-1-i] = b
	}
	return canonicalAddress(octets)
}

func canonicalAddress(octets []byte) string {
	parts := make([]string, len(octets))
	for i, b := range octets {
		parts[i] = fmt.Sprintf("%02X", b)
	}
	return strings.Join(parts, ":")
}

func decodeName(b []byte) string {
	if utf8.Valid(b) {
		return string(b)
	}
	return strings.ToValidUTF8(string(b), "\uFFFD")
}

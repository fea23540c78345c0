package handover

import (
	"encoding/binary"

	"github.com/danmuck/handover/internal/protocol/ndef"
)

// bluetoothOOBLength is the OOB length field value for an address-only payload.
const bluetoothOOBLength = 2 + addressLen

// EncodeRequest builds a Handover Request offering one Bluetooth carrier.
func EncodeRequest(address string, power PowerState, collision uint16) ([]byte, error) {
	carrier, err := bluetoothCarrierRecord(address)
	if err != nil {
		return nil, err
	}
	cr := make([]byte, 2)
	binary.BigEndian.PutUint16(cr, collision)
	nested := []ndef.Record{
		ndef.NewRecord(ndef.TNFWellKnown, []byte(TypeCollisionResolution), nil, cr),
		alternateCarrierRecord(power),
	}
	return encodeHandover(TypeHandoverRequest, nested, carrier)
}

// EncodeSelect builds a Handover Select answering with one Bluetooth carrier.
func EncodeSelect(address string, power PowerState) ([]byte, error) {
	carrier, err := bluetoothCarrierRecord(address)
	if err != nil {
		return nil, err
	}
	nested := []ndef.Record{alternateCarrierRecord(power)}
	return encodeHandover(TypeHandoverSelect, nested, carrier)
}

func encodeHandover(typ string, nested []ndef.Record, carrier ndef.Record) ([]byte, error) {
	inner, err := ndef.Encode(nested)
	if err != nil {
		return nil, err
	}
	payload := make([]byte, 0, 1+len(inner))
	payload = append(payload, Version)
	payload = append(payload, inner...)
	return ndef.Encode([]ndef.Record{
		ndef.NewRecord(ndef.TNFWellKnown, []byte(typ), nil, payload),
		carrier,
	})
}

// alternateCarrierRecord references the carrier data record by id and carries
// no auxiliary data references.
func alternateCarrierRecord(power PowerState) ndef.Record {
	payload := []byte{byte(power) & powerStateMask, byte(len(carrierDataID))}
	payload = append(payload, carrierDataID...)
	payload = append(payload, 0x00)
	return ndef.NewRecord(ndef.TNFWellKnown, []byte(TypeAlternateCarrier), nil, payload)
}

func bluetoothCarrierRecord(address string) (ndef.Record, error) {
	octets, err := ParseAddress(address)
	if err != nil {
		return ndef.Record{}, err
	}
	payload := make([]byte, 2, bluetoothOOBLength)
	binary.LittleEndian.PutUint16(payload, bluetoothOOBLength)
	for i := addressLen - 1; i >= 0; i-- {
		payload = append(payload, octets[i])
	}
	return ndef.NewRecord(ndef.TNFMimeMedia, []byte(BluetoothOOBType), carrierDataID, payload), nil
}

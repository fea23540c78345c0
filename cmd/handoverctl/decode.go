package main

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/danmuck/handover/internal/protocol/handover"
	"github.com/spf13/cobra"
)

type carrierView struct {
	PowerState    string   `json:"power_state" yaml:"power_state"`
	TNF           string   `json:"tnf" yaml:"tnf"`
	Type          string   `json:"type" yaml:"type"`
	ID            string   `json:"id,omitempty" yaml:"id,omitempty"`
	Payload       string   `json:"payload" yaml:"payload"`
	AuxiliaryRefs []string `json:"auxiliary_refs,omitempty" yaml:"auxiliary_refs,omitempty"`
}

type bluetoothView struct {
	Address       string `json:"address" yaml:"address"`
	LocalName     string `json:"local_name,omitempty" yaml:"local_name,omitempty"`
	ClassOfDevice string `json:"class_of_device,omitempty" yaml:"class_of_device,omitempty"`
}

type decodeView struct {
	Kind      string         `json:"kind" yaml:"kind"`
	Version   string         `json:"version" yaml:"version"`
	Collision *uint16        `json:"collision,omitempty" yaml:"collision,omitempty"`
	Carriers  []carrierView  `json:"carriers" yaml:"carriers"`
	Bluetooth *bluetoothView `json:"bluetooth,omitempty" yaml:"bluetooth,omitempty"`
}

func (v decodeView) fields() []field {
	out := []field{
		{"kind", v.Kind},
		{"version", v.Version},
	}
	if v.Collision != nil {
		out = append(out, field{"collision", fmt.Sprintf("0x%04x", *v.Collision)})
	}
	out = append(out, field{"carriers", strconv.Itoa(len(v.Carriers))})
	for i, c := range v.Carriers {
		prefix := fmt.Sprintf("carrier[%d]", i)
		out = append(out,
			field{prefix + ".power", c.PowerState},
			field{prefix + ".type", c.TNF + " " + c.Type},
			field{prefix + ".payload", c.Payload},
		)
		if len(c.AuxiliaryRefs) > 0 {
			out = append(out, field{prefix + ".aux", strings.Join(c.AuxiliaryRefs, ",")})
		}
	}
	if bt := v.Bluetooth; bt != nil {
		out = append(out, field{"bluetooth.address", bt.Address})
		if bt.LocalName != "" {
			out = append(out, field{"bluetooth.name", bt.LocalName})
		}
		if bt.ClassOfDevice != "" {
			out = append(out, field{"bluetooth.class", bt.ClassOfDevice})
		}
	}
	return out
}

func newDecodeCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "decode <hex>",
		Short: "Decode a handover request or select message",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := parseHex(strings.Join(args, ""))
			if err != nil {
				return err
			}
			view, err := decodeHandover(raw)
			if err != nil {
				return err
			}
			return writeOutput(cmd.OutOrStdout(), root.output, view)
		},
	}
}

func decodeHandover(raw []byte) (decodeView, error) {
	info, err := handover.ParseBytes(raw)
	if err != nil {
		return decodeView{}, fmt.Errorf("decode handover: %w", err)
	}

	view := decodeView{
		Kind:     info.Kind.String(),
		Version:  fmt.Sprintf("%d.%d", info.MajorVersion, info.MinorVersion),
		Carriers: make([]carrierView, 0, len(info.Carriers)),
	}
	if info.HasCollision {
		c := info.CollisionValue
		view.Collision = &c
	}
	for _, ac := range info.Carriers {
		cv := carrierView{
			PowerState: ac.PowerState.String(),
			TNF:        ac.CarrierData.TNF.String(),
			Type:       string(ac.CarrierData.Type),
			ID:         string(ac.CarrierData.ID),
			Payload:    hex.EncodeToString(ac.CarrierData.Payload),
		}
		for _, ref := range ac.AuxiliaryRefs {
			cv.AuxiliaryRefs = append(cv.AuxiliaryRefs, string(ref))
		}
		view.Carriers = append(view.Carriers, cv)
	}

	if rec, ok := handover.FindBluetoothCarrier(info); ok {
		oob, err := handover.ParseBluetoothOOB(rec)
		if err != nil {
			return decodeView{}, fmt.Errorf("decode bluetooth carrier: %w", err)
		}
		bt := &bluetoothView{Address: oob.Address, LocalName: oob.LocalName}
		if oob.HasClassOfDevice {
			bt.ClassOfDevice = fmt.Sprintf("0x%06x", oob.ClassOfDevice)
		}
		view.Bluetooth = bt
	}
	return view, nil
}

// parseHex accepts plain hex with optional whitespace, colons and a 0x prefix.
func parseHex(s string) ([]byte, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "0x")
	s = strings.NewReplacer(" ", "", ":", "", "\n", "", "\t", "").Replace(s)
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("parse hex: %w", err)
	}
	return b, nil
}

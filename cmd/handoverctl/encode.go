package main

import (
	"encoding/hex"
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/danmuck/handover/internal/protocol/handover"
	"github.com/spf13/cobra"
)

type encodeOptions struct {
	address   string
	power     string
	collision uint16
}

func newEncodeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "encode",
		Short: "Build a handover message carrying a bluetooth address",
	}

	sel := &encodeOptions{}
	selectCmd := &cobra.Command{
		Use:   "select",
		Short: "Build a handover select",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			power, err := parsePowerState(sel.power)
			if err != nil {
				return err
			}
			b, err := handover.EncodeSelect(sel.address, power)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hex.EncodeToString(b))
			return nil
		},
	}
	bindEncodeFlags(selectCmd, sel)

	req := &encodeOptions{}
	requestCmd := &cobra.Command{
		Use:   "request",
		Short: "Build a handover request",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			power, err := parsePowerState(req.power)
			if err != nil {
				return err
			}
			collision := req.collision
			if !cmd.Flags().Changed("collision") {
				collision = uint16(rand.UintN(1 << 16))
			}
			b, err := handover.EncodeRequest(req.address, power, collision)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hex.EncodeToString(b))
			return nil
		},
	}
	bindEncodeFlags(requestCmd, req)
	requestCmd.Flags().Uint16Var(&req.collision, "collision", 0, "collision resolution value (random when unset)")

	cmd.AddCommand(selectCmd, requestCmd)
	return cmd
}

func bindEncodeFlags(cmd *cobra.Command, opts *encodeOptions) {
	cmd.Flags().StringVar(&opts.address, "address", "", "bluetooth address, e.g. AA:BB:CC:DD:EE:FF")
	cmd.Flags().StringVar(&opts.power, "power", "active", "carrier power state: inactive|active|activating|unknown")
	_ = cmd.MarkFlagRequired("address")
}

func parsePowerState(raw string) (handover.PowerState, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "inactive":
		return handover.PowerInactive, nil
	case "", "active":
		return handover.PowerActive, nil
	case "activating":
		return handover.PowerActivating, nil
	case "unknown":
		return handover.PowerUnknown, nil
	default:
		return 0, fmt.Errorf("unknown power state %q", raw)
	}
}

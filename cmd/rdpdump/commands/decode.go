package commands

import (
	"bytes"
	"fmt"

	"github.com/mirrorbeam/rdpwire/internal/logger"
	"github.com/mirrorbeam/rdpwire/internal/protocol/rdp/cliprdr"
	"github.com/mirrorbeam/rdpwire/internal/protocol/rdp/input"
	"github.com/mirrorbeam/rdpwire/internal/protocol/rdp/surface"
	"github.com/mirrorbeam/rdpwire/internal/protocol/rdp/wire"
	"github.com/spf13/cobra"
)

var family string

var decodeCmd = &cobra.Command{
	Use:   "decode <file>",
	Short: "Decode a capture as one PDU family",
	Long: `Decode reads a capture file and decodes it as the selected PDU family,
printing the typed result or the typed decode error.

Families:
  input     slow-path input-event sequence PDU
  fastpath  fast-path input PDU
  surface   surface commands (zero-copy)
  cliprdr   clipboard channel PDU (zero-copy)`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := readInput(args[0])
		if err != nil {
			return err
		}
		logger.Debug("decoding capture", "file", args[0], "bytes", len(data), "family", family)
		return decodeFamily(family, data)
	},
}

func init() {
	decodeCmd.Flags().StringVar(&family, "family", "input", "PDU family to decode as")
}

func decodeFamily(family string, data []byte) error {
	switch family {
	case "input":
		pdu, err := wire.Decode[input.EventPDU](bytes.NewReader(data))
		if err != nil {
			return fmt.Errorf("decode input event PDU: %w", err)
		}
		fmt.Printf("input event PDU: %d events\n", len(pdu.Events))
		for i, ev := range pdu.Events {
			fmt.Printf("  [%d] %s %+v\n", i, ev.Type(), ev)
		}
		return nil

	case "fastpath":
		pdu, err := wire.Decode[input.FastPathInputPDU](bytes.NewReader(data))
		if err != nil {
			return fmt.Errorf("decode fast-path input PDU: %w", err)
		}
		fmt.Printf("fast-path input PDU: %d events\n", len(pdu.Events))
		for i, ev := range pdu.Events {
			fmt.Printf("  [%d] code=%d %+v\n", i, ev.FastPathCode(), ev)
		}
		return nil

	case "surface":
		cmds, err := surface.ParseCommands(data)
		if err != nil {
			return fmt.Errorf("parse surface commands: %w", err)
		}
		fmt.Printf("surface commands: %d\n", len(cmds))
		for i, c := range cmds {
			fmt.Printf("  [%d] %s length=%d\n", i, c.CommandType(), c.Length())
		}
		return nil

	case "cliprdr":
		pdu, err := cliprdr.ParsePDU(data)
		if err != nil {
			return fmt.Errorf("parse clipboard PDU: %w", err)
		}
		fmt.Printf("clipboard PDU: %s flags=0x%04X length=%d\n",
			pdu.MessageType(), uint16(pdu.MessageFlags()), pdu.Length())
		return nil

	default:
		return fmt.Errorf("unknown PDU family %q", family)
	}
}

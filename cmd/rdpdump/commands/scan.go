package commands

import (
	"bytes"
	"fmt"

	"github.com/mirrorbeam/rdpwire/internal/protocol/rdp/cliprdr"
	"github.com/mirrorbeam/rdpwire/internal/protocol/rdp/input"
	"github.com/mirrorbeam/rdpwire/internal/protocol/rdp/surface"
	"github.com/mirrorbeam/rdpwire/internal/protocol/rdp/wire"
	"github.com/spf13/cobra"
)

var scanCmd = &cobra.Command{
	Use:   "scan <file>",
	Short: "Try every PDU family against a capture",
	Long: `Scan runs the capture through every decoder in the codec layer and
reports which families accept it. Useful for triaging fuzz findings and
unidentified captures.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := readInput(args[0])
		if err != nil {
			return err
		}

		type attempt struct {
			family string
			err    error
		}
		attempts := []attempt{
			{"input", tryDecode[input.EventPDU](data)},
			{"fastpath", tryDecode[input.FastPathInputPDU](data)},
			{"surface", func() error { _, _, err := surface.ParseCommand(data); return err }()},
			{"cliprdr", func() error { _, err := cliprdr.ParsePDU(data); return err }()},
		}

		for _, a := range attempts {
			if a.err == nil {
				fmt.Printf("%-10s OK\n", a.family)
			} else {
				fmt.Printf("%-10s %v\n", a.family, a.err)
			}
		}
		return nil
	},
}

func tryDecode[T any, P interface {
	*T
	wire.Decoder
}](data []byte) error {
	_, err := wire.Decode[T, P](bytes.NewReader(data))
	return err
}

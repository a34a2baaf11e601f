package cmd

import (
	"github.com/spf13/cobra"

	"github.com/rawbytedev/tagwire"
)

func newDecodeCmd(a *app) *cobra.Command {
	var (
		in, format string
		offset     int
		all        bool
	)
	cmd := &cobra.Command{
		Use:   "decode",
		Short: "Decode a tagged binary value",
		Long: `Decode reads the value at --offset and prints it as JSON, YAML or CBOR.
With --all every value concatenated from the offset to the end is printed.

Example:
  tagwire decode --in user.bin --format yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(in, cmd.InOrStdin())
			if err != nil {
				return err
			}
			for {
				v, next, err := a.codec.DecodeAt(data, offset)
				if err != nil {
					return err
				}
				a.log.Debug("decoded", "offset", offset, "next", next, "kind", v.Kind().String())
				if err := writeDocument(cmd.OutOrStdout(), tagwire.ToGo(v), format); err != nil {
					return err
				}
				offset = next
				if !all || offset >= len(data) {
					return nil
				}
			}
		},
	}
	cmd.Flags().StringVar(&in, "in", "-", "input file, - for stdin")
	cmd.Flags().IntVar(&offset, "offset", 0, "byte offset of the value")
	cmd.Flags().StringVar(&format, "format", "json", "output format: json, yaml or cbor")
	cmd.Flags().BoolVar(&all, "all", false, "decode every concatenated value")
	return cmd
}

package cmd

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"github.com/spf13/cobra"

	"github.com/rawbytedev/tagwire"
)

func newInspectCmd(a *app) *cobra.Command {
	var (
		in     string
		offset int
	)
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Print the tag structure of an encoded value",
		Long: `Inspect prints one line per tag of the value at --offset, then compares
its size with the CBOR encoding of the same value.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(in, cmd.InOrStdin())
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			wf, _ := a.cfg.Get("wire_format")
			fmt.Fprintf(w, "wire format %s, %d bytes from offset %d\n", wf, len(data)-offset, offset)
			if err := tagwire.Dump(w, data, offset); err != nil {
				return err
			}
			v, next, err := a.codec.DecodeAt(data, offset)
			if err != nil {
				return err
			}
			cb, err := cbor.Marshal(tagwire.ToGo(v))
			if err != nil {
				return fmt.Errorf("cbor comparison: %w", err)
			}
			fmt.Fprintf(w, "tagwire %d bytes, cbor %d bytes\n", next-offset, len(cb))
			return nil
		},
	}
	cmd.Flags().StringVar(&in, "in", "-", "input file, - for stdin")
	cmd.Flags().IntVar(&offset, "offset", 0, "byte offset of the value")
	return cmd
}

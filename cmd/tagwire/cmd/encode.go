package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rawbytedev/tagwire"
)

func newEncodeCmd(a *app) *cobra.Command {
	var in, out, from string
	cmd := &cobra.Command{
		Use:   "encode",
		Short: "Encode a JSON, YAML or CBOR document",
		Long: `Encode reads a document, applies the configured schema and writes the
tagged binary encoding.

Example:
  tagwire encode --schema user.yaml --from json --in user.json --out user.bin`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(in, cmd.InOrStdin())
			if err != nil {
				return err
			}
			doc, err := readDocument(data, from)
			if err != nil {
				return err
			}
			v, err := tagwire.FromGo(doc)
			if err != nil {
				return fmt.Errorf("unsupported document: %w", err)
			}
			buf, err := a.codec.Encode(v)
			if err != nil {
				return err
			}
			a.log.Info("encoded", "from", from, "in_bytes", len(data), "out_bytes", len(buf))
			return writeOutput(out, cmd.OutOrStdout(), buf)
		},
	}
	cmd.Flags().StringVar(&in, "in", "-", "input file, - for stdin")
	cmd.Flags().StringVar(&out, "out", "-", "output file, - for stdout")
	cmd.Flags().StringVar(&from, "from", "json", "input format: json, yaml or cbor")
	return cmd
}

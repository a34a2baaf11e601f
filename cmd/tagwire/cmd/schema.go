package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rawbytedev/tagwire/pkg/schemafile"
)

func newSchemaCmd(a *app) *cobra.Command {
	var asYAML bool
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Print the merged schema and its fingerprint",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			if asYAML {
				data, err := schemafile.Marshal(a.schema)
				if err != nil {
					return err
				}
				_, err = w.Write(data)
				return err
			}
			fmt.Fprintln(w, a.schema.String())
			fmt.Fprintf(w, "fingerprint %016x\n", a.schema.Fingerprint())
			return nil
		},
	}
	cmd.Flags().BoolVar(&asYAML, "yaml", false, "print the schema as YAML")
	return cmd
}

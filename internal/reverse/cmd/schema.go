package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
	"github.com/spf13/cobra"

	"ilreverse/internal/config"
	"ilreverse/internal/metadata"
)

func newSchemaCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:    "schema",
		Short:  "Generate JSON schema for configuration or module images",
		Long:   "Generate JSON schema for the ilreverse configuration file, or with --image for module images",
		Hidden: true,
		Args:   cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var v any = &config.Config{}
			if image, _ := cmd.Flags().GetBool("image"); image {
				v = &metadata.Image{}
			}
			reflector := new(jsonschema.Reflector)
			bts, err := json.MarshalIndent(reflector.Reflect(v), "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal schema: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(bts))
			return nil
		},
	}
	cmd.Flags().Bool("image", false, "Describe module images instead of the configuration")
	return cmd
}

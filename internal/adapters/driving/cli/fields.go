package cli

import (
	"github.com/spf13/cobra"

	"github.com/altum-labs/docharvest/internal/core/services"
)

var fieldsFieldIDs []string

var fieldsCmd = &cobra.Command{
	Use:   "fields",
	Short: "Extract field values from matching annotations",
	Long: `Searches for annotations and prints one row per requested field
occurrence. Prefix a field id with "meta." to read annotation
metadata instead of the content tree.`,
	Args: cobra.NoArgs,
	RunE: runFields,
}

func init() {
	addSearchFlags(fieldsCmd)
	fieldsCmd.Flags().StringSliceVar(&fieldsFieldIDs, "field", nil, "Field id to extract (repeatable)")
	_ = fieldsCmd.MarkFlagRequired("field")
	rootCmd.AddCommand(fieldsCmd)
}

func runFields(cmd *cobra.Command, _ []string) error {
	collection, err := searchCollection(cmd)
	if err != nil {
		return err
	}

	itemErrs, err := harvester.FetchContentFor(cmd.Context(), collection)
	if err != nil {
		return err
	}
	reportItemErrors("content", itemErrs)

	return printJSON(cmd, services.FieldValues(collection, fieldsFieldIDs))
}

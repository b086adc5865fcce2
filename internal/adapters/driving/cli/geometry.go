package cli

import (
	"github.com/spf13/cobra"

	"github.com/altum-labs/docharvest/internal/core/domain"
)

var (
	geometryFieldID  string
	geometrySlicerID string
)

var geometryCmd = &cobra.Command{
	Use:   "geometry",
	Short: "Export normalized bounding-box geometry for a field",
	Long: `Searches for annotations and prints the bounding-box centers of one
field, normalized to page-relative percentages. An optional slicer
field labels each row for downstream grouping.`,
	Args: cobra.NoArgs,
	RunE: runGeometry,
}

func init() {
	addSearchFlags(geometryCmd)
	geometryCmd.Flags().StringVar(&geometryFieldID, "field", "", "Field id whose geometry to export")
	geometryCmd.Flags().StringVar(&geometrySlicerID, "slicer", "", "Field id used as the row label")
	_ = geometryCmd.MarkFlagRequired("field")
	rootCmd.AddCommand(geometryCmd)
}

func runGeometry(cmd *cobra.Command, _ []string) error {
	collection, err := searchCollection(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	itemErrs, err := harvester.FetchContentFor(ctx, collection)
	if err != nil {
		return err
	}
	reportItemErrors("content", itemErrs)

	itemErrs, err = harvester.FetchPagesFor(ctx, collection)
	if err != nil {
		return err
	}
	reportItemErrors("pages", itemErrs)

	return printJSON(cmd, domain.NormalizeGeometry(collection, geometryFieldID, geometrySlicerID))
}

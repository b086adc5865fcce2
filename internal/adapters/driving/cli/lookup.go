package cli

import (
	"github.com/spf13/cobra"
)

var (
	lookupContent bool
	lookupPages   bool
)

var lookupCmd = &cobra.Command{
	Use:   "lookup [annotation-id...]",
	Short: "Fetch annotations by id",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runLookup,
}

func init() {
	lookupCmd.Flags().BoolVar(&lookupContent, "content", false, "Fetch each annotation's content tree")
	lookupCmd.Flags().BoolVar(&lookupPages, "pages", false, "Fetch each annotation's page dimensions")
	rootCmd.AddCommand(lookupCmd)
}

func runLookup(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	collection, err := harvester.LookupByIDs(ctx, args)
	if err != nil {
		return err
	}

	if lookupContent {
		itemErrs, err := harvester.FetchContentFor(ctx, collection)
		if err != nil {
			return err
		}
		reportItemErrors("content", itemErrs)
	}
	if lookupPages {
		itemErrs, err := harvester.FetchPagesFor(ctx, collection)
		if err != nil {
			return err
		}
		reportItemErrors("pages", itemErrs)
	}

	return printJSON(cmd, orderedAnnotations(collection))
}

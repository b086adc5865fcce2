package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/altum-labs/docharvest/internal/core/domain"
	"github.com/altum-labs/docharvest/internal/core/services"
	"github.com/altum-labs/docharvest/internal/logger"
)

var (
	harvestQuery     string
	harvestQueryFile string
	harvestAllPages  bool
	harvestPageMax   int
	harvestContent   bool
	harvestPages     bool
	harvestEmails    bool
)

var harvestCmd = &cobra.Command{
	Use:   "harvest",
	Short: "Search annotations and download their data",
	Long: `Runs a search query against the annotation API and prints the
matching annotations as JSON. Content trees, page geometry and
related emails are fetched on request.`,
	Args: cobra.NoArgs,
	RunE: runHarvest,
}

func init() {
	addSearchFlags(harvestCmd)
	harvestCmd.Flags().BoolVar(&harvestContent, "content", false, "Fetch each annotation's content tree")
	harvestCmd.Flags().BoolVar(&harvestPages, "pages", false, "Fetch each annotation's page dimensions")
	harvestCmd.Flags().BoolVar(&harvestEmails, "emails", false, "Fetch each annotation's related emails")
	rootCmd.AddCommand(harvestCmd)
}

// addSearchFlags registers the query and pagination flags shared by
// every command that starts from a search.
func addSearchFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&harvestQuery, "query", "q", "", "Search query as inline JSON")
	cmd.Flags().StringVarP(&harvestQueryFile, "query-file", "f", "", "Search query JSON file ('-' for stdin)")
	cmd.Flags().BoolVar(&harvestAllPages, "all-pages", false, "Follow pagination to the last page")
	cmd.Flags().IntVar(&harvestPageMax, "page-max", 0, "Maximum number of result pages to fetch (0 = no cap)")
}

// searchCollection runs the flag-described search and returns the
// resulting collection.
func searchCollection(cmd *cobra.Command) (domain.Collection, error) {
	query, err := readQuery()
	if err != nil {
		return nil, err
	}
	collection, err := harvester.Search(cmd.Context(), query, services.SearchOptions{
		AllPages: harvestAllPages,
		PageMax:  harvestPageMax,
	})
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}
	return collection, nil
}

func runHarvest(cmd *cobra.Command, _ []string) error {
	collection, err := searchCollection(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	if harvestContent {
		itemErrs, err := harvester.FetchContentFor(ctx, collection)
		if err != nil {
			return err
		}
		reportItemErrors("content", itemErrs)
	}
	if harvestPages {
		itemErrs, err := harvester.FetchPagesFor(ctx, collection)
		if err != nil {
			return err
		}
		reportItemErrors("pages", itemErrs)
	}
	if harvestEmails {
		itemErrs, err := harvester.FetchEmailsFor(ctx, collection)
		if err != nil {
			return err
		}
		reportItemErrors("emails", itemErrs)
	}

	return printJSON(cmd, orderedAnnotations(collection))
}

// readQuery resolves the search query from the inline flag, a file or
// stdin. No query at all means an unfiltered search.
func readQuery() (any, error) {
	var raw []byte
	switch {
	case harvestQuery != "" && harvestQueryFile != "":
		return nil, fmt.Errorf("%w: --query and --query-file are mutually exclusive", domain.ErrInvalidConfiguration)
	case harvestQuery != "":
		raw = []byte(harvestQuery)
	case harvestQueryFile == "-":
		var err error
		if raw, err = io.ReadAll(os.Stdin); err != nil {
			return nil, err
		}
	case harvestQueryFile != "":
		var err error
		if raw, err = os.ReadFile(harvestQueryFile); err != nil {
			return nil, err
		}
	default:
		return map[string]any{}, nil
	}

	var query any
	if err := json.Unmarshal(raw, &query); err != nil {
		return nil, fmt.Errorf("%w: parse query: %v", domain.ErrInvalidConfiguration, err)
	}
	return query, nil
}

// orderedAnnotations flattens a collection into a stable id-ordered
// slice for output.
func orderedAnnotations(collection domain.Collection) []*domain.Annotation {
	out := make([]*domain.Annotation, 0, len(collection))
	for _, id := range collection.SortedIDs() {
		out = append(out, collection[id])
	}
	return out
}

func reportItemErrors(stage string, itemErrs []services.ItemError) {
	for _, itemErr := range itemErrs {
		logger.Warn("%s: annotation %d: %v", stage, itemErr.ID, itemErr.Err)
	}
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

package cli

import (
	"github.com/spf13/cobra"

	"github.com/altum-labs/docharvest/internal/core/services"
)

var (
	queriesTemplateID  string
	queriesSchemaID    string
	queriesQueueLimits bool
)

var queriesCmd = &cobra.Command{
	Use:   "queries",
	Short: "Resolve dataset query templates for matching annotations",
	Long: `Searches for annotations, collects the hooks attached to their
queues and resolves every dataset query template of hooks built from
the given template, substituting field-value placeholders from each
annotation's content tree.`,
	Args: cobra.NoArgs,
	RunE: runQueries,
}

func init() {
	addSearchFlags(queriesCmd)
	queriesCmd.Flags().StringVar(&queriesTemplateID, "template-id", "", "Hook template id to match")
	queriesCmd.Flags().StringVar(&queriesSchemaID, "target-schema-id", "", "Schema field the dataset mappings must target")
	queriesCmd.Flags().BoolVar(&queriesQueueLimits, "check-queue-limits", false, "Honor configuration queue allow/deny lists")
	_ = queriesCmd.MarkFlagRequired("template-id")
	_ = queriesCmd.MarkFlagRequired("target-schema-id")
	rootCmd.AddCommand(queriesCmd)
}

func runQueries(cmd *cobra.Command, _ []string) error {
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

	hooks, itemErrs, err := harvester.FetchHooksFor(ctx, collection)
	if err != nil {
		return err
	}
	reportItemErrors("hooks", itemErrs)

	matches := services.MatchHooks(collection, hooks, queriesTemplateID)
	resolved, itemErrs := services.ResolveQueries(matches, services.ResolveOptions{
		TargetSchemaID:   queriesSchemaID,
		CheckQueueLimits: queriesQueueLimits,
	})
	reportItemErrors("resolve", itemErrs)

	return printJSON(cmd, resolved)
}

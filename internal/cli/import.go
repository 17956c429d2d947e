package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/orbitgraph/pkg/config"
	"github.com/matzehuels/orbitgraph/pkg/source/jsonfile"
	"github.com/matzehuels/orbitgraph/pkg/source/mongostore"
)

// importCommand creates the import command loading a JSON database into MongoDB.
func (c *CLI) importCommand() *cobra.Command {
	var (
		uri      string
		database string
	)

	cmd := &cobra.Command{
		Use:   "import <file.json>",
		Short: "Load a JSON database into MongoDB",
		Long: `Load a JSON database into MongoDB.

Creates the id and time indexes, then inserts every person and relationship.
Documents whose id already exists are skipped, so importing twice is safe.

The target defaults to source.mongo_uri and source.database from the config.`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeJSONFiles,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runImport(cmd.Context(), args[0], uri, database)
		},
	}

	cmd.Flags().StringVar(&uri, "uri", "", "MongoDB connection string")
	cmd.Flags().StringVar(&database, "database", "", "MongoDB database name")

	return cmd
}

func (c *CLI) runImport(ctx context.Context, input, uri, database string) error {
	cfg := c.settings().Source
	if uri == "" {
		uri = cfg.MongoURI
	}
	if database == "" {
		database = cfg.Database
	}
	if uri == "" {
		return fmt.Errorf("no MongoDB URI: pass --uri or set source.mongo_uri in %s", c.configFile())
	}
	if database == "" {
		database = config.Default().Source.Database
	}

	in, err := jsonfile.Open(input)
	if err != nil {
		return err
	}
	ents, err := in.ListEntities(ctx)
	if err != nil {
		return err
	}
	rels, err := in.AllRelationships(ctx)
	if err != nil {
		return err
	}

	prog := newProgress(c.Logger)
	store, err := mongostore.Connect(ctx, uri, database)
	if err != nil {
		return err
	}
	defer store.Close(context.Background())

	if err := store.EnsureIndexes(ctx); err != nil {
		return err
	}
	n, err := store.Import(ctx, ents, rels)
	if err != nil {
		return fmt.Errorf("import: %w", err)
	}
	prog.done("import complete")

	printSuccess("Imported %d document(s) into %s", n, database)
	if skipped := len(ents) + len(rels) - n; skipped > 0 {
		printDetail("%d already present", skipped)
	}
	return nil
}

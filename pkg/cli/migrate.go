package cli

import (
	"context"

	"github.com/m-mizutani/fireconf"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/revlens-lab/revlens/pkg/repository/firestore"
	"github.com/revlens-lab/revlens/pkg/utils/logging"
)

func cmdMigrate() *cli.Command {
	var projectID string
	var databaseID string
	var dryRun bool

	return &cli.Command{
		Name:    "migrate",
		Aliases: []string{"m"},
		Usage:   "Migrate Firestore indexes",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "firestore-project-id",
				Usage:       "Firestore Project ID (required)",
				Required:    true,
				Sources:     cli.EnvVars("REVLENS_FIRESTORE_PROJECT_ID"),
				Destination: &projectID,
			},
			&cli.StringFlag{
				Name:        "firestore-database-id",
				Usage:       "Firestore Database ID",
				Sources:     cli.EnvVars("REVLENS_FIRESTORE_DATABASE_ID"),
				Destination: &databaseID,
			},
			&cli.BoolFlag{
				Name:        "dry-run",
				Usage:       "Preview changes without applying",
				Destination: &dryRun,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := logging.Default()

			logger.Info("Migrate configuration",
				"projectID", projectID,
				"databaseID", databaseID,
				"dryRun", dryRun)

			indexConfig := getIndexConfig()

			client, err := fireconf.NewClient(ctx, projectID, databaseID)
			if err != nil {
				return goerr.Wrap(err, "failed to create fireconf client")
			}
			defer func() {
				if err := client.Close(); err != nil {
					logger.Error("failed to close fireconf client", "error", err.Error())
				}
			}()

			if dryRun {
				logger.Info("Dry run mode - previewing changes")
				plan, err := client.GetMigrationPlan(ctx, indexConfig)
				if err != nil {
					return goerr.Wrap(err, "failed to create migration plan")
				}

				if len(plan.Steps) == 0 {
					logger.Info("No changes required")
					return nil
				}

				for _, step := range plan.Steps {
					logger.Info("Migration step",
						"collection", step.Collection,
						"operation", step.Operation,
						"description", step.Description,
						"destructive", step.Destructive)
				}
			} else {
				logger.Info("Applying migrations")
				if err := client.Migrate(ctx, indexConfig); err != nil {
					return goerr.Wrap(err, "failed to apply migrations")
				}
				logger.Info("Migrations applied successfully")
			}

			return nil
		},
	}
}

// getIndexConfig returns the composite indexes required by the shard
// collection queries. Single-field lookups ride on the automatic indexes.
func getIndexConfig() *fireconf.Config {
	return &fireconf.Config{
		Collections: []fireconf.Collection{
			{
				Name: firestore.DefaultCollection,
				Indexes: []fireconf.Index{
					// Catalog GetByRiskID: shard_type ASC, risk_id ASC
					{
						Fields: []fireconf.IndexField{
							{Path: "shard_type", Order: fireconf.OrderAscending},
							{Path: "risk_id", Order: fireconf.OrderAscending},
						},
					},
					// Catalog ListVisible: shard_type ASC, catalog_type ASC, tenant_id ASC
					{
						Fields: []fireconf.IndexField{
							{Path: "shard_type", Order: fireconf.OrderAscending},
							{Path: "catalog_type", Order: fireconf.OrderAscending},
							{Path: "tenant_id", Order: fireconf.OrderAscending},
						},
					},
					// Catalog ListVisible: shard_type ASC, catalog_type ASC, industry_id ASC
					{
						Fields: []fireconf.IndexField{
							{Path: "shard_type", Order: fireconf.OrderAscending},
							{Path: "catalog_type", Order: fireconf.OrderAscending},
							{Path: "industry_id", Order: fireconf.OrderAscending},
						},
					},
					// Opportunity/quota/benchmark List: shard_type ASC, tenant_id ASC
					{
						Fields: []fireconf.IndexField{
							{Path: "shard_type", Order: fireconf.OrderAscending},
							{Path: "tenant_id", Order: fireconf.OrderAscending},
						},
					},
					// Opportunity List by owner: shard_type ASC, tenant_id ASC, owner_id ASC
					{
						Fields: []fireconf.IndexField{
							{Path: "shard_type", Order: fireconf.OrderAscending},
							{Path: "tenant_id", Order: fireconf.OrderAscending},
							{Path: "owner_id", Order: fireconf.OrderAscending},
						},
					},
					// Opportunity List by team: shard_type ASC, tenant_id ASC, team_id ASC
					{
						Fields: []fireconf.IndexField{
							{Path: "shard_type", Order: fireconf.OrderAscending},
							{Path: "tenant_id", Order: fireconf.OrderAscending},
							{Path: "team_id", Order: fireconf.OrderAscending},
						},
					},
					// Opportunity List by stage: shard_type ASC, tenant_id ASC, stage ASC
					{
						Fields: []fireconf.IndexField{
							{Path: "shard_type", Order: fireconf.OrderAscending},
							{Path: "tenant_id", Order: fireconf.OrderAscending},
							{Path: "stage", Order: fireconf.OrderAscending},
						},
					},
					// Quota ListChildren: shard_type ASC, parent_quota_id ASC
					{
						Fields: []fireconf.IndexField{
							{Path: "shard_type", Order: fireconf.OrderAscending},
							{Path: "parent_quota_id", Order: fireconf.OrderAscending},
						},
					},
					// Simulation ListByOpportunity: shard_type ASC, opportunity_id ASC, created_at DESC
					{
						Fields: []fireconf.IndexField{
							{Path: "shard_type", Order: fireconf.OrderAscending},
							{Path: "opportunity_id", Order: fireconf.OrderAscending},
							{Path: "created_at", Order: fireconf.OrderDescending},
						},
					},
					// Snapshot ListByOpportunity: shard_type ASC, opportunity_id ASC, snapshot_date DESC
					{
						Fields: []fireconf.IndexField{
							{Path: "shard_type", Order: fireconf.OrderAscending},
							{Path: "opportunity_id", Order: fireconf.OrderAscending},
							{Path: "snapshot_date", Order: fireconf.OrderDescending},
						},
					},
					// Snapshot ListOlderThan: shard_type ASC, opportunity_id ASC, snapshot_date ASC
					{
						Fields: []fireconf.IndexField{
							{Path: "shard_type", Order: fireconf.OrderAscending},
							{Path: "opportunity_id", Order: fireconf.OrderAscending},
							{Path: "snapshot_date", Order: fireconf.OrderAscending},
						},
					},
				},
			},
		},
	}
}

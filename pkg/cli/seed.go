package cli

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/revlens-lab/revlens/pkg/cli/config"
	"github.com/revlens-lab/revlens/pkg/domain/interfaces"
	"github.com/revlens-lab/revlens/pkg/domain/model"
	"github.com/revlens-lab/revlens/pkg/domain/types"
	"github.com/revlens-lab/revlens/pkg/utils/logging"
)

func cmdSeed() *cli.Command {
	var seedPath string
	var repoCfg config.Repository

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "seed-file",
			Usage:       "Path to the global risk catalog seed TOML file",
			Required:    true,
			Sources:     cli.EnvVars("REVLENS_SEED_FILE"),
			Destination: &seedPath,
		},
	}
	flags = append(flags, repoCfg.Flags()...)

	return &cli.Command{
		Name:  "seed",
		Usage: "Load the global risk catalog from a seed file",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			seed, err := config.LoadCatalogSeed(seedPath)
			if err != nil {
				return goerr.Wrap(err, "failed to load catalog seed")
			}

			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer func() {
				if err := repo.Close(); err != nil {
					logging.Default().Error("failed to close repository", "error", err.Error())
				}
			}()

			created, updated, err := applySeed(ctx, repo.Catalog(), seed.Entries())
			if err != nil {
				return err
			}

			logging.Default().Info("Catalog seed applied",
				"path", seedPath,
				"created", created,
				"updated", updated)
			return nil
		},
	}
}

// applySeed upserts global catalog entries. Existing entries keep their
// ponderation overrides; only the seed-owned fields are replaced.
func applySeed(ctx context.Context, catalog interfaces.CatalogRepository, entries []*model.RiskCatalogEntry) (int, int, error) {
	var created, updated int
	for _, entry := range entries {
		existing, err := findGlobalEntry(ctx, catalog, entry.RiskID)
		if err != nil {
			return created, updated, err
		}

		if existing == nil {
			if _, err := catalog.Create(ctx, entry); err != nil {
				return created, updated, goerr.Wrap(err, "failed to create catalog entry",
					goerr.V("riskID", entry.RiskID))
			}
			created++
			continue
		}

		existing.Name = entry.Name
		existing.Description = entry.Description
		existing.Category = entry.Category
		existing.DefaultPonderation = entry.DefaultPonderation
		existing.DetectionRule = entry.DetectionRule
		existing.IsActive = true
		if _, err := catalog.Update(ctx, existing); err != nil {
			return created, updated, goerr.Wrap(err, "failed to update catalog entry",
				goerr.V("riskID", entry.RiskID))
		}
		updated++
	}
	return created, updated, nil
}

func findGlobalEntry(ctx context.Context, catalog interfaces.CatalogRepository, riskID types.RiskID) (*model.RiskCatalogEntry, error) {
	entries, err := catalog.GetByRiskID(ctx, riskID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to look up catalog entry", goerr.V("riskID", riskID))
	}
	for _, e := range entries {
		if e.CatalogType == types.CatalogTypeGlobal {
			return e, nil
		}
	}
	return nil, nil
}

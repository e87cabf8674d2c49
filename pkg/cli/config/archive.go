package config

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/revlens-lab/revlens/pkg/service/archive"
	"github.com/revlens-lab/revlens/pkg/utils/logging"
)

// Archive holds CLI flags for the snapshot archive bucket
type Archive struct {
	bucket string
	prefix string
}

func (x *Archive) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "archive-bucket",
			Usage:       "Cloud Storage bucket for pruned snapshot archives",
			Category:    "Archive",
			Sources:     cli.EnvVars("REVLENS_ARCHIVE_BUCKET"),
			Destination: &x.bucket,
		},
		&cli.StringFlag{
			Name:        "archive-prefix",
			Usage:       "Object name prefix within the archive bucket",
			Category:    "Archive",
			Value:       "snapshots",
			Sources:     cli.EnvVars("REVLENS_ARCHIVE_PREFIX"),
			Destination: &x.prefix,
		},
	}
}

// IsConfigured checks if an archive bucket is set
func (x *Archive) IsConfigured() bool {
	return x.bucket != ""
}

// Configure builds the snapshot archiver. It returns nil without error
// when no bucket is configured; pruning then deletes without archival.
func (x *Archive) Configure(ctx context.Context) (*archive.Archiver, error) {
	if x.bucket == "" {
		return nil, nil
	}

	arc, err := archive.New(ctx, x.bucket, archive.WithPrefix(x.prefix))
	if err != nil {
		return nil, err
	}
	logging.Default().Info("Snapshot archival enabled", "bucket", x.bucket, "prefix", x.prefix)
	return arc, nil
}

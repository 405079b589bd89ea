package config

import (
	"context"

	"cloud.google.com/go/storage"

	"github.com/mmdatafocus/sitesync/utils"
)

// ConnectStorage returns nil when no report bucket is configured.
func ConnectStorage(ctx context.Context, s *Settings) (*storage.Client, error) {
	if s.BackfillReportBucket == "" {
		return nil, nil
	}
	return utils.NewGCSClient(ctx, s.GCSCredentialsJSON)
}

package backfill

import (
	"context"

	"cloud.google.com/go/storage"

	"github.com/mmdatafocus/sitesync/utils"
)

// Reporter publishes the summary of a finished run.
type Reporter interface {
	Report(ctx context.Context, res *Result) error
}

func ReportObjectName(runId string) string {
	return "backfill/" + runId + ".json"
}

type GCSReporter struct {
	client *storage.Client
	bucket string
}

func NewGCSReporter(client *storage.Client, bucket string) *GCSReporter {
	return &GCSReporter{client: client, bucket: bucket}
}

func (r *GCSReporter) Report(ctx context.Context, res *Result) error {
	data, err := utils.MarshalIndent(res)
	if err != nil {
		return err
	}
	return utils.UploadToGCS(ctx, r.client, r.bucket, ReportObjectName(res.RunId), "application/json", data)
}

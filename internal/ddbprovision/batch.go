package ddbprovision

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/basewarphq/bwconstructs/bwcr"
	"github.com/cenkalti/backoff/v4"
	"github.com/cockroachdb/errors"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

// maxBatchSize is the BatchWriteItem request limit.
const maxBatchSize = 25

var errUnprocessed = errors.New("unprocessed items remain")

// batchWrite writes reqs in batches, resubmitting unprocessed items until the
// backoff policy gives up.
func (h *Handler) batchWrite(ctx context.Context, table string, reqs []types.WriteRequest) error {
	for i, chunk := range lo.Chunk(reqs, maxBatchSize) {
		pending := map[string][]types.WriteRequest{table: chunk}

		op := func() error {
			out, err := h.api.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{RequestItems: pending})
			if err != nil {
				return backoff.Permanent(err)
			}
			if len(out.UnprocessedItems[table]) > 0 {
				pending = out.UnprocessedItems
				bwcr.Log(ctx).Debug("retrying unprocessed items",
					zap.Int("batch", i), zap.Int("count", len(pending[table])))
				return errUnprocessed
			}
			return nil
		}

		if err := backoff.Retry(op, backoff.WithContext(h.newBackOff(), ctx)); err != nil {
			return errors.Wrapf(err, "batch %d on table %s", i, table)
		}
	}
	return nil
}

// Package ddbprovision implements the custom resource that seeds a DynamoDB
// table with a fixed set of items and keeps it in sync with the template.
package ddbprovision

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/basewarphq/bwconstructs/bwcr"
	"github.com/cenkalti/backoff/v4"
	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
)

// API is the part of the DynamoDB client the handler uses.
type API interface {
	BatchWriteItem(
		ctx context.Context,
		params *dynamodb.BatchWriteItemInput,
		optFns ...func(*dynamodb.Options),
	) (*dynamodb.BatchWriteItemOutput, error)
}

// Properties of a Custom::DynamoDBProvisionTable resource.
type Properties struct {
	TableName        string `cfn:"TableName"`
	PartitionKeyName string `cfn:"PartitionKeyName"`
	SortKeyName      string `cfn:"SortKeyName"`
	// Items is a JSON array of item objects.
	Items string `cfn:"Items"`
}

// Handler handles the lifecycle events of the resource.
type Handler struct {
	api        API
	newBackOff func() backoff.BackOff
}

// New creates the handler.
func New(api API) *Handler {
	return NewWithBackOff(api, func() backoff.BackOff {
		return backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 8)
	})
}

// NewWithBackOff creates the handler with the policy for retrying
// unprocessed items.
func NewWithBackOff(api API, newBackOff func() backoff.BackOff) *Handler {
	return &Handler{api: api, newBackOff: newBackOff}
}

// PhysicalResourceID identifies the provisioned items of a table.
func PhysicalResourceID(tableName string) string {
	return tableName + "/provisioned"
}

// Handle writes the items on create, reconciles on update and removes them
// on delete.
func (h *Handler) Handle(ctx context.Context, ev bwcr.Event) (bwcr.Response, error) {
	curr, err := decodeSet(ev.ResourceProperties)
	if err != nil && ev.RequestType == bwcr.RequestDelete {
		// Nothing can have been written from properties that do not decode.
		bwcr.Log(ctx).Warn("skipping delete of undecodable properties",
			zap.String("physical_resource_id", ev.PhysicalResourceID), zap.Error(err))
		return bwcr.Response{PhysicalResourceID: ev.PhysicalResourceID}, nil
	}
	if err != nil {
		return bwcr.Response{}, err
	}

	switch ev.RequestType {
	case bwcr.RequestCreate:
		err = h.put(ctx, curr)
	case bwcr.RequestUpdate:
		var prev *itemSet
		if prev, err = decodeSet(ev.OldResourceProperties); err != nil {
			return bwcr.Response{}, errors.Wrap(err, "old properties")
		}
		err = h.update(ctx, prev, curr)
	case bwcr.RequestDelete:
		err = h.remove(ctx, curr.table, curr.keys())
		var notFound *types.ResourceNotFoundException
		if errors.As(err, &notFound) {
			bwcr.Log(ctx).Info("table is gone, nothing to delete", zap.String("table", curr.table))
			err = nil
		}
	default:
		return bwcr.Response{}, errors.Newf("unsupported request type %q", ev.RequestType)
	}
	if err != nil {
		return bwcr.Response{}, err
	}

	return bwcr.Response{
		PhysicalResourceID: PhysicalResourceID(curr.table),
		Data: map[string]any{
			"ItemCount": len(curr.items),
		},
	}, nil
}

func (h *Handler) update(ctx context.Context, prev, curr *itemSet) error {
	if !prev.sameTable(curr) {
		bwcr.Log(ctx).Info("table or key schema changed, removing previous items",
			zap.String("old_table", prev.table), zap.String("table", curr.table))
		if err := h.remove(ctx, prev.table, prev.keys()); err != nil {
			return err
		}
		return h.put(ctx, curr)
	}

	removed := prev.without(curr)
	if err := h.remove(ctx, prev.table, removed); err != nil {
		return err
	}
	return h.put(ctx, curr)
}

func (h *Handler) put(ctx context.Context, set *itemSet) error {
	reqs := make([]types.WriteRequest, 0, len(set.items))
	for _, it := range set.items {
		reqs = append(reqs, types.WriteRequest{PutRequest: &types.PutRequest{Item: it.attrs}})
	}
	bwcr.Log(ctx).Info("putting items", zap.String("table", set.table), zap.Int("count", len(reqs)))
	return h.batchWrite(ctx, set.table, reqs)
}

func (h *Handler) remove(ctx context.Context, table string, keys []map[string]types.AttributeValue) error {
	reqs := make([]types.WriteRequest, 0, len(keys))
	for _, key := range keys {
		reqs = append(reqs, types.WriteRequest{DeleteRequest: &types.DeleteRequest{Key: key}})
	}
	bwcr.Log(ctx).Info("deleting items", zap.String("table", table), zap.Int("count", len(reqs)))
	return h.batchWrite(ctx, table, reqs)
}

func decodeSet(raw map[string]any) (*itemSet, error) {
	var props Properties
	if err := bwcr.DecodeProperties(raw, &props); err != nil {
		return nil, err
	}
	if props.TableName == "" || props.PartitionKeyName == "" {
		return nil, errors.New("TableName and PartitionKeyName are required")
	}

	dec := json.NewDecoder(strings.NewReader(props.Items))
	dec.UseNumber()

	var items []map[string]any
	if err := dec.Decode(&items); err != nil {
		return nil, errors.Wrap(err, "Items must be a JSON array of objects")
	}
	return newItemSet(props, items)
}

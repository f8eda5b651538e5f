package ddbprovision_test

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/basewarphq/bwconstructs/bwcr"
	"github.com/basewarphq/bwconstructs/internal/ddbprovision"
	"github.com/cenkalti/backoff/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeDynamo records write requests per table. The first unprocessed calls
// return their whole request as unprocessed.
type fakeDynamo struct {
	calls       int
	unprocessed int
	puts        map[string][]map[string]types.AttributeValue
	deletes     map[string][]map[string]types.AttributeValue
	err         error
}

func newFakeDynamo() *fakeDynamo {
	return &fakeDynamo{
		puts:    map[string][]map[string]types.AttributeValue{},
		deletes: map[string][]map[string]types.AttributeValue{},
	}
}

func (f *fakeDynamo) BatchWriteItem(
	_ context.Context,
	in *dynamodb.BatchWriteItemInput,
	_ ...func(*dynamodb.Options),
) (*dynamodb.BatchWriteItemOutput, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if f.unprocessed > 0 {
		f.unprocessed--
		return &dynamodb.BatchWriteItemOutput{UnprocessedItems: in.RequestItems}, nil
	}
	for table, reqs := range in.RequestItems {
		if len(reqs) > 25 {
			panic("batch exceeds 25 requests")
		}
		for _, r := range reqs {
			if r.PutRequest != nil {
				f.puts[table] = append(f.puts[table], r.PutRequest.Item)
			}
			if r.DeleteRequest != nil {
				f.deletes[table] = append(f.deletes[table], r.DeleteRequest.Key)
			}
		}
	}
	return &dynamodb.BatchWriteItemOutput{}, nil
}

func newHandler(api ddbprovision.API) *ddbprovision.Handler {
	return ddbprovision.NewWithBackOff(api, func() backoff.BackOff {
		return backoff.WithMaxRetries(&backoff.ZeroBackOff{}, 3)
	})
}

func props(table, items string) map[string]any {
	return map[string]any{
		"ServiceToken":     "token",
		"TableName":        table,
		"PartitionKeyName": "pk",
		"SortKeyName":      "sk",
		"Items":            items,
	}
}

func str(av types.AttributeValue) string {
	return av.(*types.AttributeValueMemberS).Value
}

const twoItems = `[
	{"pk": "USER#1", "sk": "PROFILE", "name": "Ada", "age": 36},
	{"pk": "USER#2", "sk": "PROFILE", "name": "Grace"}
]`

func TestHandle_CreatePutsItems(t *testing.T) {
	api := newFakeDynamo()

	resp, err := newHandler(api).Handle(context.Background(), bwcr.Event{
		RequestType:        bwcr.RequestCreate,
		ResourceProperties: props("main-table", twoItems),
	})
	require.NoError(t, err)

	assert.Equal(t, "main-table/provisioned", resp.PhysicalResourceID)
	assert.Equal(t, 2, resp.Data["ItemCount"])

	puts := api.puts["main-table"]
	require.Len(t, puts, 2)
	assert.Equal(t, "USER#1", str(puts[0]["pk"]))
	assert.Equal(t, &types.AttributeValueMemberN{Value: "36"}, puts[0]["age"])
}

func TestHandle_CreateChunksLargeSets(t *testing.T) {
	api := newFakeDynamo()

	items := "["
	for i := range 60 {
		if i > 0 {
			items += ","
		}
		items += `{"pk": "ITEM", "sk": "` + string(rune('A'+i%26)) + string(rune('a'+i/26)) + `"}`
	}
	items += "]"

	_, err := newHandler(api).Handle(context.Background(), bwcr.Event{
		RequestType:        bwcr.RequestCreate,
		ResourceProperties: props("main-table", items),
	})
	require.NoError(t, err)

	assert.Equal(t, 3, api.calls)
	assert.Len(t, api.puts["main-table"], 60)
}

func TestHandle_RetriesUnprocessedItems(t *testing.T) {
	api := newFakeDynamo()
	api.unprocessed = 2

	_, err := newHandler(api).Handle(context.Background(), bwcr.Event{
		RequestType:        bwcr.RequestCreate,
		ResourceProperties: props("main-table", twoItems),
	})
	require.NoError(t, err)

	assert.Equal(t, 3, api.calls)
	assert.Len(t, api.puts["main-table"], 2)
}

func TestHandle_GivesUpOnPersistentUnprocessedItems(t *testing.T) {
	api := newFakeDynamo()
	api.unprocessed = 100

	_, err := newHandler(api).Handle(context.Background(), bwcr.Event{
		RequestType:        bwcr.RequestCreate,
		ResourceProperties: props("main-table", twoItems),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unprocessed items remain")
}

func TestHandle_UpdateDeletesRemovedItems(t *testing.T) {
	api := newFakeDynamo()

	resp, err := newHandler(api).Handle(context.Background(), bwcr.Event{
		RequestType:        bwcr.RequestUpdate,
		PhysicalResourceID: "main-table/provisioned",
		ResourceProperties: props("main-table", `[
			{"pk": "USER#1", "sk": "PROFILE", "name": "Ada Lovelace"},
			{"pk": "USER#3", "sk": "PROFILE"}
		]`),
		OldResourceProperties: props("main-table", twoItems),
	})
	require.NoError(t, err)

	assert.Equal(t, "main-table/provisioned", resp.PhysicalResourceID)

	deletes := api.deletes["main-table"]
	require.Len(t, deletes, 1)
	assert.Equal(t, "USER#2", str(deletes[0]["pk"]))
	assert.Len(t, deletes[0], 2)

	assert.Len(t, api.puts["main-table"], 2)
}

func TestHandle_UpdateMovesToNewTable(t *testing.T) {
	api := newFakeDynamo()

	resp, err := newHandler(api).Handle(context.Background(), bwcr.Event{
		RequestType:           bwcr.RequestUpdate,
		ResourceProperties:    props("new-table", twoItems),
		OldResourceProperties: props("old-table", twoItems),
	})
	require.NoError(t, err)

	assert.Equal(t, "new-table/provisioned", resp.PhysicalResourceID)
	assert.Len(t, api.deletes["old-table"], 2)
	assert.Len(t, api.puts["new-table"], 2)
	assert.Empty(t, api.puts["old-table"])
}

func TestHandle_DeleteRemovesItems(t *testing.T) {
	api := newFakeDynamo()

	_, err := newHandler(api).Handle(context.Background(), bwcr.Event{
		RequestType:        bwcr.RequestDelete,
		PhysicalResourceID: "main-table/provisioned",
		ResourceProperties: props("main-table", twoItems),
	})
	require.NoError(t, err)

	assert.Len(t, api.deletes["main-table"], 2)
	assert.Empty(t, api.puts)
}

func TestHandle_DeleteOnMissingTable(t *testing.T) {
	api := newFakeDynamo()
	api.err = &types.ResourceNotFoundException{Message: aws.String("Requested resource not found")}

	_, err := newHandler(api).Handle(context.Background(), bwcr.Event{
		RequestType:        bwcr.RequestDelete,
		ResourceProperties: props("main-table", twoItems),
	})
	require.NoError(t, err)
}

func TestHandle_InvalidItems(t *testing.T) {
	tests := []struct {
		name  string
		items string
	}{
		{name: "not json", items: "{"},
		{name: "missing sort key", items: `[{"pk": "USER#1"}]`},
		{name: "duplicate key", items: `[{"pk": "A", "sk": "1"}, {"pk": "A", "sk": "1", "x": 1}]`},
		{name: "unsupported key type", items: `[{"pk": true, "sk": "1"}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newFakeDynamo()
			_, err := newHandler(api).Handle(context.Background(), bwcr.Event{
				RequestType:        bwcr.RequestCreate,
				ResourceProperties: props("main-table", tt.items),
			})
			require.Error(t, err)
			assert.Zero(t, api.calls)
		})
	}
}

func TestHandle_PartitionKeyOnly(t *testing.T) {
	api := newFakeDynamo()

	_, err := newHandler(api).Handle(context.Background(), bwcr.Event{
		RequestType: bwcr.RequestCreate,
		ResourceProperties: map[string]any{
			"TableName":        "simple",
			"PartitionKeyName": "id",
			"Items":            `[{"id": 1}, {"id": 2}]`,
		},
	})
	require.NoError(t, err)
	assert.Len(t, api.puts["simple"], 2)
}

func TestHandle_KeepsLargeIntegersExact(t *testing.T) {
	api := newFakeDynamo()

	_, err := newHandler(api).Handle(context.Background(), bwcr.Event{
		RequestType: bwcr.RequestCreate,
		ResourceProperties: props("main-table", `[
			{"pk": "COUNTER", "sk": "1", "n": 9007199254740993, "nested": {"ratio": 0.25, "ids": [12345678901234567890]}}
		]`),
	})
	require.NoError(t, err)

	puts := api.puts["main-table"]
	require.Len(t, puts, 1)
	assert.Equal(t, &types.AttributeValueMemberN{Value: "9007199254740993"}, puts[0]["n"])

	nested := puts[0]["nested"].(*types.AttributeValueMemberM).Value
	assert.Equal(t, &types.AttributeValueMemberN{Value: "0.25"}, nested["ratio"])
	ids := nested["ids"].(*types.AttributeValueMemberL).Value
	assert.Equal(t, &types.AttributeValueMemberN{Value: "12345678901234567890"}, ids[0])
}

func TestHandle_DeleteSkipsUndecodableItems(t *testing.T) {
	api := newFakeDynamo()

	resp, err := newHandler(api).Handle(context.Background(), bwcr.Event{
		RequestType:        bwcr.RequestDelete,
		PhysicalResourceID: "main-table/provisioned",
		ResourceProperties: props("main-table", `[{"pk": true, "sk": "b"}]`),
	})
	require.NoError(t, err)

	assert.Equal(t, "main-table/provisioned", resp.PhysicalResourceID)
	assert.Zero(t, api.calls)
}

// Package bwcdkddbprovision seeds a DynamoDB table with items declared in
// the CDK app.
//
// The items are written by a custom resource when the stack is created,
// reconciled when they change and removed again when the resource is deleted.
// Items that disappear from the declaration are deleted from the table.
package bwcdkddbprovision

import (
	"fmt"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsdynamodb"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"
	"github.com/basewarphq/bwconstructs/bwcdk/bwcdkprovider"
	"github.com/basewarphq/bwconstructs/bwcdk/bwcdkutil"
	"github.com/cockroachdb/errors"
)

const (
	// ResourceType is the CloudFormation type of the provisioning resource.
	ResourceType = "Custom::DynamoDBProvisionTable"
	// HandlerEntry is the Go command implementing the resource.
	HandlerEntry = "handlers/cmd/ddbprovision"

	providerID = "DynamoDBProvisionProvider"
)

// ProvisionTable provides access to the provisioning custom resource.
type ProvisionTable interface {
	// Resource returns the underlying custom resource.
	Resource() awscdk.CustomResource
}

// TableKeySchema names the key attributes of the table.
type TableKeySchema struct {
	// PartitionKeyName is the name of the partition key attribute.
	// Required.
	PartitionKeyName *string `validate:"required"`
	// SortKeyName is the name of the sort key attribute, when the table has one.
	SortKeyName *string
}

// Props configures the ProvisionTable construct.
type Props struct {
	// Table receives the items.
	// Required.
	Table awsdynamodb.ITableV2 `validate:"-"`
	// TableKeySchema describes the key of Table.
	// Required.
	TableKeySchema *TableKeySchema `validate:"required"`
	// Items to write. Every item carries the key attributes, which must be
	// strings or numbers. Values may contain tokens; they are resolved and
	// quoted at deploy time. Items are encoded with sorted keys so the template
	// is stable across synths.
	// Required, at least one.
	Items []map[string]any `validate:"min=1"`
	// ModuleDir is the directory containing the go.mod of the handler.
	ModuleDir *string `validate:"-"`
}

type provisionTable struct {
	resource awscdk.CustomResource
}

// New creates the provisioning resource. It panics on invalid props.
func New(scope constructs.Construct, id string, props Props) ProvisionTable {
	if props.Table == nil {
		panic("bwcdkddbprovision: invalid props:\n  - Table is required")
	}
	bwcdkutil.MustValidateProps("bwcdkddbprovision", props)
	if err := validateItems(props.TableKeySchema, props.Items); err != nil {
		panic(errors.Wrap(err, "bwcdkddbprovision"))
	}

	scope = constructs.NewConstruct(scope, jsii.String(id))

	provider := bwcdkprovider.Singleton(scope, providerID, bwcdkprovider.Props{
		Entry:     jsii.String(HandlerEntry),
		ModuleDir: props.ModuleDir,
	})

	properties := map[string]any{
		"TableName":        props.Table.TableName(),
		"PartitionKeyName": props.TableKeySchema.PartitionKeyName,
		"Items":            awscdk.Stack_Of(scope).ToJsonString(props.Items, nil),
	}
	if props.TableKeySchema.SortKeyName != nil {
		properties["SortKeyName"] = props.TableKeySchema.SortKeyName
	}

	resource := awscdk.NewCustomResource(scope, jsii.String("Resource"), &awscdk.CustomResourceProps{
		ServiceToken: provider.ServiceToken(),
		ResourceType: jsii.String(ResourceType),
		Properties:   &properties,
	})

	grant := props.Table.GrantWriteData(provider.Function())
	grant.ApplyBefore(resource)

	return &provisionTable{resource: resource}
}

func (p *provisionTable) Resource() awscdk.CustomResource {
	return p.resource
}

// validateItems checks the key attributes of items whose keys are known at
// synth time.
func validateItems(schema *TableKeySchema, items []map[string]any) error {
	names := []string{*schema.PartitionKeyName}
	if schema.SortKeyName != nil {
		names = append(names, *schema.SortKeyName)
	}

	seen := make(map[string]int, len(items))
	for i, item := range items {
		key := ""
		resolved := true
		for _, name := range names {
			val, ok := keyValue(item[name])
			if !ok {
				return errors.Newf("item %d is missing key attribute %q", i, name)
			}
			switch v := val.(type) {
			case string:
				if bwcdkutil.IsToken(v) {
					resolved = false
				}
			case float64, float32, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
			default:
				return errors.Newf("item %d key attribute %q must be a string or number, got %T", i, name, val)
			}
			key += fmt.Sprintf("/%v", val)
		}
		if !resolved {
			continue
		}
		if prev, dup := seen[key]; dup {
			return errors.Newf("items %d and %d have the same key %s", prev, i, key)
		}
		seen[key] = i
	}
	return nil
}

func keyValue(v any) (any, bool) {
	switch val := v.(type) {
	case nil:
		return nil, false
	case *string:
		if val == nil {
			return nil, false
		}
		return *val, true
	case *float64:
		if val == nil {
			return nil, false
		}
		return *val, true
	default:
		return val, true
	}
}

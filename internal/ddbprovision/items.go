package ddbprovision

import (
	"encoding/json"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/cockroachdb/errors"
)

type item struct {
	id    string
	attrs map[string]types.AttributeValue
	key   map[string]types.AttributeValue
}

// itemSet is the desired content of a table, in template order.
type itemSet struct {
	table   string
	pkName  string
	skName  string
	items   []item
	byKeyID map[string]struct{}
}

func newItemSet(props Properties, raw []map[string]any) (*itemSet, error) {
	set := &itemSet{
		table:   props.TableName,
		pkName:  props.PartitionKeyName,
		skName:  props.SortKeyName,
		byKeyID: make(map[string]struct{}, len(raw)),
	}

	for i, r := range raw {
		attrs, err := attributevalue.MarshalMap(exactNumbers(r))
		if err != nil {
			return nil, errors.Wrapf(err, "item %d", i)
		}

		key, id, err := set.keyOf(attrs)
		if err != nil {
			return nil, errors.Wrapf(err, "item %d", i)
		}
		if _, dup := set.byKeyID[id]; dup {
			return nil, errors.Newf("item %d: duplicate key %s", i, id)
		}

		set.byKeyID[id] = struct{}{}
		set.items = append(set.items, item{id: id, attrs: attrs, key: key})
	}
	return set, nil
}

// number keeps the decimal text of a JSON number. Decoding into float64 would
// round integers beyond 2^53.
type number json.Number

func (n number) MarshalDynamoDBAttributeValue() (types.AttributeValue, error) {
	return &types.AttributeValueMemberN{Value: string(n)}, nil
}

func exactNumbers(v any) any {
	switch val := v.(type) {
	case json.Number:
		return number(val)
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, e := range val {
			out[k] = exactNumbers(e)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, e := range val {
			out[i] = exactNumbers(e)
		}
		return out
	default:
		return val
	}
}

func (s *itemSet) keyOf(attrs map[string]types.AttributeValue) (map[string]types.AttributeValue, string, error) {
	key := map[string]types.AttributeValue{}
	names := []string{s.pkName}
	if s.skName != "" {
		names = append(names, s.skName)
	}

	id := ""
	for _, name := range names {
		av, ok := attrs[name]
		if !ok {
			return nil, "", errors.Newf("missing key attribute %q", name)
		}
		part, err := keyPart(av)
		if err != nil {
			return nil, "", errors.Wrapf(err, "key attribute %q", name)
		}
		key[name] = av
		id += "/" + part
	}
	return key, id, nil
}

// keyPart renders a key attribute; keys can only be strings, numbers or binary.
func keyPart(av types.AttributeValue) (string, error) {
	switch v := av.(type) {
	case *types.AttributeValueMemberS:
		return "S:" + v.Value, nil
	case *types.AttributeValueMemberN:
		return "N:" + v.Value, nil
	case *types.AttributeValueMemberB:
		return "B:" + string(v.Value), nil
	default:
		return "", errors.Newf("unsupported key type %T", av)
	}
}

func (s *itemSet) keys() []map[string]types.AttributeValue {
	keys := make([]map[string]types.AttributeValue, 0, len(s.items))
	for _, it := range s.items {
		keys = append(keys, it.key)
	}
	return keys
}

// without returns the keys of s that other does not contain.
func (s *itemSet) without(other *itemSet) []map[string]types.AttributeValue {
	var keys []map[string]types.AttributeValue
	for _, it := range s.items {
		if _, ok := other.byKeyID[it.id]; !ok {
			keys = append(keys, it.key)
		}
	}
	return keys
}

func (s *itemSet) sameTable(other *itemSet) bool {
	return s.table == other.table && s.pkName == other.pkName && s.skName == other.skName
}

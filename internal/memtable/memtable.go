// Package memtable is an in-memory stand-in for a single DynamoDB table with
// one global secondary index. It understands the expressions the store
// builds: equality and begins_with key conditions, SET updates, and
// attribute_exists / attribute_not_exists conditions. It is meant for tests.
package memtable

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// Item is a stored DynamoDB item.
type Item = map[string]types.AttributeValue

// Table is an in-memory table keyed by PK/SK with a GSI1PK/GSI1SK index.
type Table struct {
	// PageSize caps the items returned per Query or Scan page (0 = unlimited).
	PageSize int

	// Err, when set, returns an error for the named operation
	// ("PutItem", "GetItem", "Query", "Scan", "UpdateItem", "DescribeTable").
	Err func(op string) error

	mu        sync.Mutex
	name      string
	indexName string
	items     map[string]Item
	calls     map[string]int
}

// New creates an empty table.
func New(tableName, indexName string) *Table {
	return &Table{
		name:      tableName,
		indexName: indexName,
		items:     make(map[string]Item),
		calls:     make(map[string]int),
	}
}

// Calls returns how many times op was invoked.
func (t *Table) Calls(op string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.calls[op]
}

// Len returns the number of stored items.
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.items)
}

// Item returns a copy of the item stored under pk/sk.
func (t *Table) Item(pk, sk string) (Item, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	item, ok := t.items[storageKey(pk, sk)]
	if !ok {
		return nil, false
	}
	return clone(item), true
}

// Delete removes the item stored under pk/sk.
func (t *Table) Delete(pk, sk string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.items, storageKey(pk, sk))
}

// Seed stores items directly, bypassing conditions.
func (t *Table) Seed(items ...Item) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, item := range items {
		t.items[storageKey(str(item, "PK"), str(item, "SK"))] = clone(item)
	}
}

func (t *Table) begin(op string, table *string) error {
	t.mu.Lock()
	t.calls[op]++
	t.mu.Unlock()

	if t.Err != nil {
		if err := t.Err(op); err != nil {
			return err
		}
	}
	if aws.ToString(table) != t.name {
		return &types.ResourceNotFoundException{Message: aws.String("Requested resource not found: " + aws.ToString(table))}
	}
	return nil
}

// PutItem stores an item, honoring attribute_exists / attribute_not_exists conditions.
func (t *Table) PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	if err := t.begin("PutItem", params.TableName); err != nil {
		return nil, err
	}
	pk, sk := str(params.Item, "PK"), str(params.Item, "SK")
	if pk == "" || sk == "" {
		return nil, fmt.Errorf("memtable: item is missing its key")
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	_, exists := t.items[storageKey(pk, sk)]
	if err := checkCondition(aws.ToString(params.ConditionExpression), exists); err != nil {
		return nil, err
	}
	t.items[storageKey(pk, sk)] = clone(params.Item)
	return &dynamodb.PutItemOutput{}, nil
}

// GetItem reads one item by primary key.
func (t *Table) GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	if err := t.begin("GetItem", params.TableName); err != nil {
		return nil, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	item, ok := t.items[storageKey(str(params.Key, "PK"), str(params.Key, "SK"))]
	if !ok {
		return &dynamodb.GetItemOutput{}, nil
	}
	return &dynamodb.GetItemOutput{Item: clone(item)}, nil
}

var (
	eqPattern         = regexp.MustCompile(`(#?\w+)\s*=\s*(:\w+)`)
	beginsWithPattern = regexp.MustCompile(`begins_with\s*\(\s*(#?\w+)\s*,\s*(:\w+)\s*\)`)
)

// Query evaluates a key condition against the table or its index.
func (t *Table) Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	if err := t.begin("Query", params.TableName); err != nil {
		return nil, err
	}

	hashAttr, rangeAttr := "PK", "SK"
	if params.IndexName != nil {
		if aws.ToString(params.IndexName) != t.indexName {
			return nil, fmt.Errorf("memtable: unknown index %q", aws.ToString(params.IndexName))
		}
		hashAttr, rangeAttr = "GSI1PK", "GSI1SK"
	}

	expr := aws.ToString(params.KeyConditionExpression)
	names := params.ExpressionAttributeNames
	values := params.ExpressionAttributeValues

	equals := map[string]string{}
	prefixes := map[string]string{}
	for _, m := range beginsWithPattern.FindAllStringSubmatch(expr, -1) {
		prefixes[resolveName(m[1], names)] = resolveString(m[2], values)
	}
	for _, m := range eqPattern.FindAllStringSubmatch(beginsWithPattern.ReplaceAllString(expr, ""), -1) {
		equals[resolveName(m[1], names)] = resolveString(m[2], values)
	}
	if _, ok := equals[hashAttr]; !ok {
		return nil, fmt.Errorf("memtable: key condition %q has no equality on %s", expr, hashAttr)
	}

	t.mu.Lock()
	var matched []Item
	for _, item := range t.items {
		if matches(item, hashAttr, rangeAttr, equals, prefixes) {
			matched = append(matched, clone(item))
		}
	}
	t.mu.Unlock()

	sortItems(matched, hashAttr, rangeAttr)
	page, last := t.page(matched, params.ExclusiveStartKey, aws.ToInt32(params.Limit))
	return &dynamodb.QueryOutput{
		Items:            page,
		Count:            int32(len(page)),
		LastEvaluatedKey: last,
	}, nil
}

// Scan returns every item in primary key order.
func (t *Table) Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	if err := t.begin("Scan", params.TableName); err != nil {
		return nil, err
	}

	t.mu.Lock()
	all := make([]Item, 0, len(t.items))
	for _, item := range t.items {
		all = append(all, clone(item))
	}
	t.mu.Unlock()

	sortItems(all, "PK", "SK")
	page, last := t.page(all, params.ExclusiveStartKey, aws.ToInt32(params.Limit))
	return &dynamodb.ScanOutput{
		Items:            page,
		Count:            int32(len(page)),
		LastEvaluatedKey: last,
	}, nil
}

// UpdateItem applies a SET update expression to one item.
func (t *Table) UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	if err := t.begin("UpdateItem", params.TableName); err != nil {
		return nil, err
	}

	pk, sk := str(params.Key, "PK"), str(params.Key, "SK")
	assignments, err := parseSet(aws.ToString(params.UpdateExpression), params.ExpressionAttributeNames, params.ExpressionAttributeValues)
	if err != nil {
		return nil, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	current, exists := t.items[storageKey(pk, sk)]
	if err := checkCondition(aws.ToString(params.ConditionExpression), exists); err != nil {
		return nil, err
	}

	next := clone(current)
	if next == nil {
		next = Item{}
		for k, v := range params.Key {
			next[k] = v
		}
	}
	for name, v := range assignments {
		if name == "PK" || name == "SK" {
			return nil, fmt.Errorf("memtable: cannot update key attribute %s", name)
		}
		next[name] = v
	}
	t.items[storageKey(pk, sk)] = next

	out := &dynamodb.UpdateItemOutput{}
	if params.ReturnValues == types.ReturnValueAllNew {
		out.Attributes = clone(next)
	}
	return out, nil
}

// DescribeTable reports the table when the name matches.
func (t *Table) DescribeTable(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error) {
	if err := t.begin("DescribeTable", params.TableName); err != nil {
		return nil, err
	}
	return &dynamodb.DescribeTableOutput{
		Table: &types.TableDescription{
			TableName:   aws.String(t.name),
			TableStatus: types.TableStatusActive,
		},
	}, nil
}

// page slices items after startKey, up to the smaller of limit and PageSize.
func (t *Table) page(items []Item, startKey Item, limit int32) ([]Item, Item) {
	start := 0
	if startKey != nil {
		pk, sk := str(startKey, "PK"), str(startKey, "SK")
		for i, item := range items {
			if str(item, "PK") == pk && str(item, "SK") == sk {
				start = i + 1
				break
			}
		}
	}
	items = items[start:]

	size := t.PageSize
	if limit > 0 && (size == 0 || int(limit) < size) {
		size = int(limit)
	}
	if size == 0 || len(items) <= size {
		return items, nil
	}

	page := items[:size]
	lastItem := page[len(page)-1]
	last := Item{}
	for _, attr := range []string{"PK", "SK", "GSI1PK", "GSI1SK"} {
		if v, ok := lastItem[attr]; ok {
			last[attr] = v
		}
	}
	return page, last
}

func checkCondition(expr string, exists bool) error {
	switch {
	case expr == "":
		return nil
	case strings.Contains(expr, "attribute_not_exists"):
		if exists {
			return conditionFailed()
		}
	case strings.Contains(expr, "attribute_exists"):
		if !exists {
			return conditionFailed()
		}
	}
	return nil
}

func conditionFailed() error {
	return &types.ConditionalCheckFailedException{Message: aws.String("The conditional request failed")}
}

func parseSet(expr string, names map[string]string, values map[string]types.AttributeValue) (map[string]types.AttributeValue, error) {
	expr = strings.TrimSpace(expr)
	if !strings.HasPrefix(expr, "SET ") {
		return nil, fmt.Errorf("memtable: unsupported update expression %q", expr)
	}
	out := map[string]types.AttributeValue{}
	for _, clause := range strings.Split(strings.TrimPrefix(expr, "SET "), ",") {
		parts := strings.SplitN(clause, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("memtable: malformed clause %q", clause)
		}
		name := resolveName(strings.TrimSpace(parts[0]), names)
		placeholder := strings.TrimSpace(parts[1])
		v, ok := values[placeholder]
		if !ok {
			return nil, fmt.Errorf("memtable: missing value %s", placeholder)
		}
		out[name] = v
	}
	return out, nil
}

func matches(item Item, hashAttr, rangeAttr string, equals, prefixes map[string]string) bool {
	if _, ok := item[hashAttr]; !ok {
		return false
	}
	if _, ok := item[rangeAttr]; !ok {
		return false
	}
	for attr, want := range equals {
		if str(item, attr) != want {
			return false
		}
	}
	for attr, prefix := range prefixes {
		if !strings.HasPrefix(str(item, attr), prefix) {
			return false
		}
	}
	return true
}

func sortItems(items []Item, hashAttr, rangeAttr string) {
	sort.Slice(items, func(i, j int) bool {
		hi, hj := str(items[i], hashAttr), str(items[j], hashAttr)
		if hi != hj {
			return hi < hj
		}
		return str(items[i], rangeAttr) < str(items[j], rangeAttr)
	})
}

func resolveName(token string, names map[string]string) string {
	if strings.HasPrefix(token, "#") {
		return names[token]
	}
	return token
}

func resolveString(placeholder string, values map[string]types.AttributeValue) string {
	if v, ok := values[placeholder].(*types.AttributeValueMemberS); ok {
		return v.Value
	}
	return ""
}

func str(item Item, attr string) string {
	if v, ok := item[attr].(*types.AttributeValueMemberS); ok {
		return v.Value
	}
	return ""
}

func storageKey(pk, sk string) string {
	return pk + "\x00" + sk
}

func clone(item Item) Item {
	if item == nil {
		return nil
	}
	out := make(Item, len(item))
	for k, v := range item {
		out[k] = v
	}
	return out
}

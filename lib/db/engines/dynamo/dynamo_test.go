package dynamo

import (
	"context"
	"errors"
	"slices"
	"sync"
	"testing"

	"github.com/ValentinKolb/moniker/lib/db"
	dbtesting "github.com/ValentinKolb/moniker/lib/db/testing"
	sdk "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --------------------------------------------------------------------------
// In-memory table
// --------------------------------------------------------------------------

// memTable is an in-memory stand-in for a DynamoDB table with a PK/SK key schema
type memTable struct {
	mu    sync.Mutex
	items map[string]map[string]map[string]types.AttributeValue
	fail  error
}

func newMemTable() *memTable {
	return &memTable{items: map[string]map[string]map[string]types.AttributeValue{}}
}

func attrS(av map[string]types.AttributeValue, name string) string {
	if s, ok := av[name].(*types.AttributeValueMemberS); ok {
		return s.Value
	}
	return ""
}

// clone deep copies binary values, the real client never shares memory with the caller
func clone(av map[string]types.AttributeValue) map[string]types.AttributeValue {
	out := make(map[string]types.AttributeValue, len(av))
	for k, v := range av {
		if b, ok := v.(*types.AttributeValueMemberB); ok {
			out[k] = &types.AttributeValueMemberB{Value: slices.Clone(b.Value)}
			continue
		}
		out[k] = v
	}
	return out
}

func (m *memTable) GetItem(_ context.Context, in *sdk.GetItemInput, _ ...func(*sdk.Options)) (*sdk.GetItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return nil, m.fail
	}
	it, ok := m.items[attrS(in.Key, "PK")][attrS(in.Key, "SK")]
	if !ok {
		return &sdk.GetItemOutput{}, nil
	}
	return &sdk.GetItemOutput{Item: clone(it)}, nil
}

func (m *memTable) PutItem(_ context.Context, in *sdk.PutItemInput, _ ...func(*sdk.Options)) (*sdk.PutItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return nil, m.fail
	}
	pk, sk := attrS(in.Item, "PK"), attrS(in.Item, "SK")
	if m.items[pk] == nil {
		m.items[pk] = map[string]map[string]types.AttributeValue{}
	}
	m.items[pk][sk] = clone(in.Item)
	return &sdk.PutItemOutput{}, nil
}

func (m *memTable) DeleteItem(_ context.Context, in *sdk.DeleteItemInput, _ ...func(*sdk.Options)) (*sdk.DeleteItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return nil, m.fail
	}
	delete(m.items[attrS(in.Key, "PK")], attrS(in.Key, "SK"))
	return &sdk.DeleteItemOutput{}, nil
}

// Query supports only "PK = :pk" and returns the sort keys in ascending order
func (m *memTable) Query(_ context.Context, in *sdk.QueryInput, _ ...func(*sdk.Options)) (*sdk.QueryOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return nil, m.fail
	}
	partition := m.items[attrS(in.ExpressionAttributeValues, ":pk")]

	sks := make([]string, 0, len(partition))
	for sk := range partition {
		sks = append(sks, sk)
	}
	slices.Sort(sks)

	out := &sdk.QueryOutput{}
	for _, sk := range sks {
		out.Items = append(out.Items, map[string]types.AttributeValue{
			"SK": &types.AttributeValueMemberS{Value: sk},
		})
	}
	return out, nil
}

// --------------------------------------------------------------------------
// Tests
// --------------------------------------------------------------------------

func testFactory() db.KVDB {
	return NewDynamoDBWithClient(newMemTable(), "test", "local")
}

func Test(t *testing.T) {
	dbtesting.RunKVDBTests(t, "DynamoDB", testFactory)
}

func Benchmark(b *testing.B) {
	dbtesting.RunKVDBBenchmarks(b, "DynamoDB", testFactory)
}

func TestItemLayout(t *testing.T) {
	table := newMemTable()
	database := NewDynamoDBWithClient(table, "names", "local")

	require.NoError(t, database.Set(db.Path{"English", "rare"}, "Legolas", []byte(`"id"`)))

	it, ok := table.items["English/rare"]["Legolas"]
	require.True(t, ok, "item should be stored under PK=English/rare, SK=Legolas")

	v, ok := it["V"].(*types.AttributeValueMemberB)
	require.True(t, ok, "value should be a binary attribute")
	assert.Equal(t, []byte(`"id"`), v.Value)
}

func TestClientErrors(t *testing.T) {
	table := newMemTable()
	database := NewDynamoDBWithClient(table, "names", "local")
	table.fail = errors.New("throttled")

	assert.Error(t, database.Set(db.Path{"English"}, "key", []byte("v")))
	assert.Error(t, database.Delete(db.Path{"English"}, "key"))

	_, _, err := database.Get(db.Path{"English"}, "key")
	assert.Error(t, err)

	_, err = database.Keys(db.Path{"English"})
	assert.ErrorContains(t, err, "throttled")
}

func TestNewDynamoDB(t *testing.T) {
	_, err := NewDynamoDB(context.Background(), &DBOptions{Table: "", Region: "eu-central-1"})
	assert.Error(t, err)

	database, err := NewDynamoDB(context.Background(), &DBOptions{
		Table:     "names",
		Region:    "eu-central-1",
		Endpoint:  "http://localhost:8000",
		AccessKey: "local",
		SecretKey: "local",
	})
	require.NoError(t, err)
	defer database.Close()

	info := database.GetInfo()
	assert.Equal(t, db.ImplDynamo, info.DbType)
	assert.False(t, database.SupportsFeature(db.FeatureSave))
}

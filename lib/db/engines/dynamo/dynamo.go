package dynamo

import (
	"context"
	"fmt"
	"github.com/ValentinKolb/moniker/lib/db"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	sdk "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"io"
)

// API is the subset of the DynamoDB client used by this engine.
// *dynamodb.Client satisfies it.
type API interface {
	GetItem(ctx context.Context, params *sdk.GetItemInput, optFns ...func(*sdk.Options)) (*sdk.GetItemOutput, error)
	PutItem(ctx context.Context, params *sdk.PutItemInput, optFns ...func(*sdk.Options)) (*sdk.PutItemOutput, error)
	DeleteItem(ctx context.Context, params *sdk.DeleteItemInput, optFns ...func(*sdk.Options)) (*sdk.DeleteItemOutput, error)
	Query(ctx context.Context, params *sdk.QueryInput, optFns ...func(*sdk.Options)) (*sdk.QueryOutput, error)
}

// item is the stored representation of a single key.
// PK is the escaped namespace path, SK the key inside the namespace.
type item struct {
	PK    string `dynamodbav:"PK"`
	SK    string `dynamodbav:"SK"`
	Value []byte `dynamodbav:"V"`
}

// dynamoImpl implements db.KVDB on a single DynamoDB table with
// a string partition key "PK" and a string sort key "SK".
type dynamoImpl struct {
	client API
	table  string
	region string
}

// DBOptions configures the DynamoDB connection
type DBOptions struct {
	Table     string
	Region    string
	Endpoint  string // optional, e.g. http://localhost:8000 for DynamoDB local
	AccessKey string // optional, the default credential chain is used if empty
	SecretKey string
}

// DefaultOptions returns the default DynamoDB options
func DefaultOptions() *DBOptions {
	return &DBOptions{
		Table:  "moniker",
		Region: "us-east-1",
	}
}

// NewDynamoDB creates a DynamoDB client from the options. The table must already exist.
func NewDynamoDB(ctx context.Context, opts *DBOptions) (db.KVDB, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	if opts.Table == "" {
		return nil, fmt.Errorf("dynamodb table name cannot be empty")
	}

	loadOpts := []func(*config.LoadOptions) error{
		config.WithRegion(opts.Region),
	}
	if opts.AccessKey != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, ""),
		))
	}

	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	client := sdk.NewFromConfig(cfg, func(o *sdk.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
		}
	})

	return NewDynamoDBWithClient(client, opts.Table, opts.Region), nil
}

// NewDynamoDBWithClient wraps an existing client
func NewDynamoDBWithClient(client API, table, region string) db.KVDB {
	return &dynamoImpl{
		client: client,
		table:  table,
		region: region,
	}
}

// --------------------------------------------------------------------------
// Key helpers
// --------------------------------------------------------------------------

func (d *dynamoImpl) key(path db.Path, key string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: path.String()},
		"SK": &types.AttributeValueMemberS{Value: key},
	}
}

// --------------------------------------------------------------------------
// Interface Methods (docu see db/db.go)
// --------------------------------------------------------------------------

// CreateNamespace only validates the path, namespaces exist implicitly as partitions.
func (d *dynamoImpl) CreateNamespace(path db.Path) error {
	if !path.Valid() {
		return fmt.Errorf("invalid namespace path %q", path.String())
	}
	return nil
}

func (d *dynamoImpl) Set(path db.Path, key string, value []byte) error {
	if !path.Valid() {
		return fmt.Errorf("invalid namespace path %q", path.String())
	}

	av, err := attributevalue.MarshalMap(item{PK: path.String(), SK: key, Value: value})
	if err != nil {
		return fmt.Errorf("failed to marshal item: %w", err)
	}

	_, err = d.client.PutItem(context.Background(), &sdk.PutItemInput{
		TableName: &d.table,
		Item:      av,
	})
	if err != nil {
		return fmt.Errorf("PutItem error: %w", err)
	}
	return nil
}

func (d *dynamoImpl) Delete(path db.Path, key string) error {
	_, err := d.client.DeleteItem(context.Background(), &sdk.DeleteItemInput{
		TableName: &d.table,
		Key:       d.key(path, key),
	})
	if err != nil {
		return fmt.Errorf("DeleteItem error: %w", err)
	}
	return nil
}

func (d *dynamoImpl) Get(path db.Path, key string) ([]byte, bool, error) {
	out, err := d.client.GetItem(context.Background(), &sdk.GetItemInput{
		TableName:      &d.table,
		Key:            d.key(path, key),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, false, fmt.Errorf("GetItem error: %w", err)
	}
	if out.Item == nil {
		return nil, false, nil
	}

	var it item
	if err := attributevalue.UnmarshalMap(out.Item, &it); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal item: %w", err)
	}
	if it.Value == nil {
		it.Value = []byte{}
	}
	return it.Value, true, nil
}

// Keys queries the partition of the namespace. DynamoDB returns string sort keys
// in ascending byte order, which is the order required by db.KVDB.
func (d *dynamoImpl) Keys(path db.Path) ([]string, error) {
	keyCond := "PK = :pk"
	projection := "SK"
	paginator := sdk.NewQueryPaginator(d.client, &sdk.QueryInput{
		TableName:              &d.table,
		KeyConditionExpression: &keyCond,
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: path.String()},
		},
		ProjectionExpression: &projection,
		ConsistentRead:       aws.Bool(true),
	})

	keys := []string{}
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(context.Background())
		if err != nil {
			return nil, fmt.Errorf("query error: %w", err)
		}
		for _, raw := range page.Items {
			var it item
			if err := attributevalue.UnmarshalMap(raw, &it); err != nil {
				return nil, fmt.Errorf("failed to unmarshal item: %w", err)
			}
			keys = append(keys, it.SK)
		}
	}
	return keys, nil
}

func (d *dynamoImpl) Save(_ io.Writer) error {
	return fmt.Errorf("dynamodb does not support Save, use point-in-time recovery or on-demand backups instead")
}

func (d *dynamoImpl) Load(_ io.Reader) error {
	return fmt.Errorf("dynamodb does not support Load, restore a table backup instead")
}

func (d *dynamoImpl) GetInfo() db.DatabaseInfo {
	meta := &struct {
		Table  string `json:"table"`
		Region string `json:"region"`
		Info   string `json:"info"`
	}{
		Table:  d.table,
		Region: d.region,
		Info:   "SizeBytes is not tracked for dynamodb.",
	}

	return db.DatabaseInfo{
		SizeBytes: 0,
		DbType:    db.ImplDynamo,
		SupportedFeatures: []db.Feature{
			db.FeatureSet, db.FeatureGet, db.FeatureDelete,
			db.FeatureKeys, db.FeatureNamespaces,
		},
		Metadata: meta,
	}
}

func (d *dynamoImpl) SupportsFeature(feature db.Feature) bool {
	supportedFeatures := db.FeatureSet |
		db.FeatureGet |
		db.FeatureDelete |
		db.FeatureKeys |
		db.FeatureNamespaces
	return supportedFeatures&feature == feature
}

// Close is a no-op, the AWS client holds no resources that need releasing.
func (d *dynamoImpl) Close() error {
	return nil
}

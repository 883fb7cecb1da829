// Package dynamo implements db.KVDB on a single AWS DynamoDB table.
//
// The table needs a string partition key "PK" and a string sort key "SK".
// Each namespace is one partition (PK is the escaped namespace path) and each
// key is one item in it, the value lives in the binary attribute "V".
// Reads are strongly consistent.
//
// Save and Load are not supported, use DynamoDB backups instead.
package dynamo

package repository

import (
	"context"
	"errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	pkgconfig "github.com/gaelxxl34/alsabil-service/pkg/config"
)

// Single-table layout. Every entity lives in one DynamoDB table keyed by
// PK/SK; GSI1 and GSI2 carry the access paths the base key cannot:
//
//	ORDER#<id> / METADATA    GSI1 SELLER#<sellerId>  GSI2 CUSTOMER#<customerId>
//	USER#<id>  / METADATA    GSI1 EMAIL#<email>      GSI2 SELLER#<sellerId> (customers)
//	CONV#<id>  / METADATA
//	CONV#<id>  / MSG#<ts>#<id>
const (
	attrPK     = "PK"
	attrSK     = "SK"
	attrGSI1PK = "GSI1PK"
	attrGSI1SK = "GSI1SK"
	attrGSI2PK = "GSI2PK"
	attrGSI2SK = "GSI2SK"

	indexGSI1 = "GSI1"
	indexGSI2 = "GSI2"

	skMetadata = "METADATA"
)

var (
	ErrOrderNotFound        = errors.New("order not found")
	ErrUserNotFound         = errors.New("user not found")
	ErrConversationNotFound = errors.New("conversation not found")
)

func NewDynamoDBClient(cfg *pkgconfig.Config) (*dynamodb.Client, error) {
	awsCfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithRegion(cfg.AWSRegion),
	)
	if err != nil {
		return nil, err
	}

	if cfg.DynamoDBEndpoint != "" {
		// DynamoDB Local for development.
		return dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
			o.BaseEndpoint = aws.String(cfg.DynamoDBEndpoint)
		}), nil
	}

	return dynamodb.NewFromConfig(awsCfg), nil
}

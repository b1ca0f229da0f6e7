package repository

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/gaelxxl34/alsabil-service/internal/domain"
)

type OrderRepository struct {
	client    *dynamodb.Client
	tableName string
}

func NewOrderRepository(client *dynamodb.Client, tableName string) *OrderRepository {
	return &OrderRepository{
		client:    client,
		tableName: tableName,
	}
}

func orderKey(id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		attrPK: &types.AttributeValueMemberS{Value: fmt.Sprintf("ORDER#%s", id)},
		attrSK: &types.AttributeValueMemberS{Value: skMetadata},
	}
}

func (r *OrderRepository) put(ctx context.Context, order *domain.Order) error {
	av, err := attributevalue.MarshalMap(order)
	if err != nil {
		return fmt.Errorf("failed to marshal order: %w", err)
	}

	created := order.CreatedAt.Format("2006-01-02T15:04:05Z")
	av[attrPK] = &types.AttributeValueMemberS{Value: fmt.Sprintf("ORDER#%s", order.ID)}
	av[attrSK] = &types.AttributeValueMemberS{Value: skMetadata}
	av[attrGSI1PK] = &types.AttributeValueMemberS{Value: fmt.Sprintf("SELLER#%s", order.SellerID)}
	av[attrGSI1SK] = &types.AttributeValueMemberS{Value: fmt.Sprintf("ORDER#%s", created)}
	av[attrGSI2PK] = &types.AttributeValueMemberS{Value: fmt.Sprintf("CUSTOMER#%s", order.CustomerID)}
	av[attrGSI2SK] = &types.AttributeValueMemberS{Value: fmt.Sprintf("ORDER#%s", created)}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      av,
	})
	if err != nil {
		return fmt.Errorf("failed to put order: %w", err)
	}

	return nil
}

func (r *OrderRepository) Create(ctx context.Context, order *domain.Order) error {
	return r.put(ctx, order)
}

// Update rewrites the full order item. There is no conditional write or
// transaction here: concurrent updates of the same order are last-writer-wins
// on the whole document, including the balance fields.
func (r *OrderRepository) Update(ctx context.Context, order *domain.Order) error {
	return r.put(ctx, order)
}

func (r *OrderRepository) Get(ctx context.Context, id string) (*domain.Order, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.tableName),
		Key:            orderKey(id),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, err
	}
	if len(out.Item) == 0 {
		return nil, ErrOrderNotFound
	}

	var order domain.Order
	if err := attributevalue.UnmarshalMap(out.Item, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *OrderRepository) Delete(ctx context.Context, id string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key:       orderKey(id),
	})
	if err != nil {
		return fmt.Errorf("failed to delete order: %w", err)
	}
	return nil
}

func (r *OrderRepository) ListBySeller(ctx context.Context, sellerID string) ([]domain.Order, error) {
	return r.queryIndex(ctx, indexGSI1, attrGSI1PK, fmt.Sprintf("SELLER#%s", sellerID))
}

func (r *OrderRepository) ListByCustomer(ctx context.Context, customerID string) ([]domain.Order, error) {
	return r.queryIndex(ctx, indexGSI2, attrGSI2PK, fmt.Sprintf("CUSTOMER#%s", customerID))
}

func (r *OrderRepository) queryIndex(ctx context.Context, index, keyAttr, keyValue string) ([]domain.Order, error) {
	orders := []domain.Order{}
	var startKey map[string]types.AttributeValue

	for {
		out, err := r.client.Query(ctx, &dynamodb.QueryInput{
			TableName:              aws.String(r.tableName),
			IndexName:              aws.String(index),
			KeyConditionExpression: aws.String("#pk = :pk"),
			ExpressionAttributeNames: map[string]string{
				"#pk": keyAttr,
			},
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":pk": &types.AttributeValueMemberS{Value: keyValue},
			},
			ScanIndexForward:  aws.Bool(false),
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to query orders: %w", err)
		}

		var page []domain.Order
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return nil, err
		}
		orders = append(orders, page...)

		if out.LastEvaluatedKey == nil {
			break
		}
		startKey = out.LastEvaluatedKey
	}

	return orders, nil
}

// ListAll scans every order in the table. Admin-only path; the base table
// has no key shape that enumerates orders without a scan.
func (r *OrderRepository) ListAll(ctx context.Context) ([]domain.Order, error) {
	orders := []domain.Order{}
	var startKey map[string]types.AttributeValue

	for {
		out, err := r.client.Scan(ctx, &dynamodb.ScanInput{
			TableName:        aws.String(r.tableName),
			FilterExpression: aws.String("begins_with(#pk, :prefix) AND #sk = :meta"),
			ExpressionAttributeNames: map[string]string{
				"#pk": attrPK,
				"#sk": attrSK,
			},
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":prefix": &types.AttributeValueMemberS{Value: "ORDER#"},
				":meta":   &types.AttributeValueMemberS{Value: skMetadata},
			},
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to scan orders: %w", err)
		}

		var page []domain.Order
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return nil, err
		}
		orders = append(orders, page...)

		if out.LastEvaluatedKey == nil {
			break
		}
		startKey = out.LastEvaluatedKey
	}

	return orders, nil
}

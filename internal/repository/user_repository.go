package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/gaelxxl34/alsabil-service/internal/domain"
)

type UserRepository struct {
	client    *dynamodb.Client
	tableName string
}

func NewUserRepository(client *dynamodb.Client, tableName string) *UserRepository {
	return &UserRepository{
		client:    client,
		tableName: tableName,
	}
}

func userKey(id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		attrPK: &types.AttributeValueMemberS{Value: fmt.Sprintf("USER#%s", id)},
		attrSK: &types.AttributeValueMemberS{Value: skMetadata},
	}
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	av, err := attributevalue.MarshalMap(user)
	if err != nil {
		return fmt.Errorf("failed to marshal user: %w", err)
	}

	email := strings.ToLower(user.Email)
	av[attrPK] = &types.AttributeValueMemberS{Value: fmt.Sprintf("USER#%s", user.ID)}
	av[attrSK] = &types.AttributeValueMemberS{Value: skMetadata}
	av[attrGSI1PK] = &types.AttributeValueMemberS{Value: fmt.Sprintf("EMAIL#%s", email)}
	av[attrGSI1SK] = &types.AttributeValueMemberS{Value: fmt.Sprintf("USER#%s", user.ID)}
	if user.Role == domain.RoleCustomer && user.SellerID != "" {
		av[attrGSI2PK] = &types.AttributeValueMemberS{Value: fmt.Sprintf("SELLER#%s", user.SellerID)}
		av[attrGSI2SK] = &types.AttributeValueMemberS{Value: fmt.Sprintf("USER#%s", user.ID)}
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      av,
	})
	if err != nil {
		return fmt.Errorf("failed to put user: %w", err)
	}

	return nil
}

func (r *UserRepository) Get(ctx context.Context, id string) (*domain.User, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.tableName),
		Key:            userKey(id),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, err
	}
	if len(out.Item) == 0 {
		return nil, ErrUserNotFound
	}

	var user domain.User
	if err := attributevalue.UnmarshalMap(out.Item, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String(indexGSI1),
		KeyConditionExpression: aws.String("#pk = :pk"),
		ExpressionAttributeNames: map[string]string{
			"#pk": attrGSI1PK,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: fmt.Sprintf("EMAIL#%s", strings.ToLower(email))},
		},
		Limit: aws.Int32(1),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query user by email: %w", err)
	}
	if len(out.Items) == 0 {
		return nil, ErrUserNotFound
	}

	var user domain.User
	if err := attributevalue.UnmarshalMap(out.Items[0], &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// ListCustomersOfSeller queries the seller's customer accounts via GSI2.
func (r *UserRepository) ListCustomersOfSeller(ctx context.Context, sellerID string) ([]domain.User, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String(indexGSI2),
		KeyConditionExpression: aws.String("#pk = :pk"),
		ExpressionAttributeNames: map[string]string{
			"#pk": attrGSI2PK,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: fmt.Sprintf("SELLER#%s", sellerID)},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query customers: %w", err)
	}

	var users []domain.User
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (r *UserRepository) ListAll(ctx context.Context) ([]domain.User, error) {
	users := []domain.User{}
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
				":prefix": &types.AttributeValueMemberS{Value: "USER#"},
				":meta":   &types.AttributeValueMemberS{Value: skMetadata},
			},
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to scan users: %w", err)
		}

		var page []domain.User
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return nil, err
		}
		users = append(users, page...)

		if out.LastEvaluatedKey == nil {
			break
		}
		startKey = out.LastEvaluatedKey
	}

	return users, nil
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key:       userKey(id),
	})
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}

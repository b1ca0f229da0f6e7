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

type ConversationRepository struct {
	client    *dynamodb.Client
	tableName string
}

func NewConversationRepository(client *dynamodb.Client, tableName string) *ConversationRepository {
	return &ConversationRepository{
		client:    client,
		tableName: tableName,
	}
}

func conversationKey(id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		attrPK: &types.AttributeValueMemberS{Value: fmt.Sprintf("CONV#%s", id)},
		attrSK: &types.AttributeValueMemberS{Value: skMetadata},
	}
}

func (r *ConversationRepository) Put(ctx context.Context, conv *domain.Conversation) error {
	av, err := attributevalue.MarshalMap(conv)
	if err != nil {
		return fmt.Errorf("failed to marshal conversation: %w", err)
	}

	av[attrPK] = &types.AttributeValueMemberS{Value: fmt.Sprintf("CONV#%s", conv.ID)}
	av[attrSK] = &types.AttributeValueMemberS{Value: skMetadata}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      av,
	})
	if err != nil {
		return fmt.Errorf("failed to put conversation: %w", err)
	}

	return nil
}

func (r *ConversationRepository) Get(ctx context.Context, id string) (*domain.Conversation, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.tableName),
		Key:            conversationKey(id),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, err
	}
	if len(out.Item) == 0 {
		return nil, ErrConversationNotFound
	}

	var conv domain.Conversation
	if err := attributevalue.UnmarshalMap(out.Item, &conv); err != nil {
		return nil, err
	}
	return &conv, nil
}

// ListByParticipant scans conversation metadata items filtered on list
// membership. The participants attribute is a list, so it cannot be a GSI
// key; at this service's traffic a filtered scan is the pragmatic shape.
func (r *ConversationRepository) ListByParticipant(ctx context.Context, userID string) ([]domain.Conversation, error) {
	convs := []domain.Conversation{}
	var startKey map[string]types.AttributeValue

	for {
		out, err := r.client.Scan(ctx, &dynamodb.ScanInput{
			TableName:        aws.String(r.tableName),
			FilterExpression: aws.String("begins_with(#pk, :prefix) AND #sk = :meta AND contains(participants, :uid)"),
			ExpressionAttributeNames: map[string]string{
				"#pk": attrPK,
				"#sk": attrSK,
			},
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":prefix": &types.AttributeValueMemberS{Value: "CONV#"},
				":meta":   &types.AttributeValueMemberS{Value: skMetadata},
				":uid":    &types.AttributeValueMemberS{Value: userID},
			},
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to scan conversations: %w", err)
		}

		var page []domain.Conversation
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return nil, err
		}
		convs = append(convs, page...)

		if out.LastEvaluatedKey == nil {
			break
		}
		startKey = out.LastEvaluatedKey
	}

	return convs, nil
}

func (r *ConversationRepository) AppendMessage(ctx context.Context, msg *domain.Message) error {
	av, err := attributevalue.MarshalMap(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	// Sort key orders messages by creation time; the id suffix keeps keys
	// unique when two messages land on the same nanosecond.
	sk := fmt.Sprintf("MSG#%s#%s", msg.CreatedAt.UTC().Format("2006-01-02T15:04:05.000000000Z"), msg.ID)
	av[attrPK] = &types.AttributeValueMemberS{Value: fmt.Sprintf("CONV#%s", msg.ConversationID)}
	av[attrSK] = &types.AttributeValueMemberS{Value: sk}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      av,
	})
	if err != nil {
		return fmt.Errorf("failed to put message: %w", err)
	}

	return nil
}

func (r *ConversationRepository) ListMessages(ctx context.Context, conversationID string) ([]domain.Message, error) {
	msgs := []domain.Message{}
	var startKey map[string]types.AttributeValue

	for {
		out, err := r.client.Query(ctx, &dynamodb.QueryInput{
			TableName:              aws.String(r.tableName),
			KeyConditionExpression: aws.String("#pk = :pk AND begins_with(#sk, :prefix)"),
			ExpressionAttributeNames: map[string]string{
				"#pk": attrPK,
				"#sk": attrSK,
			},
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":pk":     &types.AttributeValueMemberS{Value: fmt.Sprintf("CONV#%s", conversationID)},
				":prefix": &types.AttributeValueMemberS{Value: "MSG#"},
			},
			ScanIndexForward:  aws.Bool(true),
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to query messages: %w", err)
		}

		var page []domain.Message
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return nil, err
		}
		msgs = append(msgs, page...)

		if out.LastEvaluatedKey == nil {
			break
		}
		startKey = out.LastEvaluatedKey
	}

	return msgs, nil
}

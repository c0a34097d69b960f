package databases

// go generate: mockery --name ChatDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matricare/matricare-api/models"
)

const chatName = "chats"

// ChatDatabase contains the methods to use with the chat database
type ChatDatabase interface {
	FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.ChatMessage, error)
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.ChatMessage, error)
	FindConversation(ctx context.Context, participantA, participantB string, opts ...*options.FindOptions) ([]models.ChatMessage, error)
	CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error)
	InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error)
	UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (int64, error)
	DeleteOne(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) (int64, error)
}

type chatDatabase struct {
	db DatabaseHelper
}

// NewChatDatabase initializes a new instance of chat database with the provided db connection
func NewChatDatabase(db DatabaseHelper) ChatDatabase {
	return &chatDatabase{
		db: db,
	}
}

func (c *chatDatabase) FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.ChatMessage, error) {
	msg := &models.ChatMessage{}
	err := c.db.Collection(chatName).FindOne(ctx, filter, opts...).Decode(&msg)
	if err != nil {
		return nil, err
	}
	return msg, nil
}

func (c *chatDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.ChatMessage, error) {
	var messages []models.ChatMessage
	cr := c.db.Collection(chatName).Find(ctx, filter, opts...)
	err := cr.Decode(&messages)
	if err != nil {
		return nil, err
	}
	return messages, nil
}

// FindConversation returns all messages exchanged between the two participants,
// matched as an unordered pair, oldest first
func (c *chatDatabase) FindConversation(ctx context.Context, participantA, participantB string, opts ...*options.FindOptions) ([]models.ChatMessage, error) {
	filter := bson.M{
		"$or": []bson.M{
			{"senderId": participantA, "receiverId": participantB},
			{"senderId": participantB, "receiverId": participantA},
		},
	}
	sorted := append(opts, options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
	return c.Find(ctx, filter, sorted...)
}

func (c *chatDatabase) CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error) {
	return c.db.Collection(chatName).CountDocuments(ctx, filter, opts...)
}

func (c *chatDatabase) InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error) {
	return c.db.Collection(chatName).InsertOne(ctx, document, opts...)
}

func (c *chatDatabase) UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (int64, error) {
	return c.db.Collection(chatName).UpdateOne(ctx, filter, update, opts...)
}

func (c *chatDatabase) DeleteOne(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) (int64, error) {
	return c.db.Collection(chatName).DeleteOne(ctx, filter, opts...)
}

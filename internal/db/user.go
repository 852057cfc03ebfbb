package db

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/ukydev/carwise/internal/models"
)

// MongoUserStore implements UserStore for MongoDB.
type MongoUserStore struct {
	Collection *mongo.Collection
}

// Ensure finds the user by chat id, creating the record on first contact.
func (s *MongoUserStore) Ensure(ctx context.Context, user models.User) (*models.User, error) {
	existing, err := s.FindByChatID(ctx, user.ChatID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, ErrUserNotFound) {
		return nil, err
	}
	user.CreatedAt = time.Now()
	res, err := s.Collection.InsertOne(ctx, user)
	if err != nil {
		return nil, err
	}
	user.ID = res.InsertedID.(primitive.ObjectID)
	return &user, nil
}

// FindByChatID finds a user by chat id.
func (s *MongoUserStore) FindByChatID(ctx context.Context, chatID int64) (*models.User, error) {
	var user models.User
	err := s.Collection.FindOne(ctx, bson.M{"chat_id": chatID}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User represents a chat user of the bot.
type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ChatID    int64              `bson:"chat_id" json:"chat_id"`
	Username  string             `bson:"username,omitempty" json:"username,omitempty"`
	FirstName string             `bson:"first_name,omitempty" json:"first_name,omitempty"`
	LastName  string             `bson:"last_name,omitempty" json:"last_name,omitempty"`
	Premium   bool               `bson:"premium" json:"premium"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}

// DisplayName returns the best human-readable name for the user.
func (u *User) DisplayName() string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	case u.Username != "":
		return "@" + u.Username
	default:
		return "unknown"
	}
}

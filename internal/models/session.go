package models

import "go.mongodb.org/mongo-driver/v2/bson"

type Session struct {
	ID     bson.ObjectID `bson:"_id,omitempty" json:"-"`
	UserID string        `bson:"user_id" json:"user_id"`
	JWT    string        `bson:"jwt" json:"jwt"`
}

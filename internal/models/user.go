package models

import (
	"go.mongodb.org/mongo-driver/v2/bson"
	"golang.org/x/crypto/bcrypt"
)

type User struct {
	ID          bson.ObjectID  `bson:"_id,omitempty" json:"-"`
	Name        string         `bson:"name" json:"name"`
	Email       string         `bson:"email" json:"email"`
	Password    string         `bson:"password" json:"-"`
	Preferences map[string]any `bson:"preferences,omitempty" json:"preferences,omitempty"`
}

// SessionKey is the identifier sessions are stored under for this user.
func (u *User) SessionKey() string {
	return u.Email
}

// SetPassword hashes password with bcrypt and stores the hash.
func (u *User) SetPassword(password string) error {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hashed)
	return nil
}

// CheckPassword returns nil when password matches the stored hash.
func (u *User) CheckPassword(password string) error {
	return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password))
}

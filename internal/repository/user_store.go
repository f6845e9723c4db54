package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/writeconcern"

	"mflix-backend/internal/database"
	"mflix-backend/internal/logging"
	"mflix-backend/internal/models"
)

// collection is the subset of *mongo.Collection the store relies on.
type collection interface {
	FindOne(ctx context.Context, filter any, opts ...options.Lister[options.FindOneOptions]) *mongo.SingleResult
	InsertOne(ctx context.Context, document any, opts ...options.Lister[options.InsertOneOptions]) (*mongo.InsertOneResult, error)
	UpdateOne(ctx context.Context, filter any, update any, opts ...options.Lister[options.UpdateOneOptions]) (*mongo.UpdateResult, error)
	DeleteOne(ctx context.Context, filter any, opts ...options.Lister[options.DeleteOneOptions]) (*mongo.DeleteResult, error)
	Indexes() mongo.IndexView
}

// UserStore reads and writes the users and sessions collections. It keeps no
// mutable state and is safe for concurrent use.
type UserStore struct {
	users        collection
	durableUsers collection
	sessions     collection
	logger       *logging.Logger
	timeout      time.Duration
}

// NewUserStore builds a store on db. A positive timeout bounds every
// database call.
func NewUserStore(db *mongo.Database, logger *logging.Logger, timeout time.Duration) *UserStore {
	majority := options.Collection().SetWriteConcern(writeconcern.Majority())
	return newUserStore(
		db.Collection(database.UsersCollection),
		db.Collection(database.UsersCollection, majority),
		db.Collection(database.SessionsCollection),
		logger,
		timeout,
	)
}

func newUserStore(users, durableUsers, sessions collection, logger *logging.Logger, timeout time.Duration) *UserStore {
	return &UserStore{
		users:        users,
		durableUsers: durableUsers,
		sessions:     sessions,
		logger:       logger,
		timeout:      timeout,
	}
}

func (s *UserStore) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.timeout)
}

// AddUser inserts user with majority write concern. It returns
// ErrDuplicateUser when the email is taken and *WriteError for any other
// insert fault.
func (s *UserStore) AddUser(ctx context.Context, user *models.User) error {
	existing, err := s.GetUser(ctx, user.Email)
	if err != nil {
		return err
	}
	if existing != nil {
		return ErrDuplicateUser
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	result, err := s.durableUsers.InsertOne(ctx, user)
	if err != nil {
		// lost a race with a concurrent registration
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateUser
		}
		return &WriteError{Op: "insert user", Err: err}
	}
	if id, ok := result.InsertedID.(bson.ObjectID); ok {
		user.ID = id
	}
	return nil
}

// CreateUserSession stores jwt as the only session of userID, replacing any
// previous token. It returns ErrDuplicateSession when jwt is already bound to
// a different user.
func (s *UserStore) CreateUserSession(ctx context.Context, userID, jwt string) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	bound, err := s.findSession(ctx, bson.M{"jwt": jwt})
	if err != nil {
		return err
	}
	if bound != nil && bound.UserID != userID {
		return ErrDuplicateSession
	}

	_, err = s.sessions.UpdateOne(ctx,
		bson.M{"user_id": userID},
		bson.M{"$set": bson.M{"jwt": jwt}},
		options.UpdateOne().SetUpsert(true),
	)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateSession
		}
		return &WriteError{Op: "upsert session", Err: err}
	}
	return nil
}

// GetUser returns the user with the given email, or nil if there is none.
func (s *UserStore) GetUser(ctx context.Context, email string) (*models.User, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var user models.User
	err := s.users.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &user, nil
}

// GetUserSession returns the session stored for userID, or nil if there is none.
func (s *UserStore) GetUserSession(ctx context.Context, userID string) (*models.Session, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.findSession(ctx, bson.M{"user_id": userID})
}

func (s *UserStore) findSession(ctx context.Context, filter bson.M) (*models.Session, error) {
	var session models.Session
	err := s.sessions.FindOne(ctx, filter).Decode(&session)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("find session: %w", err)
	}
	return &session, nil
}

// DeleteUserSessions removes the session of userID. A missing session is not
// an error. The returned flag reports whether the server acknowledged the
// delete.
func (s *UserStore) DeleteUserSessions(ctx context.Context, userID string) (bool, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	res, err := s.sessions.DeleteOne(ctx, bson.M{"user_id": userID})
	if err != nil {
		return false, &WriteError{Op: "delete session", Err: err}
	}
	if res.DeletedCount < 1 {
		s.logger.Warnw("user could not be found in sessions collection", "user_id", userID)
	}
	return res.Acknowledged, nil
}

// DeleteUser removes the session of the user identified by email and then the
// user itself. The two deletes are not atomic; a failure between them leaves
// a user without a session and the call can simply be repeated.
func (s *UserStore) DeleteUser(ctx context.Context, email string) bool {
	key := email
	user, err := s.GetUser(ctx, email)
	if err != nil {
		s.logger.Errorw("failed to resolve user before delete", "email", email, "error", err)
		return false
	}
	if user != nil {
		key = user.SessionKey()
	}

	ok, err := s.DeleteUserSessions(ctx, key)
	if err != nil {
		s.logger.Errorw("failed to delete user sessions", "email", email, "error", err)
		return false
	}
	if !ok {
		return false
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	res, err := s.users.DeleteOne(ctx, bson.M{"email": email})
	if err != nil {
		s.logger.Errorw("failed to delete user", "email", email, "error", err)
		return false
	}
	if res.DeletedCount < 1 {
		s.logger.Warnw("user not found, potential concurrent operation", "email", email)
	}
	return res.Acknowledged
}

// UpdateUserPreferences replaces the preferences of the user identified by
// email. A nil map is rejected with ErrInvalidArgument. Matching no document,
// or writing the value already stored, is logged and still succeeds.
func (s *UserStore) UpdateUserPreferences(ctx context.Context, email string, preferences map[string]any) error {
	if preferences == nil {
		return fmt.Errorf("%w: preferences cannot be nil", ErrInvalidArgument)
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	res, err := s.users.UpdateOne(ctx,
		bson.M{"email": email},
		bson.M{"$set": bson.M{"preferences": preferences}},
	)
	if err != nil {
		return &WriteError{Op: "update preferences", Err: err}
	}
	if res.ModifiedCount < 1 {
		s.logger.Warnw("user preferences were not updated",
			"email", email,
			"matched", res.MatchedCount,
			"preferences", preferences,
		)
	}
	return nil
}

// EnsureIndexes creates the unique indexes backing the one-user-per-email and
// one-session-per-user rules.
func (s *UserStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("users indexes: %w", err)
	}

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "jwt", Value: 1}},
			Options: options.Index().SetUnique(true).SetSparse(true),
		},
	}
	if _, err := s.sessions.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("sessions indexes: %w", err)
	}
	return nil
}

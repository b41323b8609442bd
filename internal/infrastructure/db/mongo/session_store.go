package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const collectionSessions = "sessions"

// SessionStore keeps one device's session in a single document:
// {_id: <device_id>, values: {token, user, userType}, updated_at}.
type SessionStore struct {
	col      *mongo.Collection
	deviceID string
}

// NewSessionStore binds a store to the sessions collection of db.
func NewSessionStore(db *mongo.Database, deviceID string) *SessionStore {
	return NewSessionStoreWithCollection(db.Collection(collectionSessions), deviceID)
}

func NewSessionStoreWithCollection(col *mongo.Collection, deviceID string) *SessionStore {
	return &SessionStore{col: col, deviceID: deviceID}
}

type sessionDoc struct {
	ID        string            `bson:"_id"`
	Values    map[string]string `bson:"values"`
	UpdatedAt time.Time         `bson:"updated_at"`
}

func (s *SessionStore) Get(ctx context.Context, key string) (string, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc sessionDoc
	err := s.col.FindOne(ctx, bson.M{"_id": s.deviceID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("session get %s: %w", key, err)
	}
	v, ok := doc.Values[key]
	return v, ok, nil
}

func (s *SessionStore) Set(ctx context.Context, key, value string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	update := bson.M{"$set": bson.M{
		"values." + key: value,
		"updated_at":    time.Now().UTC(),
	}}
	_, err := s.col.UpdateOne(ctx, bson.M{"_id": s.deviceID}, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("session set %s: %w", key, err)
	}
	return nil
}

func (s *SessionStore) Remove(ctx context.Context, key string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	update := bson.M{
		"$unset": bson.M{"values." + key: ""},
		"$set":   bson.M{"updated_at": time.Now().UTC()},
	}
	if _, err := s.col.UpdateOne(ctx, bson.M{"_id": s.deviceID}, update); err != nil {
		return fmt.Errorf("session remove %s: %w", key, err)
	}
	return nil
}

// EnsureIndexes adds a TTL index so sessions untouched for idle are purged
// by the server. idle <= 0 skips the index.
func (s *SessionStore) EnsureIndexes(ctx context.Context, idle time.Duration) error {
	if idle <= 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := s.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "updated_at", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(int32(idle.Seconds())),
	})
	if err != nil {
		return fmt.Errorf("session indexes: %w", err)
	}
	return nil
}

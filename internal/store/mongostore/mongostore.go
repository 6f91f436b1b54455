// Package mongostore implements the store contracts on MongoDB.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
	"go.uber.org/zap"

	"github.com/MediSynth-io/contactbook/internal/store"
)

const (
	usersCollection    = "users"
	sessionsCollection = "sessions"
	contactsCollection = "contacts"
)

// Store owns the client and exposes one store per collection.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
	log    *zap.Logger
}

// Connect dials uri, retrying up to maxRetries times, and ensures indexes.
func Connect(ctx context.Context, uri, dbName string, maxRetries int, retryDelay time.Duration, log *zap.Logger) (*Store, error) {
	if maxRetries < 1 {
		maxRetries = 1
	}

	var client *mongo.Client
	var err error
	for i := 0; i < maxRetries; i++ {
		client, err = mongo.Connect(options.Client().ApplyURI(uri))
		if err == nil {
			pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			err = client.Ping(pingCtx, readpref.Primary())
			cancel()
			if err == nil {
				break
			}
			_ = client.Disconnect(ctx)
		}
		log.Warn("mongo connection attempt failed",
			zap.Int("attempt", i+1),
			zap.Int("max_retries", maxRetries),
			zap.Error(err))
		if i < maxRetries-1 {
			time.Sleep(retryDelay)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo after %d attempts: %w", maxRetries, err)
	}

	s := &Store{client: client, db: client.Database(dbName), log: log}
	if err := s.EnsureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	log.Info("connected to mongo", zap.String("database", dbName))
	return s, nil
}

// EnsureIndexes creates the unique and TTL indexes the stores rely on.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	if _, err := s.db.Collection(usersCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	}); err != nil {
		return fmt.Errorf("users index: %w", err)
	}

	if _, err := s.db.Collection(sessionsCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "sessionId", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "accessToken", Value: 1}}},
		{Keys: bson.D{{Key: "refreshTokenValidUntil", Value: 1}}, Options: options.Index().SetExpireAfterSeconds(0)},
	}); err != nil {
		return fmt.Errorf("sessions indexes: %w", err)
	}

	if _, err := s.db.Collection(contactsCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "_id", Value: 1}}},
		{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "contactType", Value: 1}, {Key: "isFavourite", Value: 1}}},
	}); err != nil {
		return fmt.Errorf("contacts index: %w", err)
	}
	return nil
}

func (s *Store) Users() store.UserStore       { return &userStore{coll: s.db.Collection(usersCollection)} }
func (s *Store) Sessions() store.SessionStore { return &sessionStore{coll: s.db.Collection(sessionsCollection)} }
func (s *Store) Contacts() store.ContactStore { return &contactStore{coll: s.db.Collection(contactsCollection)} }

// Ping checks the primary is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

// Close disconnects the client.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// Drop removes the whole database. Only tests call it.
func (s *Store) Drop(ctx context.Context) error {
	return s.db.Drop(ctx)
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return store.ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return store.ErrDuplicate
	}
	return err
}

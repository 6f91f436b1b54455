package mongostore

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/MediSynth-io/contactbook/internal/models"
)

// sessionDoc is keyed by user id so that ReplaceOne with upsert swaps a
// user's session in one round trip.
type sessionDoc struct {
	UserID                 string    `bson:"_id"`
	SessionID              string    `bson:"sessionId"`
	AccessToken            string    `bson:"accessToken"`
	RefreshToken           string    `bson:"refreshToken"`
	AccessTokenValidUntil  time.Time `bson:"accessTokenValidUntil"`
	RefreshTokenValidUntil time.Time `bson:"refreshTokenValidUntil"`
	CreatedAt              time.Time `bson:"createdAt"`
}

func toSessionDoc(s *models.Session) sessionDoc {
	return sessionDoc{
		UserID:                 s.UserID,
		SessionID:              s.ID,
		AccessToken:            s.AccessToken,
		RefreshToken:           s.RefreshToken,
		AccessTokenValidUntil:  s.AccessTokenValidUntil,
		RefreshTokenValidUntil: s.RefreshTokenValidUntil,
		CreatedAt:              s.CreatedAt,
	}
}

func (d sessionDoc) model() *models.Session {
	return &models.Session{
		ID:                     d.SessionID,
		UserID:                 d.UserID,
		AccessToken:            d.AccessToken,
		RefreshToken:           d.RefreshToken,
		AccessTokenValidUntil:  d.AccessTokenValidUntil,
		RefreshTokenValidUntil: d.RefreshTokenValidUntil,
		CreatedAt:              d.CreatedAt,
	}
}

type sessionStore struct {
	coll *mongo.Collection
}

func (s *sessionStore) Replace(ctx context.Context, session *models.Session) error {
	_, err := s.coll.ReplaceOne(ctx,
		bson.M{"_id": session.UserID},
		toSessionDoc(session),
		options.Replace().SetUpsert(true))
	return translate(err)
}

func (s *sessionStore) Consume(ctx context.Context, sessionID, refreshToken string) (*models.Session, error) {
	var d sessionDoc
	err := s.coll.FindOneAndDelete(ctx, bson.M{"sessionId": sessionID, "refreshToken": refreshToken}).Decode(&d)
	if err != nil {
		return nil, translate(err)
	}
	return d.model(), nil
}

func (s *sessionStore) GetByAccessToken(ctx context.Context, accessToken string) (*models.Session, error) {
	var d sessionDoc
	if err := s.coll.FindOne(ctx, bson.M{"accessToken": accessToken}).Decode(&d); err != nil {
		return nil, translate(err)
	}
	return d.model(), nil
}

func (s *sessionStore) Delete(ctx context.Context, sessionID string) error {
	_, err := s.coll.DeleteOne(ctx, bson.M{"sessionId": sessionID})
	return translate(err)
}

func (s *sessionStore) DeleteByUser(ctx context.Context, userID string) error {
	_, err := s.coll.DeleteOne(ctx, bson.M{"_id": userID})
	return translate(err)
}

func (s *sessionStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := s.coll.DeleteMany(ctx, bson.M{"refreshTokenValidUntil": bson.M{"$lt": now}})
	if err != nil {
		return 0, translate(err)
	}
	return res.DeletedCount, nil
}

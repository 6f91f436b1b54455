package mongostore

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/MediSynth-io/contactbook/internal/models"
	"github.com/MediSynth-io/contactbook/internal/store"
)

type contactStore struct {
	coll *mongo.Collection
}

func listFilter(q models.ListQuery) bson.M {
	filter := bson.M{"userId": q.UserID}
	if q.Filter.ContactType != "" {
		filter["contactType"] = q.Filter.ContactType
	}
	if q.Filter.IsFavourite != nil {
		filter["isFavourite"] = *q.Filter.IsFavourite
	}
	return filter
}

func (s *contactStore) List(ctx context.Context, q models.ListQuery) ([]models.Contact, int64, error) {
	filter := listFilter(q)

	total, err := s.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	dir := 1
	if q.SortOrder == models.SortDesc {
		dir = -1
	}
	sort := bson.D{{Key: q.SortBy, Value: dir}}
	if q.SortBy != models.SortByID {
		sort = append(sort, bson.E{Key: "_id", Value: dir})
	}

	opts := options.Find().SetSort(sort).SetSkip(int64(q.Skip()))
	if q.PerPage > 0 {
		opts.SetLimit(int64(q.PerPage))
	}

	cursor, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	contacts := make([]models.Contact, 0)
	if err := cursor.All(ctx, &contacts); err != nil {
		return nil, 0, err
	}
	return contacts, total, nil
}

func (s *contactStore) Get(ctx context.Context, id, userID string) (*models.Contact, error) {
	var c models.Contact
	if err := s.coll.FindOne(ctx, bson.M{"_id": id, "userId": userID}).Decode(&c); err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (s *contactStore) Create(ctx context.Context, contact *models.Contact) error {
	_, err := s.coll.InsertOne(ctx, contact)
	return translate(err)
}

func patchDoc(p models.ContactPatch) bson.M {
	set := bson.M{"updatedAt": time.Now().UTC()}
	if p.Name != nil {
		set["name"] = *p.Name
	}
	if p.PhoneNumber != nil {
		set["phoneNumber"] = *p.PhoneNumber
	}
	if p.Email != nil {
		set["email"] = *p.Email
	}
	if p.IsFavourite != nil {
		set["isFavourite"] = *p.IsFavourite
	}
	if p.ContactType != nil {
		set["contactType"] = *p.ContactType
	}
	if p.Photo != nil {
		set["photo"] = *p.Photo
	}
	return bson.M{"$set": set}
}

func (s *contactStore) Update(ctx context.Context, id, userID string, patch models.ContactPatch) (*models.Contact, error) {
	var c models.Contact
	err := s.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "userId": userID},
		patchDoc(patch),
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&c)
	if err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (s *contactStore) Delete(ctx context.Context, id, userID string) (*models.Contact, error) {
	var c models.Contact
	if err := s.coll.FindOneAndDelete(ctx, bson.M{"_id": id, "userId": userID}).Decode(&c); err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

var _ store.ContactStore = (*contactStore)(nil)

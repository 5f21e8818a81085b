package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/bandhan/matrimony-api/internal/core/domain"
)

// Biodata documents are written by the profile catalog. This service reads
// them and, on premium approval, sets is_premium.
const collectionBiodatas = "biodatas"

type ProfileRepository struct {
	col *mongo.Collection
}

func NewProfileRepository(db *mongo.Database) *ProfileRepository {
	return &ProfileRepository{col: db.Collection(collectionBiodatas)}
}

type biodataDoc struct {
	BiodataID    int64  `bson:"biodata_id"`
	OwnerEmail   string `bson:"owner_email"`
	Premium      bool   `bson:"is_premium"`
	ContactEmail string `bson:"contact_email"`
	MobileNumber string `bson:"mobile_number"`
}

func (d biodataDoc) toDomain() *domain.Profile {
	return &domain.Profile{
		BiodataID:    d.BiodataID,
		OwnerEmail:   domain.NormalizeEmail(d.OwnerEmail),
		Premium:      d.Premium,
		ContactEmail: d.ContactEmail,
		MobileNumber: d.MobileNumber,
	}
}

func (r *ProfileRepository) FindByBiodataID(ctx context.Context, biodataID int64) (*domain.Profile, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var d biodataDoc
	if err := r.col.FindOne(ctx, bson.M{"biodata_id": biodataID}).Decode(&d); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrProfileNotFound
		}
		return nil, storageErr("find biodata", err)
	}
	return d.toDomain(), nil
}

func (r *ProfileRepository) FindByBiodataIDs(ctx context.Context, biodataIDs []int64) ([]*domain.Profile, error) {
	if len(biodataIDs) == 0 {
		return nil, nil
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, bson.M{"biodata_id": bson.M{"$in": biodataIDs}})
	if err != nil {
		return nil, storageErr("find biodatas", err)
	}
	var docs []biodataDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, storageErr("find biodatas", err)
	}
	out := make([]*domain.Profile, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

func (r *ProfileRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "biodata_id", Value: 1}}},
		{Keys: bson.D{{Key: "owner_email", Value: 1}}},
	}
	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}

package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/bandhan/matrimony-api/internal/core/domain"
)

const collectionAccounts = "accounts"

// AccountRepository stores one document per account, keyed by the
// normalized email in _id so the primary key enforces uniqueness.
type AccountRepository struct {
	col *mongo.Collection
}

func NewAccountRepository(db *mongo.Database) *AccountRepository {
	return &AccountRepository{col: db.Collection(collectionAccounts)}
}

type accountDoc struct {
	Email          string    `bson:"_id"`
	DisplayName    string    `bson:"display_name"`
	AvatarURL      string    `bson:"avatar_url,omitempty"`
	Role           string    `bson:"role"`
	Premium        bool      `bson:"is_premium"`
	PremiumRequest string    `bson:"premium_request"`
	CreatedAt      time.Time `bson:"created_at"`
	UpdatedAt      time.Time `bson:"updated_at"`
}

func (d accountDoc) toDomain() *domain.Account {
	return &domain.Account{
		Email:          d.Email,
		DisplayName:    d.DisplayName,
		AvatarURL:      d.AvatarURL,
		Role:           domain.Role(d.Role),
		Premium:        d.Premium,
		PremiumRequest: domain.PremiumRequestStatus(d.PremiumRequest),
		CreatedAt:      d.CreatedAt.UTC(),
		UpdatedAt:      d.UpdatedAt.UTC(),
	}
}

func (r *AccountRepository) FindByEmail(ctx context.Context, email string) (*domain.Account, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var d accountDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": email}).Decode(&d); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, storageErr("find account", err)
	}
	return d.toDomain(), nil
}

// GetOrCreate upserts with $setOnInsert so an existing record is never
// overwritten. Two racing upserts can both miss and one of them then fails
// on the _id index; that caller reads back the winner's document.
func (r *AccountRepository) GetOrCreate(ctx context.Context, acct *domain.Account) (*domain.Account, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	onInsert := bson.M{
		"display_name":    acct.DisplayName,
		"avatar_url":      acct.AvatarURL,
		"role":            string(acct.Role),
		"is_premium":      acct.Premium,
		"premium_request": string(acct.PremiumRequest),
		"created_at":      acct.CreatedAt.UTC(),
		"updated_at":      acct.UpdatedAt.UTC(),
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.Before)

	var prior accountDoc
	err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": acct.Email}, bson.M{"$setOnInsert": onInsert}, opts).Decode(&prior)
	switch {
	case err == nil:
		return prior.toDomain(), false, nil
	case errors.Is(err, mongo.ErrNoDocuments):
		stored := *acct
		return &stored, true, nil
	case mongo.IsDuplicateKeyError(err):
		existing, ferr := r.FindByEmail(ctx, acct.Email)
		if ferr != nil {
			return nil, false, ferr
		}
		return existing, false, nil
	default:
		return nil, false, storageErr("get or create account", err)
	}
}

func (r *AccountRepository) UpdateProfile(ctx context.Context, email, displayName, avatarURL string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": email}, bson.M{"$set": bson.M{
		"display_name": displayName,
		"avatar_url":   avatarURL,
		"updated_at":   time.Now().UTC(),
	}})
	if err != nil {
		return storageErr("update account profile", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}

func (r *AccountRepository) SetRole(ctx context.Context, email string, role domain.Role) (*domain.Account, error) {
	return r.setAndReturn(ctx, "set account role", email, bson.M{"role": string(role)})
}

func (r *AccountRepository) SetPremium(ctx context.Context, email string, premium bool) (*domain.Account, error) {
	return r.setAndReturn(ctx, "set account premium", email, bson.M{"is_premium": premium})
}

func (r *AccountRepository) SetPremiumRequest(ctx context.Context, email string, status domain.PremiumRequestStatus) error {
	_, err := r.setAndReturn(ctx, "set premium request marker", email, bson.M{"premium_request": string(status)})
	return err
}

func (r *AccountRepository) setAndReturn(ctx context.Context, op, email string, fields bson.M) (*domain.Account, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	fields["updated_at"] = time.Now().UTC()
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var d accountDoc
	if err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": email}, bson.M{"$set": fields}, opts).Decode(&d); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, storageErr(op, err)
	}
	return d.toDomain(), nil
}

func (r *AccountRepository) List(ctx context.Context) ([]*domain.Account, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, storageErr("list accounts", err)
	}
	var docs []accountDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, storageErr("list accounts", err)
	}
	out := make([]*domain.Account, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

// EnsureIndexes creates the role index used by admin listings.
func (r *AccountRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{Keys: bson.D{{Key: "role", Value: 1}}})
	return err
}

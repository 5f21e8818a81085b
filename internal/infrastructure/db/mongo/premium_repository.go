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

const collectionPremiumRequests = "premium_requests"

// PremiumRepository keys premium requests by biodata id. Approval runs in a
// multi-document transaction and therefore needs a replica set deployment.
type PremiumRepository struct {
	client   *mongo.Client
	col      *mongo.Collection
	biodatas *mongo.Collection
}

func NewPremiumRepository(db *mongo.Database) *PremiumRepository {
	return &PremiumRepository{
		client:   db.Client(),
		col:      db.Collection(collectionPremiumRequests),
		biodatas: db.Collection(collectionBiodatas),
	}
}

type premiumDoc struct {
	BiodataID   int64      `bson:"_id"`
	OwnerEmail  string     `bson:"owner_email"`
	Status      string     `bson:"status"`
	RequestedAt time.Time  `bson:"requested_at"`
	ApprovedAt  *time.Time `bson:"approved_at,omitempty"`
}

func (d premiumDoc) toDomain() *domain.PremiumRequest {
	req := &domain.PremiumRequest{
		BiodataID:   d.BiodataID,
		OwnerEmail:  d.OwnerEmail,
		Status:      domain.RequestStatus(d.Status),
		RequestedAt: d.RequestedAt.UTC(),
	}
	if d.ApprovedAt != nil {
		at := d.ApprovedAt.UTC()
		req.ApprovedAt = &at
	}
	return req
}

func (r *PremiumRepository) Create(ctx context.Context, req *domain.PremiumRequest) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := premiumDoc{
		BiodataID:   req.BiodataID,
		OwnerEmail:  req.OwnerEmail,
		Status:      string(req.Status),
		RequestedAt: req.RequestedAt.UTC(),
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrDuplicateRequest
		}
		return storageErr("insert premium request", err)
	}
	return nil
}

func (r *PremiumRepository) FindByBiodataID(ctx context.Context, biodataID int64) (*domain.PremiumRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var d premiumDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": biodataID}).Decode(&d); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrRequestNotFound
		}
		return nil, storageErr("find premium request", err)
	}
	return d.toDomain(), nil
}

// Approve sets the request status and the biodata premium flag in one
// transaction. An already approved request is returned without writes.
func (r *PremiumRepository) Approve(ctx context.Context, biodataID int64, at time.Time) (*domain.PremiumRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	sess, err := r.client.StartSession()
	if err != nil {
		return nil, storageErr("start session", err)
	}
	defer sess.EndSession(ctx)

	result, err := sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		filter := bson.M{"_id": biodataID, "status": string(domain.StatusPending)}
		update := bson.M{"$set": bson.M{"status": string(domain.StatusApproved), "approved_at": at.UTC()}}
		opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

		var d premiumDoc
		err := r.col.FindOneAndUpdate(sc, filter, update, opts).Decode(&d)
		if errors.Is(err, mongo.ErrNoDocuments) {
			if err := r.col.FindOne(sc, bson.M{"_id": biodataID}).Decode(&d); err != nil {
				if errors.Is(err, mongo.ErrNoDocuments) {
					return nil, domain.ErrRequestNotFound
				}
				return nil, err
			}
			return d.toDomain(), nil
		}
		if err != nil {
			return nil, err
		}

		res, err := r.biodatas.UpdateOne(sc, bson.M{"biodata_id": biodataID}, bson.M{"$set": bson.M{"is_premium": true}})
		if err != nil {
			return nil, err
		}
		if res.MatchedCount == 0 {
			return nil, domain.ErrProfileNotFound
		}
		return d.toDomain(), nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrRequestNotFound) || errors.Is(err, domain.ErrProfileNotFound) {
			return nil, err
		}
		return nil, storageErr("approve premium request", err)
	}
	return result.(*domain.PremiumRequest), nil
}

func (r *PremiumRepository) List(ctx context.Context, status domain.RequestStatus) ([]*domain.PremiumRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{}
	if status != "" {
		filter["status"] = string(status)
	}
	cur, err := r.col.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "requested_at", Value: 1}}))
	if err != nil {
		return nil, storageErr("list premium requests", err)
	}
	var docs []premiumDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, storageErr("list premium requests", err)
	}
	out := make([]*domain.PremiumRequest, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

func (r *PremiumRepository) CountPendingByOwner(ctx context.Context, owner string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	n, err := r.col.CountDocuments(ctx, bson.M{"owner_email": owner, "status": string(domain.StatusPending)})
	if err != nil {
		return 0, storageErr("count pending premium requests", err)
	}
	return n, nil
}

func (r *PremiumRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	_, err := r.col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "requested_at", Value: 1}}},
		{Keys: bson.D{{Key: "owner_email", Value: 1}, {Key: "status", Value: 1}}},
	})
	return err
}

package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/bandhan/matrimony-api/internal/core/domain"
	"github.com/bandhan/matrimony-api/internal/core/ports"
)

const collectionDisclosures = "disclosure_requests"

// DisclosureRepository persists contact disclosure requests. The unique
// index on (requester_email, biodata_id) is the authority on duplicates.
type DisclosureRepository struct {
	col *mongo.Collection
}

func NewDisclosureRepository(db *mongo.Database) *DisclosureRepository {
	return &DisclosureRepository{col: db.Collection(collectionDisclosures)}
}

type disclosureDoc struct {
	ID             string     `bson:"_id"`
	RequesterEmail string     `bson:"requester_email"`
	BiodataID      int64      `bson:"biodata_id"`
	PaymentRef     string     `bson:"payment_ref"`
	Status         string     `bson:"status"`
	CreatedAt      time.Time  `bson:"created_at"`
	ApprovedAt     *time.Time `bson:"approved_at,omitempty"`
}

func newDisclosureDoc(req *domain.DisclosureRequest) disclosureDoc {
	return disclosureDoc{
		ID:             req.ID,
		RequesterEmail: req.RequesterEmail,
		BiodataID:      req.BiodataID,
		PaymentRef:     req.PaymentRef,
		Status:         string(req.Status),
		CreatedAt:      req.CreatedAt.UTC(),
		ApprovedAt:     req.ApprovedAt,
	}
}

func (d disclosureDoc) toDomain() *domain.DisclosureRequest {
	req := &domain.DisclosureRequest{
		ID:             d.ID,
		RequesterEmail: d.RequesterEmail,
		BiodataID:      d.BiodataID,
		PaymentRef:     d.PaymentRef,
		Status:         domain.RequestStatus(d.Status),
		CreatedAt:      d.CreatedAt.UTC(),
	}
	if d.ApprovedAt != nil {
		at := d.ApprovedAt.UTC()
		req.ApprovedAt = &at
	}
	return req
}

func (r *DisclosureRepository) Create(ctx context.Context, req *domain.DisclosureRequest) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.col.InsertOne(ctx, newDisclosureDoc(req)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrDuplicateRequest
		}
		return storageErr("insert disclosure request", err)
	}
	return nil
}

func (r *DisclosureRepository) FindByID(ctx context.Context, id string) (*domain.DisclosureRequest, error) {
	return r.findOne(ctx, "find disclosure request", bson.M{"_id": id})
}

func (r *DisclosureRepository) FindByPair(ctx context.Context, requester string, biodataID int64) (*domain.DisclosureRequest, error) {
	return r.findOne(ctx, "find disclosure request by pair", bson.M{"requester_email": requester, "biodata_id": biodataID})
}

func (r *DisclosureRepository) findOne(ctx context.Context, op string, filter bson.M) (*domain.DisclosureRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var d disclosureDoc
	if err := r.col.FindOne(ctx, filter).Decode(&d); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrRequestNotFound
		}
		return nil, storageErr(op, err)
	}
	return d.toDomain(), nil
}

// Approve flips status with a filter on the pending state, so concurrent
// approvals write approved_at once. A miss means the request is already
// approved or gone; the current document decides which.
func (r *DisclosureRepository) Approve(ctx context.Context, id string, at time.Time) (*domain.DisclosureRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"_id": id, "status": string(domain.StatusPending)}
	update := bson.M{"$set": bson.M{"status": string(domain.StatusApproved), "approved_at": at.UTC()}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var d disclosureDoc
	err := r.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&d)
	if err == nil {
		return d.toDomain(), nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, storageErr("approve disclosure request", err)
	}
	return r.FindByID(ctx, id)
}

func (r *DisclosureRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return storageErr("delete disclosure request", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrRequestNotFound
	}
	return nil
}

func (r *DisclosureRepository) ListByRequester(ctx context.Context, requester string) ([]*domain.DisclosureRequest, error) {
	return r.find(ctx, "list disclosure requests by requester", bson.M{"requester_email": requester})
}

func (r *DisclosureRepository) ListApprovedFor(ctx context.Context, requester string, biodataIDs []int64) ([]*domain.DisclosureRequest, error) {
	if len(biodataIDs) == 0 {
		return nil, nil
	}
	return r.find(ctx, "list approved disclosure requests", bson.M{
		"requester_email": requester,
		"biodata_id":      bson.M{"$in": biodataIDs},
		"status":          string(domain.StatusApproved),
	})
}

func (r *DisclosureRepository) List(ctx context.Context, f ports.DisclosureFilter) ([]*domain.DisclosureRequest, error) {
	filter := bson.M{}
	if f.Status != "" {
		filter["status"] = string(f.Status)
	}
	return r.find(ctx, "list disclosure requests", filter)
}

func (r *DisclosureRepository) find(ctx context.Context, op string, filter bson.M) ([]*domain.DisclosureRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, storageErr(op, err)
	}
	var docs []disclosureDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, storageErr(op, err)
	}
	out := make([]*domain.DisclosureRequest, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

// EnsureIndexes creates the pair uniqueness constraint and the listing indexes.
func (r *DisclosureRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "requester_email", Value: 1}, {Key: "biodata_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_requester_biodata"),
		},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: 1}}},
	}
	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}

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

const collectionPayments = "payments"

// PaymentRepository is the payment ledger, keyed by payment reference.
type PaymentRepository struct {
	col *mongo.Collection
}

func NewPaymentRepository(db *mongo.Database) *PaymentRepository {
	return &PaymentRepository{col: db.Collection(collectionPayments)}
}

type paymentDoc struct {
	Ref         string     `bson:"_id"`
	PayerEmail  string     `bson:"payer_email"`
	AmountMinor int64      `bson:"amount_minor"`
	Currency    string     `bson:"currency"`
	Status      string     `bson:"status"`
	CreatedAt   time.Time  `bson:"created_at"`
	ConfirmedAt *time.Time `bson:"confirmed_at,omitempty"`
	ConsumedBy  string     `bson:"consumed_by,omitempty"`
	ConsumedAt  *time.Time `bson:"consumed_at,omitempty"`
}

func (d paymentDoc) toDomain() *domain.Payment {
	p := &domain.Payment{
		Ref:         d.Ref,
		PayerEmail:  d.PayerEmail,
		AmountMinor: d.AmountMinor,
		Currency:    d.Currency,
		Status:      domain.PaymentStatus(d.Status),
		CreatedAt:   d.CreatedAt.UTC(),
		ConsumedBy:  d.ConsumedBy,
	}
	if d.ConfirmedAt != nil {
		at := d.ConfirmedAt.UTC()
		p.ConfirmedAt = &at
	}
	if d.ConsumedAt != nil {
		at := d.ConsumedAt.UTC()
		p.ConsumedAt = &at
	}
	return p
}

func (r *PaymentRepository) Insert(ctx context.Context, p *domain.Payment) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := paymentDoc{
		Ref:         p.Ref,
		PayerEmail:  p.PayerEmail,
		AmountMinor: p.AmountMinor,
		Currency:    p.Currency,
		Status:      string(p.Status),
		CreatedAt:   p.CreatedAt.UTC(),
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return storageErr("insert payment", err)
	}
	return nil
}

func (r *PaymentRepository) FindByRef(ctx context.Context, ref string) (*domain.Payment, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var d paymentDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": ref}).Decode(&d); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrPaymentRequired
		}
		return nil, storageErr("find payment", err)
	}
	return d.toDomain(), nil
}

func (r *PaymentRepository) MarkConfirmed(ctx context.Context, ref string, at time.Time) (*domain.Payment, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"_id": ref, "status": string(domain.PaymentAuthorized)}
	update := bson.M{"$set": bson.M{"status": string(domain.PaymentConfirmed), "confirmed_at": at.UTC()}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var d paymentDoc
	err := r.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&d)
	if err == nil {
		return d.toDomain(), nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, storageErr("confirm payment", err)
	}
	return r.FindByRef(ctx, ref)
}

// Consume flips consumed_by from unset to requestID. The filter carries every
// precondition, so of two callers racing on one ref only one matches.
func (r *PaymentRepository) Consume(ctx context.Context, ref, payer, requestID string, at time.Time) (*domain.Payment, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{
		"_id":         ref,
		"payer_email": payer,
		"status":      string(domain.PaymentConfirmed),
		"consumed_by": nil,
	}
	update := bson.M{"$set": bson.M{"consumed_by": requestID, "consumed_at": at.UTC()}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var d paymentDoc
	if err := r.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&d); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrPaymentRequired
		}
		return nil, storageErr("consume payment", err)
	}
	return d.toDomain(), nil
}

func (r *PaymentRepository) Release(ctx context.Context, ref, requestID string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"_id": ref, "consumed_by": requestID}
	update := bson.M{"$unset": bson.M{"consumed_by": "", "consumed_at": ""}}
	if _, err := r.col.UpdateOne(ctx, filter, update); err != nil {
		return storageErr("release payment", err)
	}
	return nil
}

func (r *PaymentRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{Keys: bson.D{{Key: "payer_email", Value: 1}}})
	return err
}

package store

import (
	"context"
	"errors"
	"time"

	"github.com/sethvargo/go-retry"
	"github.com/shandysiswandi/cybershield/internal/account/entity"
	"github.com/shandysiswandi/cybershield/internal/pkg/goerror"
	"github.com/shandysiswandi/cybershield/internal/pkg/instrument"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

// MongoCollection is the collection credentials are kept in.
const MongoCollection = "account_credentials"

// DefaultMongoMaxRetries bounds compare-and-swap retries per Update.
const DefaultMongoMaxRetries uint64 = 10

var errVersionMismatch = errors.New("store: credential changed concurrently")

// Mongo stores one document per credential with _id set to the identifier.
// Update is an optimistic compare-and-swap on the document version.
type Mongo struct {
	coll       *mongo.Collection
	ins        instrument.Instrumentation
	maxRetries uint64
}

func NewMongo(db *mongo.Database, ins instrument.Instrumentation) *Mongo {
	return &Mongo{
		coll:       db.Collection(MongoCollection),
		ins:        ins,
		maxRetries: DefaultMongoMaxRetries,
	}
}

func (m *Mongo) find(ctx context.Context, id string) (*record, error) {
	var rec record
	err := m.coll.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, goerror.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return &rec, nil
}

func (m *Mongo) Get(ctx context.Context, id string) (_ *entity.Credential, err error) {
	ctx, span := startSpan(ctx, m.ins, "Mongo.Get")
	defer func() { endSpan(span, err) }()

	rec, err := m.find(ctx, id)
	if err != nil {
		return nil, err
	}

	return rec.credential(), nil
}

func (m *Mongo) Create(ctx context.Context, c entity.Credential) (err error) {
	ctx, span := startSpan(ctx, m.ins, "Mongo.Create")
	defer func() { endSpan(span, err) }()

	rec := toRecord(&c)
	rec.Version = 1

	_, err = m.coll.InsertOne(ctx, rec)
	if mongo.IsDuplicateKeyError(err) {
		return goerror.ErrConflict
	}

	return err
}

func (m *Mongo) Update(ctx context.Context, id string, fn func(c *entity.Credential) error) (err error) {
	ctx, span := startSpan(ctx, m.ins, "Mongo.Update")
	defer func() { endSpan(span, err) }()

	b := retry.WithMaxRetries(m.maxRetries, retry.WithJitterPercent(20, retry.NewExponential(5*time.Millisecond)))

	err = retry.Do(ctx, b, func(ctx context.Context) error {
		rec, err := m.find(ctx, id)
		if err != nil {
			return err
		}

		c := rec.credential()
		if err := fn(c); err != nil {
			return &mutateError{err: err}
		}
		c.Identifier = id

		next := toRecord(c)
		next.Version = rec.Version + 1

		res, err := m.coll.ReplaceOne(ctx, bson.D{
			{Key: "_id", Value: id},
			{Key: "version", Value: rec.Version},
		}, next)
		if err != nil {
			return err
		}
		if res.MatchedCount == 0 {
			return retry.RetryableError(errVersionMismatch)
		}

		return nil
	})

	return unwrapMutate(err)
}

// Close implements io.Closer. The client is owned by the caller.
func (m *Mongo) Close() error { return nil }

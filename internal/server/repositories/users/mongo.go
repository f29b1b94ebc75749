package users

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/profilekeeper/internal/common"
	"github.com/dmitrijs2005/profilekeeper/internal/server/models"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// Collection is the subset of *mongo.Collection used by MongoRepository.
type Collection interface {
	FindOne(ctx context.Context, filter any, opts ...options.Lister[options.FindOneOptions]) *mongo.SingleResult
	InsertOne(ctx context.Context, document any, opts ...options.Lister[options.InsertOneOptions]) (*mongo.InsertOneResult, error)
	ReplaceOne(ctx context.Context, filter any, replacement any, opts ...options.Lister[options.ReplaceOptions]) (*mongo.UpdateResult, error)
	FindOneAndUpdate(ctx context.Context, filter any, update any, opts ...options.Lister[options.FindOneAndUpdateOptions]) *mongo.SingleResult
}

var publicProjection = bson.M{"password": 0, "refreshToken": 0}

// MongoRepository stores one document per user; uniqueness relies on the
// indexes created by EnsureIndexes.
type MongoRepository struct {
	coll Collection
	now  func() time.Time
}

func NewMongoRepository(coll Collection) *MongoRepository {
	return &MongoRepository{coll: coll, now: time.Now}
}

// EnsureIndexes creates the unique username and email indexes.
func EnsureIndexes(ctx context.Context, coll *mongo.Collection) error {
	_, err := coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
	})
	if err != nil {
		return fmt.Errorf("mongo create indexes: %w", err)
	}
	return nil
}

func mongoErr(err error) error {
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return common.ErrorNotFound
	case mongo.IsDuplicateKeyError(err):
		return common.ErrorAlreadyExists
	default:
		return fmt.Errorf("mongo error: %w", err)
	}
}

func (r *MongoRepository) decodeOne(res *mongo.SingleResult) (*models.User, error) {
	u := &models.User{}
	if err := res.Decode(u); err != nil {
		return nil, mongoErr(err)
	}
	return u, nil
}

func (r *MongoRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	return r.decodeOne(r.coll.FindOne(ctx, bson.M{"_id": id}))
}

func (r *MongoRepository) FindPublicByID(ctx context.Context, id string) (*models.User, error) {
	return r.decodeOne(r.coll.FindOne(ctx, bson.M{"_id": id}, options.FindOne().SetProjection(publicProjection)))
}

func (r *MongoRepository) FindOne(ctx context.Context, username, email string) (*models.User, error) {
	var or bson.A
	if username != "" {
		or = append(or, bson.M{"username": username})
	}
	if email != "" {
		or = append(or, bson.M{"email": email})
	}
	if len(or) == 0 {
		return nil, common.ErrorNotFound
	}
	return r.decodeOne(r.coll.FindOne(ctx, bson.M{"$or": or}))
}

func (r *MongoRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	now := r.now().UTC().Truncate(time.Millisecond)

	doc := *user
	doc.ID = uuid.NewString()
	doc.CreatedAt = now
	doc.UpdatedAt = now

	if _, err := r.coll.InsertOne(ctx, &doc); err != nil {
		return nil, mongoErr(err)
	}

	*user = doc
	return user, nil
}

func (r *MongoRepository) Save(ctx context.Context, user *models.User) error {
	user.UpdatedAt = r.now().UTC().Truncate(time.Millisecond)

	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": user.ID}, user)
	if err != nil {
		return mongoErr(err)
	}
	if res.MatchedCount == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *MongoRepository) UpdateRefreshToken(ctx context.Context, id, token string) (*models.User, error) {
	now := r.now().UTC().Truncate(time.Millisecond)

	update := bson.M{"$set": bson.M{"refreshToken": token, "updatedAt": now}}
	if token == "" {
		update = bson.M{"$unset": bson.M{"refreshToken": 1}, "$set": bson.M{"updatedAt": now}}
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	return r.decodeOne(r.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts))
}

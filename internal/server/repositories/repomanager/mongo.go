package repomanager

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/profilekeeper/internal/server/repositories/users"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

const usersCollection = "users"

// MongoRepositoryManager keeps users in a single collection; its
// "migration" is the creation of the unique indexes.
type MongoRepositoryManager struct {
	client *mongo.Client
	coll   *mongo.Collection
	users  users.Repository
}

var ensureIndexes = users.EnsureIndexes

func NewMongoRepositoryManager(ctx context.Context, uri, database string) (*MongoRepositoryManager, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	coll := client.Database(database).Collection(usersCollection)
	return &MongoRepositoryManager{
		client: client,
		coll:   coll,
		users:  users.NewPasswordHashingRepository(users.NewMongoRepository(coll)),
	}, nil
}

func (m *MongoRepositoryManager) Users() users.Repository {
	return m.users
}

func (m *MongoRepositoryManager) RunMigrations(ctx context.Context) error {
	return ensureIndexes(ctx, m.coll)
}

func (m *MongoRepositoryManager) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

package repomanager

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/profilekeeper/internal/server/config"
)

// New opens the backend selected by cfg.StorageBackend.
func New(ctx context.Context, cfg *config.Config) (RepositoryManager, error) {
	switch cfg.StorageBackend {
	case config.StorageBackendPostgres:
		m, err := NewPostgresRepositoryManager(ctx, cfg.DatabaseDSN)
		if err != nil {
			return nil, err
		}
		return m, nil
	case config.StorageBackendMongo:
		m, err := NewMongoRepositoryManager(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, err
		}
		return m, nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}

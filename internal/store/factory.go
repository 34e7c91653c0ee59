package store

import (
	"context"
	"fmt"

	"productinventory/internal/config"
	"productinventory/internal/infra/store/dynamodb"
	"productinventory/internal/infra/store/memory"
	"productinventory/internal/infra/store/postgres"
	"productinventory/internal/infra/store/s3"
	"productinventory/internal/infra/store/sqlite"
)

// Open selects a Store implementation from cfg.Driver.
//
//	memory:   process-local map, lost on exit
//	dynamodb: cfg.Table in cfg.Region (optional cfg.Endpoint, cfg.PageSize)
//	s3:       one JSON object per item under cfg.Bucket/cfg.Prefix
//	sqlite:   cfg.SQLitePath (default product-inventory.db)
//	postgres: cfg.PostgresDSN
func Open(ctx context.Context, cfg config.StoreConfig) (Store, error) {
	driver := Driver(cfg.Driver)
	if driver == "" {
		driver = DriverDynamoDB
	}
	switch driver {
	case DriverMemory:
		return memory.New(), nil
	case DriverDynamoDB:
		return dynamodb.New(ctx, dynamodb.Config{
			Region:   cfg.Region,
			Table:    cfg.Table,
			Endpoint: cfg.Endpoint,
			PageSize: cfg.PageSize,
		})
	case DriverS3:
		return s3.New(ctx, s3.Config{
			Region:    cfg.Region,
			Bucket:    cfg.Bucket,
			Prefix:    cfg.Prefix,
			Endpoint:  cfg.Endpoint,
			PathStyle: cfg.PathStyle,
		})
	case DriverSQLite:
		return sqlite.NewStore(ctx, cfg.SQLitePath)
	case DriverPostgres:
		return postgres.NewStore(ctx, cfg.PostgresDSN)
	default:
		return nil, fmt.Errorf("unknown store driver %s", cfg.Driver)
	}
}

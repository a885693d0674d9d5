package redis

import (
	"context"
	"errors"

	"github.com/Coder-RL/docs-mcp-server/internal/db"
)

// CreateIndex runs FT.CREATE for def.
func (s *Store) CreateIndex(ctx context.Context, def *db.IndexDefinition) error {
	args, err := def.Args()
	if err != nil {
		return err
	}
	return s.ft(ctx, db.OpCreateIndex, args...)
}

// DropIndex runs FT.DROPINDEX. Indexed hashes are left in place.
func (s *Store) DropIndex(ctx context.Context, name string) error {
	return s.ft(ctx, db.OpDropIndex, name)
}

// IndexExists probes the index with FT.INFO.
func (s *Store) IndexExists(ctx context.Context, name string) (bool, error) {
	err := s.ft(ctx, db.OpIndexInfo, name)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, db.ErrIndexNotFound):
		return false, nil
	default:
		return false, err
	}
}

// ft runs the index command named by op and maps the server's
// "already exists" and "unknown index" replies to sentinel errors.
func (s *Store) ft(ctx context.Context, op string, args ...string) error {
	err := s.do(ctx, s.b().Arbitrary(op).Args(args...).Build()).Error()
	switch {
	case err == nil:
		return nil
	case isRedisErr(err, "index already exists"):
		return db.ErrIndexExists
	case isRedisErr(err, "unknown index name"), isRedisErr(err, "no such index"):
		return db.ErrIndexNotFound
	default:
		return &db.Error{Op: op, Err: err}
	}
}

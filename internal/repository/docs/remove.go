package docs

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Coder-RL/docs-mcp-server/internal/db"
	"github.com/Coder-RL/docs-mcp-server/internal/domain"
)

// removeBatch is how many passage keys are looked up and deleted per round.
const removeBatch = 500

// RemoveVersion deletes every passage of library@version and forgets the
// version. It returns the number of passages deleted. Removing a version
// that was never recorded fails with *domain.VersionNotFoundError.
func (r *Repo) RemoveVersion(ctx context.Context, library, version string) (int, error) {
	library = domain.NormalizeLibrary(library)
	if library == "" {
		return 0, domain.ErrLibraryRequired
	}

	known, err := r.store.HGetAll(ctx, r.versionsKey(library))
	if err != nil {
		return 0, fmt.Errorf("load versions %s: %w", library, err)
	}
	field := encodeVersion(version)
	if _, ok := known[field]; !ok {
		versions, _, err := r.loadVersions(ctx, library)
		if err != nil {
			return 0, err
		}
		return 0, domain.NewVersionNotFound(library, version, toLibraryVersions(versions))
	}

	query := &db.FilterQuery{
		IndexName: r.indexName(),
		Tags: []db.TagFilter{
			{Field: fieldLibrary, Value: library},
			{Field: fieldVersion, Value: field},
		},
		Limit: removeBatch,
	}

	// Deleted hashes leave the index immediately, so every round reads
	// from offset 0. A round that deletes nothing ends the loop.
	removed := 0
	for {
		if err := ctx.Err(); err != nil {
			return removed, fmt.Errorf("remove %s@%s: %w", library, version, err)
		}

		res, err := r.store.SearchKeys(ctx, query)
		if err != nil {
			return removed, fmt.Errorf("find passages %s@%s: %w", library, version, err)
		}
		if len(res.Entries) == 0 {
			break
		}

		keys := make([]string, len(res.Entries))
		for i, e := range res.Entries {
			keys[i] = e.Key
		}
		n, err := r.store.Del(ctx, keys...)
		removed += n
		if err != nil {
			return removed, fmt.Errorf("delete passages %s@%s: %w", library, version, err)
		}
		if n == 0 {
			break
		}
	}

	if err := r.store.HDel(ctx, r.versionsKey(library), field); err != nil {
		return removed, fmt.Errorf("forget version %s@%s: %w", library, version, err)
	}

	r.logger.Info("Removed documentation version",
		zap.String("library", library),
		zap.String("version", version),
		zap.Int("passages", removed),
	)
	return removed, nil
}

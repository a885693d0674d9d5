package search

import (
	"context"

	"github.com/Coder-RL/docs-mcp-server/internal/domain/search/result"
)

// DocumentStore resolves versions and searches indexed documentation.
//
// ResolveVersion returns matched=false when nothing satisfies the specifier but
// unversioned docs can serve the request. It returns *domain.VersionNotFoundError
// when the library cannot serve the request at all.
type DocumentStore interface {
	ResolveVersion(ctx context.Context, library, spec string) (version string, matched bool, err error)
	Search(ctx context.Context, library, version, query string, limit int) ([]result.Result, error)
}

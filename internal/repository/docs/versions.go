package docs

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/Coder-RL/docs-mcp-server/internal/domain"
)

// knownVersion is one entry of a library's versions hash.
type knownVersion struct {
	raw     string
	indexed bool
	semver  *semver.Version // nil for non-semver labels such as "main"
}

// loadVersions reads the versions hash; the unversioned entry is reported separately.
func (r *Repo) loadVersions(ctx context.Context, library string) ([]knownVersion, bool, error) {
	m, err := r.store.HGetAll(ctx, r.versionsKey(library))
	if err != nil {
		return nil, false, fmt.Errorf("load versions %s: %w", library, err)
	}

	var unversioned bool
	versions := make([]knownVersion, 0, len(m))
	for raw, flag := range m {
		if raw == unversionedToken {
			unversioned = flag == versionIndexed
			continue
		}
		kv := knownVersion{raw: raw, indexed: flag == versionIndexed}
		if v, err := semver.NewVersion(raw); err == nil {
			kv.semver = v
		}
		versions = append(versions, kv)
	}

	sortNewestFirst(versions)
	return versions, unversioned, nil
}

// sortNewestFirst orders semver versions descending, then other labels alphabetically.
func sortNewestFirst(versions []knownVersion) {
	sort.SliceStable(versions, func(i, j int) bool {
		a, b := versions[i], versions[j]
		switch {
		case a.semver != nil && b.semver != nil:
			if c := a.semver.Compare(b.semver); c != 0 {
				return c > 0
			}
			return a.raw < b.raw
		case a.semver != nil:
			return true
		case b.semver != nil:
			return false
		default:
			return a.raw < b.raw
		}
	})
}

func toLibraryVersions(versions []knownVersion) []domain.LibraryVersion {
	out := make([]domain.LibraryVersion, len(versions))
	for i, v := range versions {
		out[i] = domain.LibraryVersion{Version: v.raw, Indexed: v.indexed}
	}
	return out
}

// ListVersions returns the known versions of a library, newest first.
// Unversioned documentation is not listed.
func (r *Repo) ListVersions(ctx context.Context, library string) ([]domain.LibraryVersion, error) {
	library = domain.NormalizeLibrary(library)
	if library == "" {
		return nil, domain.ErrLibraryRequired
	}

	versions, _, err := r.loadVersions(ctx, library)
	if err != nil {
		return nil, err
	}
	return toLibraryVersions(versions), nil
}

// ResolveVersion picks the indexed version that best satisfies spec.
//
//   - "" or "latest": the highest indexed semver release, prereleases only if nothing else
//   - an exact known label: that label
//   - a full semver version: the highest indexed release not above it
//   - a range ("2.x", "~1.2", "^3", ">=1.0 <2.0"): the highest satisfying version
//
// When nothing matches but unversioned documentation exists it returns
// ("", false, nil) so the caller can fall back to it. Otherwise it fails with
// *domain.VersionNotFoundError listing the known versions.
func (r *Repo) ResolveVersion(
	ctx context.Context, library, spec string,
) (string, bool, error) {
	library = domain.NormalizeLibrary(library)
	if library == "" {
		return "", false, domain.ErrLibraryRequired
	}

	versions, unversioned, err := r.loadVersions(ctx, library)
	if err != nil {
		return "", false, err
	}
	if len(versions) == 0 && !unversioned {
		return "", false, domain.NewVersionNotFound(library, spec, nil)
	}

	if best, ok := bestMatch(versions, strings.TrimSpace(spec)); ok {
		return best, true, nil
	}
	if unversioned {
		return domain.Unversioned, false, nil
	}
	return "", false, domain.NewVersionNotFound(library, spec, toLibraryVersions(versions))
}

// bestMatch expects versions sorted newest first.
func bestMatch(versions []knownVersion, spec string) (string, bool) {
	if spec == "" || strings.EqualFold(spec, domain.LatestVersion) {
		if best, ok := firstIndexed(versions, func(v *semver.Version) bool { return v.Prerelease() == "" }); ok {
			return best, true
		}
		return firstIndexed(versions, func(*semver.Version) bool { return true })
	}

	for _, v := range versions {
		if v.indexed && v.raw == spec {
			return v.raw, true
		}
	}

	if target, err := semver.StrictNewVersion(spec); err == nil {
		allowPre := target.Prerelease() != ""
		return firstIndexed(versions, func(v *semver.Version) bool {
			return !v.GreaterThan(target) && (allowPre || v.Prerelease() == "")
		})
	}

	if c, err := semver.NewConstraint(spec); err == nil {
		return firstIndexed(versions, c.Check)
	}

	return "", false
}

func firstIndexed(versions []knownVersion, accept func(*semver.Version) bool) (string, bool) {
	for _, v := range versions {
		if v.indexed && v.semver != nil && accept(v.semver) {
			return v.raw, true
		}
	}
	return "", false
}

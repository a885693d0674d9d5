package docs

import (
	"context"
	"errors"
	"testing"

	"github.com/Coder-RL/docs-mcp-server/internal/domain"
)

func fooVersions() map[string]string {
	return map[string]string{
		"1.0.0":        versionIndexed,
		"1.2.5":        versionIndexed,
		"1.3.0":        versionIndexed,
		"2.1.0":        versionIndexed,
		"2.3.1":        versionIndexed,
		"3.1.0":        versionIndexed,
		"4.0.0-beta.1": versionIndexed,
		"5.0.0":        versionNotIndexed,
		"main":         versionIndexed,
	}
}

func TestResolveVersion(t *testing.T) {
	tests := []struct {
		spec string
		want string
	}{
		{"", "3.1.0"},
		{"latest", "3.1.0"},
		{"LATEST", "3.1.0"},
		{"2.x", "2.3.1"},
		{"~1.2", "1.2.5"},
		{"^1", "1.3.0"},
		{"^3", "3.1.0"},
		{"2.2.0", "2.1.0"},
		{"2.3.1", "2.3.1"},
		{"9.9.9", "3.1.0"},
		{">=1.0.0 <2.0.0", "1.3.0"},
		{"main", "main"},
		{"4.0.0-beta.1", "4.0.0-beta.1"},
	}

	for _, tc := range tests {
		t.Run(tc.spec, func(t *testing.T) {
			repo, ms, _ := newTestRepo(t)
			withVersions(ms, fooVersions())

			got, matched, err := repo.ResolveVersion(context.Background(), "foo", tc.spec)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !matched {
				t.Fatal("expected a match")
			}
			if got != tc.want {
				t.Errorf("ResolveVersion(%q) = %q, want %q", tc.spec, got, tc.want)
			}
		})
	}
}

func TestResolveVersion_SkipsNotIndexed(t *testing.T) {
	repo, ms, _ := newTestRepo(t)
	withVersions(ms, map[string]string{"5.0.0": versionNotIndexed, "1.0.0": versionIndexed})

	got, _, err := repo.ResolveVersion(context.Background(), "foo", "5.x")
	var vnf *domain.VersionNotFoundError
	if !errors.As(err, &vnf) {
		t.Fatalf("expected VersionNotFoundError, got %q, %v", got, err)
	}
}

func TestResolveVersion_PrereleaseOnlyLatest(t *testing.T) {
	repo, ms, _ := newTestRepo(t)
	withVersions(ms, map[string]string{"1.0.0-rc.1": versionIndexed, "1.0.0-rc.2": versionIndexed})

	got, matched, err := repo.ResolveVersion(context.Background(), "foo", "latest")
	if err != nil || !matched {
		t.Fatalf("unexpected result: %q %v %v", got, matched, err)
	}
	if got != "1.0.0-rc.2" {
		t.Errorf("got %q, want 1.0.0-rc.2", got)
	}
}

func TestResolveVersion_FallsBackToUnversioned(t *testing.T) {
	repo, ms, _ := newTestRepo(t)
	withVersions(ms, map[string]string{
		"2.0.0":          versionIndexed,
		unversionedToken: versionIndexed,
	})

	for _, spec := range []string{"1.0.0", "7.x", "not-a-version"} {
		got, matched, err := repo.ResolveVersion(context.Background(), "foo", spec)
		if err != nil {
			t.Fatalf("spec %q: unexpected error: %v", spec, err)
		}
		if matched || got != domain.Unversioned {
			t.Errorf("spec %q: got (%q, %v), want unversioned fallback", spec, got, matched)
		}
	}
}

func TestResolveVersion_UnparsableSpecIsNotFound(t *testing.T) {
	repo, ms, _ := newTestRepo(t)
	withVersions(ms, map[string]string{"2.0.0": versionIndexed})

	_, _, err := repo.ResolveVersion(context.Background(), "foo", "not-a-version")
	var vnf *domain.VersionNotFoundError
	if !errors.As(err, &vnf) {
		t.Fatalf("err = %v, want *VersionNotFoundError", err)
	}
	if vnf.RequestedVersion != "not-a-version" || len(vnf.AvailableVersions) != 1 {
		t.Errorf("err = %+v", vnf)
	}
}

func TestResolveVersion_OnlyUnversioned(t *testing.T) {
	repo, ms, _ := newTestRepo(t)
	withVersions(ms, map[string]string{unversionedToken: versionIndexed})

	got, matched, err := repo.ResolveVersion(context.Background(), "foo", "latest")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if matched || got != "" {
		t.Errorf("got (%q, %v), want (\"\", false)", got, matched)
	}
}

func TestResolveVersion_NotFound(t *testing.T) {
	repo, ms, _ := newTestRepo(t)
	withVersions(ms, map[string]string{"1.0.0": versionIndexed, "0.9.0": versionNotIndexed})

	_, _, err := repo.ResolveVersion(context.Background(), "bar", "0.1.0")
	if !errors.Is(err, domain.ErrVersionNotFound) {
		t.Fatalf("expected ErrVersionNotFound, got %v", err)
	}

	var vnf *domain.VersionNotFoundError
	if !errors.As(err, &vnf) {
		t.Fatalf("expected *VersionNotFoundError, got %T", err)
	}
	want := []domain.LibraryVersion{{Version: "1.0.0", Indexed: true}, {Version: "0.9.0", Indexed: false}}
	if len(vnf.AvailableVersions) != len(want) {
		t.Fatalf("available = %v, want %v", vnf.AvailableVersions, want)
	}
	for i := range want {
		if vnf.AvailableVersions[i] != want[i] {
			t.Errorf("available[%d] = %v, want %v", i, vnf.AvailableVersions[i], want[i])
		}
	}
	if vnf.Library != "bar" || vnf.RequestedVersion != "0.1.0" {
		t.Errorf("unexpected error fields: %+v", vnf)
	}
}

func TestResolveVersion_UnknownLibrary(t *testing.T) {
	repo, _, _ := newTestRepo(t)

	_, _, err := repo.ResolveVersion(context.Background(), "nope", "latest")
	var vnf *domain.VersionNotFoundError
	if !errors.As(err, &vnf) {
		t.Fatalf("expected *VersionNotFoundError, got %v", err)
	}
	if len(vnf.AvailableVersions) != 0 {
		t.Errorf("expected no available versions, got %v", vnf.AvailableVersions)
	}
}

func TestResolveVersion_EmptyLibrary(t *testing.T) {
	repo, _, _ := newTestRepo(t)
	if _, _, err := repo.ResolveVersion(context.Background(), "  ", "latest"); !errors.Is(err, domain.ErrLibraryRequired) {
		t.Fatalf("expected ErrLibraryRequired, got %v", err)
	}
}

func TestResolveVersion_StoreError(t *testing.T) {
	repo, ms, _ := newTestRepo(t)
	ms.hgetAllFn = func(_ context.Context, _ string) (map[string]string, error) {
		return nil, errors.New("connection reset")
	}

	_, _, err := repo.ResolveVersion(context.Background(), "foo", "latest")
	if err == nil || errors.Is(err, domain.ErrVersionNotFound) {
		t.Fatalf("expected storage error, got %v", err)
	}
}

func TestListVersions_Order(t *testing.T) {
	repo, ms, _ := newTestRepo(t)
	var gotKey string
	ms.hgetAllFn = func(_ context.Context, key string) (map[string]string, error) {
		gotKey = key
		return map[string]string{
			"1.0.0":          versionIndexed,
			"10.0.0":         versionNotIndexed,
			"2.0.0":          versionIndexed,
			"2.0.0-rc.1":     versionIndexed,
			"main":           versionIndexed,
			"canary":         versionIndexed,
			unversionedToken: versionIndexed,
		}, nil
	}

	got, err := repo.ListVersions(context.Background(), "React")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotKey != "docs:lib:react:versions" {
		t.Errorf("unexpected versions key %q", gotKey)
	}

	want := []string{"10.0.0", "2.0.0", "2.0.0-rc.1", "1.0.0", "canary", "main"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i].Version != want[i] {
			t.Errorf("position %d: got %q, want %q", i, got[i].Version, want[i])
		}
	}
	if got[0].Indexed {
		t.Error("10.0.0 should be reported as not indexed")
	}
}

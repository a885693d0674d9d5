package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrLibraryRequired signals a search request without a library name.
	ErrLibraryRequired = errors.New("library is required")
	// ErrVersionNotFound signals that no indexed version can serve a request.
	ErrVersionNotFound = errors.New("version not found")
	// ErrProviderConfiguration signals an unknown or misconfigured embedding provider.
	ErrProviderConfiguration = errors.New("embedding provider configuration error")
	// ErrDegenerateVector signals a vector that cannot be normalized.
	ErrDegenerateVector = errors.New("degenerate vector")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrDimensionMismatch signals a provider returning vectors of an unexpected size.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")
)

// VersionNotFoundError carries the requested version and what is available instead.
type VersionNotFoundError struct {
	Library           string
	RequestedVersion  string
	AvailableVersions []LibraryVersion
}

func (e *VersionNotFoundError) Error() string {
	requested := e.RequestedVersion
	if requested == "" {
		requested = LatestVersion
	}
	if len(e.AvailableVersions) == 0 {
		return fmt.Sprintf("%s: %s@%s (library has no indexed versions)",
			ErrVersionNotFound.Error(), e.Library, requested)
	}
	names := make([]string, 0, len(e.AvailableVersions))
	for _, v := range e.AvailableVersions {
		names = append(names, v.Version)
	}
	return fmt.Sprintf("%s: %s@%s (available: %s)",
		ErrVersionNotFound.Error(), e.Library, requested, strings.Join(names, ", "))
}

func (e *VersionNotFoundError) Unwrap() error { return ErrVersionNotFound }

// NewVersionNotFound creates a version-not-found error. The available list is copied.
func NewVersionNotFound(library, requested string, available []LibraryVersion) error {
	versions := make([]LibraryVersion, len(available))
	copy(versions, available)
	return &VersionNotFoundError{
		Library:           library,
		RequestedVersion:  requested,
		AvailableVersions: versions,
	}
}

// ProviderConfigurationError describes why an embedding provider could not be built.
type ProviderConfigurationError struct {
	Provider string
	Reason   string
}

func (e *ProviderConfigurationError) Error() string {
	return fmt.Sprintf("%s: %q: %s", ErrProviderConfiguration.Error(), e.Provider, e.Reason)
}

func (e *ProviderConfigurationError) Unwrap() error { return ErrProviderConfiguration }

// NewProviderConfiguration creates a provider configuration error.
func NewProviderConfiguration(provider, reason string) error {
	return &ProviderConfigurationError{Provider: provider, Reason: reason}
}

// DegenerateVectorError is returned when a raw vector has a zero or non-finite norm.
type DegenerateVectorError struct {
	Dimensions int
	Norm       float64
}

func (e *DegenerateVectorError) Error() string {
	return fmt.Sprintf("%s: norm %v over %d dimensions", ErrDegenerateVector.Error(), e.Norm, e.Dimensions)
}

func (e *DegenerateVectorError) Unwrap() error { return ErrDegenerateVector }

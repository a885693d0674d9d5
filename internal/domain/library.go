package domain

import "strings"

// LatestVersion is the version specifier that asks for the newest indexed version.
const LatestVersion = "latest"

// Unversioned denotes documentation indexed without a version.
const Unversioned = ""

// KeyPrefix namespaces every key written by the service.
const KeyPrefix = "docs:"

// NormalizeLibrary is the canonical form of a library name: trimmed and
// lowercased. Stores and transports both report names in this form.
func NormalizeLibrary(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// LibraryVersion is a known version of a library and whether it has indexed documents.
type LibraryVersion struct {
	Version string `json:"version"`
	Indexed bool   `json:"indexed"`
}

// Passage is a chunk of documentation ready to be embedded and stored.
type Passage struct {
	ID      string
	Content string
	URL     string
	Title   string
}

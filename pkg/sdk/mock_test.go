package sdk

import (
	"context"

	"github.com/Coder-RL/docs-mcp-server/internal/domain"
	healthuc "github.com/Coder-RL/docs-mcp-server/internal/usecase/health"
	searchuc "github.com/Coder-RL/docs-mcp-server/internal/usecase/search"
)

// --- searchUseCase mock ---

type mockSearchUC struct {
	searchFn func(ctx context.Context, req searchuc.Request) (searchuc.Outcome, error)
	lastReq  searchuc.Request
}

func (m *mockSearchUC) Search(ctx context.Context, req searchuc.Request) (searchuc.Outcome, error) {
	m.lastReq = req
	return m.searchFn(ctx, req)
}

// --- libraryStore mock ---

type mockLibrary struct {
	addFn      func(ctx context.Context, library, version string, passages []domain.Passage) error
	registerFn func(ctx context.Context, library, version string) error
	listFn     func(ctx context.Context, library string) ([]domain.LibraryVersion, error)
	removeFn   func(ctx context.Context, library, version string) (int, error)
	addCalled  bool
}

func (m *mockLibrary) AddDocuments(ctx context.Context, library, version string, passages []domain.Passage) error {
	m.addCalled = true
	return m.addFn(ctx, library, version, passages)
}

func (m *mockLibrary) RegisterVersion(ctx context.Context, library, version string) error {
	return m.registerFn(ctx, library, version)
}

func (m *mockLibrary) ListVersions(ctx context.Context, library string) ([]domain.LibraryVersion, error) {
	return m.listFn(ctx, library)
}

func (m *mockLibrary) RemoveVersion(ctx context.Context, library, version string) (int, error) {
	return m.removeFn(ctx, library, version)
}

// --- connection mock ---

type mockConn struct {
	pingErr error
	closed  bool
}

func (m *mockConn) Ping(context.Context) error { return m.pingErr }

func (m *mockConn) Close() { m.closed = true }

// --- healthUseCase mock ---

type mockHealthUC struct {
	report healthuc.Report
}

func (m *mockHealthUC) Check(context.Context) healthuc.Report { return m.report }

// --- Embedder mock ---

type mockEmbedder struct {
	fn   func(ctx context.Context, text string) (EmbeddingResult, error)
	dims int
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) (EmbeddingResult, error) {
	return m.fn(ctx, text)
}

func (m *mockEmbedder) Dimensions() int { return m.dims }

type mockBatchEmbedder struct {
	mockEmbedder
	batchFn func(ctx context.Context, texts []string) (BatchEmbeddingResult, error)
}

func (m *mockBatchEmbedder) EmbedBatch(ctx context.Context, texts []string) (BatchEmbeddingResult, error) {
	return m.batchFn(ctx, texts)
}

// --- helpers ---

func testClient(searchSvc searchUseCase, library libraryStore) *Client {
	return &Client{
		conn:      &mockConn{},
		searchSvc: searchSvc,
		library:   library,
		healthSvc: &mockHealthUC{},
	}
}

// Package sdk embeds the documentation search service in a Go program.
//
// The client wires the same components as the docs-mcp-server binary:
// a Redis-backed passage store, the configured embedding provider with its
// optional cache, and the version-resolving search.
//
//	client, err := sdk.New(ctx,
//	    sdk.WithRedis("localhost:6379"),
//	    sdk.WithEmbeddingModel("ollama:nomic-embed-text"),
//	    sdk.WithDimensions(768),
//	)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	_ = client.AddDocuments(ctx, "react", "18.2.0", passages)
//	resp, _ := client.Search(ctx, sdk.SearchParams{
//	    Library: "react",
//	    Version: "18.x",
//	    Query:   "useEffect cleanup",
//	})
//
// A search for a version that cannot be served is not an error: the
// response carries a VersionError listing the versions the library has.
package sdk

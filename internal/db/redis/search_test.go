package redis

import (
	"context"
	"math"
	"testing"

	"github.com/redis/rueidis"
	"github.com/redis/rueidis/mock"
	"go.uber.org/mock/gomock"

	"github.com/Coder-RL/docs-mcp-server/internal/db"
)

var reactTags = []db.TagFilter{
	{Field: "library", Value: "react"},
	{Field: "version", Value: "18.2.0"},
}

func TestSearchKNN(t *testing.T) {
	c := mock.NewClient(gomock.NewController(t))
	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return len(cmd) == 18 &&
				cmd[0] == "FT.SEARCH" && cmd[1] == "docs:idx" &&
				cmd[2] == `(@library:{react} @version:{18\.2\.0})=>[KNN 3 @vector $BLOB AS __vector_score]` &&
				cmd[3] == "RETURN" && cmd[4] == "2" && cmd[5] == "__vector_score" && cmd[6] == "content" &&
				cmd[7] == "SORTBY" && cmd[10] == "0" && cmd[11] == "3" &&
				cmd[14] == "BLOB" && len(cmd[15]) == 8
		})).
		Return(mock.Result(mock.RedisArray(
			mock.RedisInt64(2),
			mock.RedisString("docs:doc:react:18.2.0:a"),
			mock.RedisArray(
				mock.RedisString("__vector_score"), mock.RedisString("0.25"),
				mock.RedisString("content"), mock.RedisString("useState"),
			),
			mock.RedisString("docs:doc:react:18.2.0:b"),
			mock.RedisArray(
				mock.RedisString("__vector_score"), mock.RedisString("1.5"),
				mock.RedisString("content"), mock.RedisString("class components"),
			),
		)))

	res, err := NewStoreForTest(c).SearchKNN(context.Background(), &db.KNNQuery{
		IndexName:    "docs:idx",
		Tags:         reactTags,
		Vector:       []float32{0.1, 0.2},
		K:            3,
		ReturnFields: []string{"content"},
	})
	if err != nil {
		t.Fatalf("SearchKNN() error = %v", err)
	}
	if res.Total != 2 || len(res.Entries) != 2 {
		t.Fatalf("SearchKNN() = %+v", res)
	}

	first := res.Entries[0]
	if first.Key != "docs:doc:react:18.2.0:a" || first.Fields["content"] != "useState" {
		t.Errorf("first = %+v", first)
	}
	if math.Abs(first.Score-0.75) > 1e-9 {
		t.Errorf("score = %v, want 0.75", first.Score)
	}
	if _, ok := first.Fields["__vector_score"]; ok {
		t.Error("distance column should not leak into fields")
	}
	if res.Entries[1].Score != 0 {
		t.Errorf("distance beyond 1 should clamp to 0, got %v", res.Entries[1].Score)
	}
}

func TestSearchKNN_NoTagsSearchesAll(t *testing.T) {
	c := mock.NewClient(gomock.NewController(t))
	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[2] == "*=>[KNN 5 @vector $BLOB AS __vector_score]" && cmd[3] == "SORTBY"
		})).
		Return(mock.Result(mock.RedisArray(mock.RedisInt64(0))))

	res, err := NewStoreForTest(c).SearchKNN(context.Background(), &db.KNNQuery{
		IndexName: "idx", Vector: []float32{1}, K: 5,
	})
	if err != nil {
		t.Fatalf("SearchKNN() error = %v", err)
	}
	if res.Total != 0 || len(res.Entries) != 0 {
		t.Errorf("SearchKNN() = %+v", res)
	}
}

func TestSearchKNN_Error(t *testing.T) {
	c := mock.NewClient(gomock.NewController(t))
	c.EXPECT().Do(gomock.Any(), gomock.Any()).Return(mock.ErrorResult(context.DeadlineExceeded))

	_, err := NewStoreForTest(c).SearchKNN(context.Background(), &db.KNNQuery{
		IndexName: "idx", Vector: []float32{1}, K: 1,
	})
	if !isDBError(err) {
		t.Fatalf("SearchKNN() error = %v, want db.Error", err)
	}
}

func TestSearchKeys(t *testing.T) {
	c := mock.NewClient(gomock.NewController(t))
	c.EXPECT().
		Do(gomock.Any(), mock.Match(
			"FT.SEARCH", "docs:idx", `@library:{react} @version:{18\.2\.0}`,
			"NOCONTENT", "LIMIT", "0", "500", "DIALECT", "2",
		)).
		Return(mock.Result(mock.RedisArray(
			mock.RedisInt64(2),
			mock.RedisString("docs:doc:react:18.2.0:a"),
			mock.RedisString("docs:doc:react:18.2.0:b"),
		)))

	res, err := NewStoreForTest(c).SearchKeys(context.Background(), &db.FilterQuery{
		IndexName: "docs:idx", Tags: reactTags, Offset: -1, Limit: 500,
	})
	if err != nil {
		t.Fatalf("SearchKeys() error = %v", err)
	}
	if res.Total != 2 || len(res.Entries) != 2 || res.Entries[1].Key != "docs:doc:react:18.2.0:b" {
		t.Fatalf("SearchKeys() = %+v", res)
	}
	if res.Entries[0].Fields != nil {
		t.Errorf("NOCONTENT entries carry no fields, got %v", res.Entries[0].Fields)
	}
}

func TestSearchKeys_NoTagsMatchesAll(t *testing.T) {
	c := mock.NewClient(gomock.NewController(t))
	c.EXPECT().
		Do(gomock.Any(), mock.Match("FT.SEARCH", "idx", "*", "NOCONTENT", "LIMIT", "20", "10", "DIALECT", "2")).
		Return(mock.Result(mock.RedisArray(mock.RedisInt64(0))))

	res, err := NewStoreForTest(c).SearchKeys(context.Background(), &db.FilterQuery{IndexName: "idx", Offset: 20, Limit: 10})
	if err != nil || len(res.Entries) != 0 {
		t.Fatalf("SearchKeys() = %+v, %v", res, err)
	}
}

func TestSearch_Validation(t *testing.T) {
	s := &Store{}
	ctx := context.Background()

	knn := []*db.KNNQuery{
		{Vector: []float32{1}, K: 1},
		{IndexName: "idx", K: 1},
		{IndexName: "idx", Vector: []float32{1}},
	}
	for i, q := range knn {
		if _, err := s.SearchKNN(ctx, q); err == nil {
			t.Errorf("SearchKNN case %d: expected error", i)
		}
	}

	filters := []*db.FilterQuery{
		{Limit: 1},
		{IndexName: "idx"},
	}
	for i, q := range filters {
		if _, err := s.SearchKeys(ctx, q); err == nil {
			t.Errorf("SearchKeys case %d: expected error", i)
		}
	}
}

func TestTagExpr(t *testing.T) {
	tests := []struct {
		value string
		want  string
	}{
		{"react", "@library:{react}"},
		{"@scope/pkg", `@library:{\@scope\/pkg}`},
		{"next-js", `@library:{next\-js}`},
		{"__unversioned__", "@library:{__unversioned__}"},
		{"a b|c", `@library:{a\ b\|c}`},
		{"café", "@library:{café}"},
	}
	for _, tc := range tests {
		got := tagExpr([]db.TagFilter{{Field: "library", Value: tc.value}})
		if got != tc.want {
			t.Errorf("tagExpr(%q) = %q, want %q", tc.value, got, tc.want)
		}
	}
	if got := tagExpr(nil); got != "" {
		t.Errorf("tagExpr(nil) = %q", got)
	}
}

func TestReadSearchReply_SkipsMalformed(t *testing.T) {
	raw := []rueidis.RedisMessage{
		mock.RedisInt64(3),
		mock.RedisString("k1"),
		mock.RedisString("not an array"),
		mock.RedisString("k2"),
		mock.RedisArray(mock.RedisString("content"), mock.RedisString("x")),
	}
	res, err := readSearchReply(raw, true)
	if err != nil {
		t.Fatalf("readSearchReply() error = %v", err)
	}
	if res.Total != 3 || len(res.Entries) != 1 || res.Entries[0].Key != "k2" {
		t.Errorf("readSearchReply() = %+v", res)
	}
}

func TestFloat32Blob(t *testing.T) {
	b := float32Blob([]float32{1, -2})
	want := "\x00\x00\x80\x3f\x00\x00\x00\xc0"
	if b != want {
		t.Errorf("float32Blob() = % x, want % x", b, want)
	}
}

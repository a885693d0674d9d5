package cmd

import (
	"bufio"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Coder-RL/docs-mcp-server/internal/domain"
)

// indexOptions holds CLI flags for index.
type indexOptions struct {
	version   string
	batchSize int
	register  bool
}

func newIndexCmd(global *globalOptions) *cobra.Command {
	var opts indexOptions

	cmd := &cobra.Command{
		Use:   "index <library> [passages.jsonl]",
		Short: "Index documentation passages for a library version",
		Long: `Index documentation passages read as JSON lines, one passage per line:

  {"id": "hooks-1", "content": "...", "url": "https://...", "title": "Hooks"}

Passages without an id get one derived from their content. Use "-" or no
file to read from stdin. With --register-only the version is recorded as
known but not indexed, and no passages are read.

Examples:
  docs-mcp-server index react react-18.2.0.jsonl --version 18.2.0
  docs-mcp-server index lodash lodash.jsonl
  docs-mcp-server index react --version 19.0.0 --register-only`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.batchSize <= 0 {
				return fmt.Errorf("--batch-size must be positive, got %d", opts.batchSize)
			}
			a, err := newApp(cmd.Context(), global)
			if err != nil {
				return err
			}
			defer a.Close()

			library := args[0]
			if opts.register {
				if err := a.docs.RegisterVersion(cmd.Context(), library, opts.version); err != nil {
					return err
				}
				_, err := fmt.Fprintf(cmd.OutOrStdout(), "Registered %s@%s\n", library, displayVersion(opts.version))
				return err
			}

			in := cmd.InOrStdin()
			if len(args) == 2 && args[1] != "-" {
				f, err := os.Open(filepath.Clean(args[1]))
				if err != nil {
					return fmt.Errorf("open passages: %w", err)
				}
				defer f.Close()
				in = f
			}

			passages, err := readPassages(in)
			if err != nil {
				return err
			}

			for start := 0; start < len(passages); start += opts.batchSize {
				end := min(start+opts.batchSize, len(passages))
				if err := a.docs.AddDocuments(cmd.Context(), library, opts.version, passages[start:end]); err != nil {
					return fmt.Errorf("index passages %d-%d: %w", start, end, err)
				}
				a.logger.Debug("Indexed batch", zap.Int("from", start), zap.Int("to", end))
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Indexed %d passages for %s@%s\n",
				len(passages), library, displayVersion(opts.version))
			return err
		},
	}

	cmd.Flags().StringVar(&opts.version, "version", domain.Unversioned, "Version to index under (empty for unversioned)")
	cmd.Flags().IntVar(&opts.batchSize, "batch-size", 100, "Passages embedded and stored per batch")
	cmd.Flags().BoolVar(&opts.register, "register-only", false, "Record the version as known without indexing passages")

	return cmd
}

type passageLine struct {
	ID      string `json:"id"`
	Content string `json:"content"`
	URL     string `json:"url"`
	Title   string `json:"title"`
}

// readPassages parses JSON lines. Blank lines are skipped; a passage
// without content is an error.
func readPassages(r io.Reader) ([]domain.Passage, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	var passages []domain.Passage
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}

		var pl passageLine
		if err := json.Unmarshal([]byte(text), &pl); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if strings.TrimSpace(pl.Content) == "" {
			return nil, fmt.Errorf("line %d: content is required", line)
		}
		if pl.ID == "" {
			pl.ID = contentID(pl.Content)
		}
		passages = append(passages, domain.Passage{
			ID: pl.ID, Content: pl.Content, URL: pl.URL, Title: pl.Title,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read passages: %w", err)
	}
	return passages, nil
}

func contentID(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:8])
}

func displayVersion(v string) string {
	if v == domain.Unversioned {
		return "unversioned"
	}
	return v
}

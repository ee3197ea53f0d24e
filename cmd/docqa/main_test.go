package main_test

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/docqa"
	main "github.com/fwojciec/docqa/cmd/docqa"
	"github.com/fwojciec/docqa/fs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCLI_HelpShowsAllCommands(t *testing.T) {
	t.Parallel()

	cli := &main.CLI{}
	stdout := &bytes.Buffer{}

	parser, err := kong.New(cli,
		kong.Writers(stdout, &bytes.Buffer{}),
		kong.Exit(func(int) {}),
	)
	require.NoError(t, err)

	_, _ = parser.Parse([]string{"--help"})

	for _, cmd := range []string{"process", "ask", "search", "list", "status", "delete", "watch", "serve"} {
		assert.Contains(t, stdout.String(), cmd, "Help should mention %s command", cmd)
	}
}

func TestMain_Run_Help(t *testing.T) {
	t.Parallel()

	stdout := &bytes.Buffer{}

	err := newTestMain(nil).Run(context.Background(), []string{"--help"}, stdout, &bytes.Buffer{})

	require.NoError(t, err)
	assert.Contains(t, stdout.String(), "docqa")
}

func TestMain_Run_NoCommand(t *testing.T) {
	t.Parallel()

	err := newTestMain(nil).Run(context.Background(), nil, &bytes.Buffer{}, &bytes.Buffer{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no command specified")
}

// newTestMain returns a Main that ignores the process environment and .env
// files and embeds with feature hashing.
func newTestMain(env map[string]string) *main.Main {
	m := main.NewMain()
	m.EnvFile = ""
	m.Getenv = func(key string) string {
		if v, ok := env[key]; ok {
			return v
		}
		if key == "DOCQA_EMBEDDING_PROVIDER" {
			return "hash"
		}
		return ""
	}
	return m
}

type workspace struct {
	root string
	args []string
}

func newWorkspace(t *testing.T, backend string) *workspace {
	t.Helper()

	root := t.TempDir()
	return &workspace{
		root: root,
		args: []string{
			"--config", filepath.Join(root, "config.yaml"),
			"--docs-root", filepath.Join(root, "docs"),
			"--vector-root", filepath.Join(root, "vectorstores"),
			"--db", filepath.Join(root, "docqa.db"),
			"--backend", backend,
		},
	}
}

func (w *workspace) writePage(t *testing.T, corpus, file, title string, words int) {
	t.Helper()

	dir := filepath.Join(w.root, "docs", corpus)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	content := make([]string, words)
	for i := range content {
		content[i] = fmt.Sprintf("%s%d", strings.ToLower(title), i)
	}
	page := &docqa.Page{
		Title:     title,
		SourceURL: "https://example.com/" + strings.ToLower(title),
		Content:   strings.Join(content, " "),
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, file), []byte(fs.FormatPage(page)), 0o644))
}

func (w *workspace) run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	err := newTestMain(nil).Run(context.Background(), append(append([]string{}, w.args...), args...), stdout, stderr)
	return stdout.String(), stderr.String(), err
}

func TestMain_Run_EndToEnd(t *testing.T) {
	t.Parallel()

	for _, backend := range []string{"sqlite", "bolt"} {
		t.Run(backend, func(t *testing.T) {
			t.Parallel()

			w := newWorkspace(t, backend)
			w.writePage(t, "alpha", "one.md", "One", 50)
			w.writePage(t, "alpha", "two.md", "Two", 50)

			stdout, stderr, err := w.runEnv(t, map[string]string{
				"DOCQA_CHUNK_SIZE":    "20",
				"DOCQA_CHUNK_OVERLAP": "5",
			}, "process", "alpha")
			require.NoError(t, err, stderr)
			assert.Equal(t, "Processed \"alpha\": 2 pages, 6 chunks (hash-768)\n", stdout)

			stdout, _, err = w.run(t, "list")
			require.NoError(t, err)
			assert.Equal(t, "alpha  2 pages  ready\n", stdout)

			stdout, _, err = w.run(t, "status", "alpha")
			require.NoError(t, err)
			assert.Contains(t, stdout, "State:     ready")
			assert.Contains(t, stdout, "Chunks:    6")

			stdout, _, err = w.run(t, "search", "alpha", "two0 two1 two2", "-k", "2")
			require.NoError(t, err)
			assert.Equal(t, 2, strings.Count(stdout, "(distance "))
			assert.True(t, strings.HasPrefix(stdout, "1. Two"), stdout)

			stdout, _, err = w.run(t, "delete", "alpha", "--force")
			require.NoError(t, err)
			assert.Contains(t, stdout, "Deleted corpus \"alpha\"")

			stdout, _, err = w.run(t, "list")
			require.NoError(t, err)
			assert.Equal(t, "alpha  2 pages  unprocessed\n", stdout)
		})
	}
}

func (w *workspace) runEnv(t *testing.T, env map[string]string, args ...string) (string, string, error) {
	t.Helper()

	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	err := newTestMain(env).Run(context.Background(), append(append([]string{}, w.args...), args...), stdout, stderr)
	return stdout.String(), stderr.String(), err
}

func TestMain_Run_Errors(t *testing.T) {
	t.Parallel()

	t.Run("reports missing corpus directory", func(t *testing.T) {
		t.Parallel()

		w := newWorkspace(t, "sqlite")

		_, stderr, err := w.run(t, "process", "ghost")

		assert.Equal(t, docqa.ENODIR, docqa.ErrorCode(err))
		assert.Contains(t, stderr, "error:")
	})

	t.Run("rejects unknown backend", func(t *testing.T) {
		t.Parallel()

		w := newWorkspace(t, "faiss")

		_, stderr, err := w.run(t, "list")

		assert.Equal(t, docqa.EINVALID, docqa.ErrorCode(err))
		assert.Contains(t, stderr, "unknown index backend")
	})

	t.Run("requires API key for ask", func(t *testing.T) {
		t.Parallel()

		w := newWorkspace(t, "sqlite")
		w.writePage(t, "alpha", "one.md", "One", 50)

		_, stderr, err := w.run(t, "ask", "alpha", "What is one?")

		assert.Equal(t, docqa.EINVALID, docqa.ErrorCode(err))
		assert.Contains(t, stderr, "GEMINI_API_KEY")
	})
}

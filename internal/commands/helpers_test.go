package commands

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/mitchellh/cli"
	"github.com/stretchr/testify/require"

	"github.com/blairham/hookgate/pkg/verify"
)

// output captures what a command writes.
type output struct {
	out *bytes.Buffer
	err *bytes.Buffer
}

func newStreams(stdin string) (Streams, output) {
	o := output{out: &bytes.Buffer{}, err: &bytes.Buffer{}}
	return Streams{In: strings.NewReader(stdin), Out: o.out, Err: o.err}, o
}

// command builds a command through its factory.
func command(t *testing.T, factory func(Streams) cli.CommandFactory, stdin string) (cli.Command, output) {
	t.Helper()
	s, o := newStreams(stdin)
	cmd, err := factory(s)()
	require.NoError(t, err)
	return cmd, o
}

// testRepo is a git work tree in a temp dir that is also the working
// directory for the test.
type testRepo struct {
	t    *testing.T
	Root string
	repo *git.Repository
}

func newTestRepo(t *testing.T) *testRepo {
	t.Helper()
	root := t.TempDir()
	repo, err := git.PlainInit(root, false)
	require.NoError(t, err)
	t.Chdir(root)
	t.Setenv("PRE_COMMIT_HOME", filepath.Join(t.TempDir(), "cache"))
	t.Setenv("SKIP", "")
	return &testRepo{t: t, Root: root, repo: repo}
}

func (r *testRepo) write(name, content string) {
	r.t.Helper()
	path := filepath.Join(r.Root, filepath.FromSlash(name))
	require.NoError(r.t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(r.t, os.WriteFile(path, []byte(content), 0o600))
}

func (r *testRepo) stage(names ...string) {
	r.t.Helper()
	w, err := r.repo.Worktree()
	require.NoError(r.t, err)
	for _, name := range names {
		_, err := w.Add(name)
		require.NoError(r.t, err)
	}
}

func (r *testRepo) commit(msg string) string {
	r.t.Helper()
	w, err := r.repo.Worktree()
	require.NoError(r.t, err)
	h, err := w.Commit(msg, &git.CommitOptions{Author: &object.Signature{
		Name: "Test User", Email: "test@example.com", When: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}})
	require.NoError(r.t, err)
	return h.String()
}

// useUpstream replaces manifest fetching for the test.
func useUpstream(t *testing.T, manifests map[string]string) {
	t.Helper()
	prev := upstream
	upstream = verify.SourceFunc(func(_ context.Context, repo, rev string) ([]byte, error) {
		if m, ok := manifests[repo+"@"+rev]; ok {
			return []byte(m), nil
		}
		return nil, fmt.Errorf("revision %s not found in %s", rev, repo)
	})
	t.Cleanup(func() { upstream = prev })
}

// configTestdata is resolved before any test changes directory.
var configTestdata = func() string {
	wd, err := os.Getwd()
	if err != nil {
		panic(err)
	}
	return filepath.Join(wd, "..", "..", "pkg", "config", "testdata")
}()

func readFixture(t *testing.T, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(configTestdata, name))
	require.NoError(t, err)
	return string(data)
}

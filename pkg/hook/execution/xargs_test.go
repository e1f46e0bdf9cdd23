package execution

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPartition(t *testing.T) {
	cmd := []string{"ruff", "check"}

	t.Run("no files", func(t *testing.T) {
		got, err := Partition(cmd, nil, 4, 1000)
		require.NoError(t, err)
		assert.Equal(t, [][]string{{"ruff", "check"}}, got)
	})

	t.Run("single batch", func(t *testing.T) {
		got, err := Partition(cmd, []string{"a.py", "b.py"}, 1, 1000)
		require.NoError(t, err)
		assert.Equal(t, [][]string{{"ruff", "check", "a.py", "b.py"}}, got)
	})

	t.Run("split for concurrency", func(t *testing.T) {
		got, err := Partition(cmd, []string{"a.py", "b.py", "c.py"}, 2, 1000)
		require.NoError(t, err)
		assert.Equal(t, [][]string{
			{"ruff", "check", "a.py"},
			{"ruff", "check", "b.py"},
			{"ruff", "check", "c.py"},
		}, got)
	})

	t.Run("batch size rounds down", func(t *testing.T) {
		files := []string{"a.py", "b.py", "c.py", "d.py", "e.py", "f.py", "g.py"}
		got, err := Partition(cmd, files, 2, 1000)
		require.NoError(t, err)
		assert.Equal(t, [][]string{
			{"ruff", "check", "a.py", "b.py", "c.py"},
			{"ruff", "check", "d.py", "e.py", "f.py"},
			{"ruff", "check", "g.py"},
		}, got)
	})

	t.Run("split for length", func(t *testing.T) {
		// "ruff check " is 11 bytes, each file 5
		got, err := Partition(cmd, []string{"a.py", "b.py", "c.py"}, 1, 21)
		require.NoError(t, err)
		assert.Equal(t, [][]string{
			{"ruff", "check", "a.py", "b.py"},
			{"ruff", "check", "c.py"},
		}, got)
	})

	t.Run("argument too long", func(t *testing.T) {
		_, err := Partition(cmd, []string{strings.Repeat("x", 100)}, 1, 50)
		assert.ErrorIs(t, err, ErrArgumentTooLong)
	})
}

func TestMaxCommandLength(t *testing.T) {
	assert.Equal(t, maxArgMax-2048, MaxCommandLength(nil))
	assert.Equal(t, minArgMax, MaxCommandLength([]string{strings.Repeat("x", maxArgMax)}))
}

package local

import (
	"context"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vbonduro/loandesk/internal/statement"
)

func readAll(t *testing.T, s *DirStore, key string) string {
	t.Helper()
	rc, err := s.Open(context.Background(), key)
	require.NoError(t, err)
	defer func() { _ = rc.Close() }()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	return string(data)
}

func TestDirStorePutAndOpen(t *testing.T) {
	store, err := NewDirStore(t.TempDir())
	require.NoError(t, err)

	key := statement.Key(1, "3f1c")
	assert.Equal(t, "loan_1_3f1c.csv", key)

	body := "number,due_date,amount\n1,2024-03-31,100.00\n"
	require.NoError(t, store.Put(context.Background(), key, strings.NewReader(body)))
	assert.Equal(t, body, readAll(t, store, key))
}

func TestDirStorePutReplaces(t *testing.T) {
	dir := t.TempDir()
	store, err := NewDirStore(dir)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "loan_1_a.csv", strings.NewReader("first")))
	require.NoError(t, store.Put(ctx, "loan_1_a.csv", strings.NewReader("second")))
	assert.Equal(t, "second", readAll(t, store, "loan_1_a.csv"))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temporary files left behind")
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, io.ErrUnexpectedEOF }

func TestDirStorePutFailureKeepsPrevious(t *testing.T) {
	dir := t.TempDir()
	store, err := NewDirStore(dir)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "loan_2_b.csv", strings.NewReader("kept")))
	assert.ErrorIs(t, store.Put(ctx, "loan_2_b.csv", failingReader{}), io.ErrUnexpectedEOF)
	assert.Equal(t, "kept", readAll(t, store, "loan_2_b.csv"))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestDirStoreRemove(t *testing.T) {
	store, err := NewDirStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "loan_3_c.csv", strings.NewReader("x")))
	require.NoError(t, store.Remove(ctx, "loan_3_c.csv"))

	_, err = store.Open(ctx, "loan_3_c.csv")
	assert.ErrorIs(t, err, statement.ErrNotFound)
	assert.ErrorIs(t, store.Remove(ctx, "loan_3_c.csv"), statement.ErrNotFound)
}

func TestDirStoreRejectsBadKeys(t *testing.T) {
	store, err := NewDirStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	for _, key := range []string{"", "../../etc/passwd", "sub/loan.csv", ".put-123", ".."} {
		_, err := store.Open(ctx, key)
		assert.ErrorIs(t, err, statement.ErrInvalidKey, key)
		assert.ErrorIs(t, store.Put(ctx, key, strings.NewReader("x")), statement.ErrInvalidKey, key)
		assert.ErrorIs(t, store.Remove(ctx, key), statement.ErrInvalidKey, key)
	}
}

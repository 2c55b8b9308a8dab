package docstore_test

import (
	"io"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/portal-engine/docstore"
)

func newMemStore() *docstore.Store {
	return docstore.New(afero.NewMemMapFs(), "/uploads")
}

func TestDocstore_PutAndOpen(t *testing.T) {
	store := newMemStore()

	n, err := store.Put("V1001", "passport", strings.NewReader("pdf bytes"))
	require.NoError(t, err)
	assert.Equal(t, int64(9), n)

	r, err := store.Open("V1001", "passport")
	require.NoError(t, err)
	defer r.Close()

	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "pdf bytes", string(got))
}

func TestDocstore_ReuploadReplaces(t *testing.T) {
	store := newMemStore()

	_, err := store.Put("V1001", "passport", strings.NewReader("old"))
	require.NoError(t, err)
	_, err = store.Put("V1001", "passport", strings.NewReader("replacement"))
	require.NoError(t, err)

	r, err := store.Open("V1001", "passport")
	require.NoError(t, err)
	defer r.Close()

	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "replacement", string(got))
}

func TestDocstore_Exists(t *testing.T) {
	store := newMemStore()

	ok, err := store.Exists("V1001", "passport")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = store.Put("V1001", "passport", strings.NewReader("x"))
	require.NoError(t, err)

	ok, err = store.Exists("V1001", "passport")
	require.NoError(t, err)
	assert.True(t, ok)

	// Slots are per employee
	ok, err = store.Exists("V2002", "passport")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDocstore_OpenMissing(t *testing.T) {
	store := newMemStore()
	_, err := store.Open("V1001", "visa")
	assert.Error(t, err)
}

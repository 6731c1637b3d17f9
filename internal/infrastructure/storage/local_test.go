package storage_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skladpro/warehouse-api/internal/infrastructure/storage"
)

func TestLocalStore_SaveAndOpen(t *testing.T) {
	root := t.TempDir()
	store, err := storage.NewLocalStore(root)
	require.NoError(t, err)

	path, err := store.Save("invoice_INV-20240115-0001_20240115_134500.pdf", []byte("%PDF-data"))
	require.NoError(t, err)
	assert.Equal(t, "invoices/invoice_INV-20240115-0001_20240115_134500.pdf", path)

	onDisk, err := os.ReadFile(filepath.Join(root, "invoices", "invoice_INV-20240115-0001_20240115_134500.pdf"))
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-data"), onDisk)

	data, err := store.Open(path)
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-data"), data)
}

func TestLocalStore_SaveStripsDirectories(t *testing.T) {
	store, err := storage.NewLocalStore(t.TempDir())
	require.NoError(t, err)

	path, err := store.Save("../../escape.pdf", []byte("x"))
	require.NoError(t, err)
	assert.Equal(t, "invoices/escape.pdf", path)
}

func TestLocalStore_OpenRejectsTraversal(t *testing.T) {
	store, err := storage.NewLocalStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Open("../outside.pdf")
	assert.Error(t, err)

	_, err = store.Open("/etc/passwd")
	assert.Error(t, err)
}

func TestLocalStore_OpenMissing(t *testing.T) {
	store, err := storage.NewLocalStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Open("invoices/nope.pdf")
	assert.Error(t, err)
}

package db

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/Ethernal-Tech/icon-infrastructure/txstore"
	"github.com/stretchr/testify/require"
)

func TestNewDatabase(t *testing.T) {
	_, err := NewDatabase("pebble", filepath.Join(t.TempDir(), "db"))
	require.ErrorContains(t, err, "unsupported database")

	_, err = NewDatabase(BBolt, filepath.Join(t.TempDir(), "missing", "dir", "db"))
	require.Error(t, err)
}

func TestDatabase(t *testing.T) {
	for _, kind := range []string{BBolt, LevelDB} {
		t.Run(kind, func(t *testing.T) {
			newDB := func(t *testing.T) txstore.Store {
				t.Helper()

				db, err := NewDatabase(kind, filepath.Join(t.TempDir(), "journal.db"))
				require.NoError(t, err)

				t.Cleanup(func() {
					require.NoError(t, db.Close())
				})

				return db
			}

			t.Run("GetNotFound", func(t *testing.T) {
				db := newDB(t)

				_, err := db.Get("0x1")
				require.ErrorIs(t, err, txstore.ErrNotFound)

				err = db.MarkResult("0x1", txstore.Result{Status: txstore.StatusSuccess})
				require.ErrorIs(t, err, txstore.ErrNotFound)
			})

			t.Run("PutGet", func(t *testing.T) {
				db := newDB(t)
				record := txstore.NewRecord("0xaa", "hxfrom", "hxto", "0x1", "", []byte(`{}`))

				require.NoError(t, db.Put(record))

				result, err := db.Get("0xaa")
				require.NoError(t, err)
				require.Equal(t, record, result)

				require.ErrorIs(t, db.Put(&txstore.Record{}), txstore.ErrInvalidRecord)
			})

			t.Run("GetPending", func(t *testing.T) {
				db := newDB(t)

				for i := 0; i < 5; i++ {
					require.NoError(t, db.Put(txstore.NewRecord(fmt.Sprintf("0x%d", i), "hxfrom", "hxto", "0x1", "", nil)))
				}

				pending, err := db.GetPending(0)
				require.NoError(t, err)
				require.Len(t, pending, 5)
				require.Equal(t, "0x0", pending[0].TxHash)

				pending, err = db.GetPending(2)
				require.NoError(t, err)
				require.Len(t, pending, 2)

				require.NoError(t, db.MarkResult("0x1", txstore.Result{
					Status:      txstore.StatusSuccess,
					BlockHeight: 100,
					BlockHash:   "0xbb",
				}))
				require.NoError(t, db.MarkResult("0x3", txstore.Result{
					Status:  txstore.StatusFailure,
					Failure: "reverted",
				}))

				pending, err = db.GetPending(0)
				require.NoError(t, err)
				require.Len(t, pending, 3)

				for _, r := range pending {
					require.NotContains(t, []string{"0x1", "0x3"}, r.TxHash)
				}

				record, err := db.Get("0x1")
				require.NoError(t, err)
				require.Equal(t, txstore.StatusSuccess, record.Status)
				require.Equal(t, uint64(100), record.BlockHeight)
				require.Equal(t, "0xbb", record.BlockHash)

				err = db.MarkResult("0x1", txstore.Result{Status: txstore.StatusFailure})
				require.ErrorIs(t, err, txstore.ErrAlreadyFinal)
			})

			t.Run("PutFinal", func(t *testing.T) {
				db := newDB(t)
				record := txstore.NewRecord("0xcc", "hxfrom", "hxto", "0x1", "", nil)

				require.NoError(t, db.Put(record))

				record.Status = txstore.StatusSuccess
				require.NoError(t, db.Put(record))

				pending, err := db.GetPending(0)
				require.NoError(t, err)
				require.Empty(t, pending)
			})

			t.Run("Reopen", func(t *testing.T) {
				path := filepath.Join(t.TempDir(), "journal.db")

				db, err := NewDatabase(kind, path)
				require.NoError(t, err)
				require.NoError(t, db.Put(txstore.NewRecord("0xdd", "hxfrom", "hxto", "0x1", "", nil)))
				require.NoError(t, db.Close())

				db, err = NewDatabase(kind, path)
				require.NoError(t, err)

				defer db.Close()

				pending, err := db.GetPending(0)
				require.NoError(t, err)
				require.Len(t, pending, 1)
				require.Equal(t, "0xdd", pending[0].TxHash)
			})
		})
	}
}

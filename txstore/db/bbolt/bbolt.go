package txstorebbolt

import (
	"fmt"

	"github.com/Ethernal-Tech/icon-infrastructure/txstore"
	"go.etcd.io/bbolt"
)

type BBoltDatabase struct {
	db *bbolt.DB
}

var (
	txsBucket        = []byte("Txs")
	pendingTxsBucket = []byte("PendingTxs")
)

var _ txstore.Store = (*BBoltDatabase)(nil)

func (bd *BBoltDatabase) Init(filePath string) error {
	db, err := bbolt.Open(filePath, 0600, nil)
	if err != nil {
		return fmt.Errorf("could not open db: %w", err)
	}

	bd.db = db

	return db.Update(func(tx *bbolt.Tx) error {
		for _, bn := range [][]byte{txsBucket, pendingTxsBucket} {
			_, err := tx.CreateBucketIfNotExists(bn)
			if err != nil {
				return fmt.Errorf("could not bucket: %s, err: %w", string(bn), err)
			}
		}

		return nil
	})
}

func (bd *BBoltDatabase) Close() error {
	return bd.db.Close()
}

func (bd *BBoltDatabase) Put(record *txstore.Record) error {
	if err := record.Validate(); err != nil {
		return err
	}

	bytes, err := txstore.EncodeRecord(record)
	if err != nil {
		return err
	}

	return bd.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.Bucket(txsBucket).Put(record.Key(), bytes); err != nil {
			return fmt.Errorf("could not put tx: %w", err)
		}

		if record.IsPending() {
			return tx.Bucket(pendingTxsBucket).Put(record.Key(), []byte{1})
		}

		return tx.Bucket(pendingTxsBucket).Delete(record.Key())
	})
}

func (bd *BBoltDatabase) Get(txHash string) (result *txstore.Record, err error) {
	err = bd.db.View(func(tx *bbolt.Tx) error {
		result, err = getRecord(tx, []byte(txHash))

		return err
	})

	return result, err
}

func (bd *BBoltDatabase) GetPending(maxCnt int) ([]*txstore.Record, error) {
	var result []*txstore.Record

	err := bd.db.View(func(tx *bbolt.Tx) error {
		cursor := tx.Bucket(pendingTxsBucket).Cursor()

		for k, _ := cursor.First(); k != nil; k, _ = cursor.Next() {
			record, err := getRecord(tx, k)
			if err != nil {
				return err
			}

			result = append(result, record)
			if maxCnt > 0 && len(result) == maxCnt {
				break
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (bd *BBoltDatabase) MarkResult(txHash string, result txstore.Result) error {
	return bd.db.Update(func(tx *bbolt.Tx) error {
		record, err := getRecord(tx, []byte(txHash))
		if err != nil {
			return err
		}

		record, err = record.Apply(result)
		if err != nil {
			return err
		}

		bytes, err := txstore.EncodeRecord(record)
		if err != nil {
			return err
		}

		if err := tx.Bucket(pendingTxsBucket).Delete(record.Key()); err != nil {
			return fmt.Errorf("could not remove from pending txs: %w", err)
		}

		if err := tx.Bucket(txsBucket).Put(record.Key(), bytes); err != nil {
			return fmt.Errorf("could not update tx: %w", err)
		}

		return nil
	})
}

func getRecord(tx *bbolt.Tx, key []byte) (*txstore.Record, error) {
	data := tx.Bucket(txsBucket).Get(key)
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: %s", txstore.ErrNotFound, string(key))
	}

	return txstore.DecodeRecord(data)
}

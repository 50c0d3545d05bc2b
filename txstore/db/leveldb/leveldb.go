package txstoreleveldb

import (
	"errors"
	"fmt"

	"github.com/Ethernal-Tech/icon-infrastructure/txstore"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/util"
)

type LevelDBDatabase struct {
	db *leveldb.DB
}

var (
	txsBucket        = []byte("P1_")
	pendingTxsBucket = []byte("P2_")
)

var _ txstore.Store = (*LevelDBDatabase)(nil)

func (lvldb *LevelDBDatabase) Init(filePath string) error {
	db, err := leveldb.OpenFile(filePath, nil)
	if err != nil {
		return fmt.Errorf("could not open db: %w", err)
	}

	lvldb.db = db

	return nil
}

func (lvldb *LevelDBDatabase) Close() error {
	return lvldb.db.Close()
}

func (lvldb *LevelDBDatabase) Put(record *txstore.Record) error {
	if err := record.Validate(); err != nil {
		return err
	}

	return lvldb.write(record)
}

func (lvldb *LevelDBDatabase) Get(txHash string) (*txstore.Record, error) {
	bytes, err := lvldb.db.Get(bucketKey(txsBucket, []byte(txHash)), nil)
	if err != nil {
		return nil, processNotFoundErr(err, txHash)
	}

	return txstore.DecodeRecord(bytes)
}

func (lvldb *LevelDBDatabase) GetPending(maxCnt int) ([]*txstore.Record, error) {
	var (
		result []*txstore.Record
		prefix = bucketKey(pendingTxsBucket, nil)
	)

	iter := lvldb.db.NewIterator(util.BytesPrefix(prefix), nil)
	defer iter.Release()

	for iter.Next() {
		record, err := lvldb.Get(string(iter.Key()[len(prefix):]))
		if err != nil {
			return nil, err
		}

		result = append(result, record)
		if maxCnt > 0 && len(result) == maxCnt {
			break
		}
	}

	return result, iter.Error()
}

func (lvldb *LevelDBDatabase) MarkResult(txHash string, result txstore.Result) error {
	record, err := lvldb.Get(txHash)
	if err != nil {
		return err
	}

	record, err = record.Apply(result)
	if err != nil {
		return err
	}

	return lvldb.write(record)
}

func (lvldb *LevelDBDatabase) write(record *txstore.Record) error {
	bytes, err := txstore.EncodeRecord(record)
	if err != nil {
		return err
	}

	batch := new(leveldb.Batch)

	batch.Put(bucketKey(txsBucket, record.Key()), bytes)

	if record.IsPending() {
		batch.Put(bucketKey(pendingTxsBucket, record.Key()), []byte{1})
	} else {
		batch.Delete(bucketKey(pendingTxsBucket, record.Key()))
	}

	return lvldb.db.Write(batch, &opt.WriteOptions{
		NoWriteMerge: false,
		Sync:         true,
	})
}

func bucketKey(bucket []byte, key []byte) []byte {
	const separator = "_#_"

	outputKey := make([]byte, len(bucket)+len(separator)+len(key))
	copy(outputKey, bucket)
	copy(outputKey[len(bucket):], []byte(separator))
	copy(outputKey[len(bucket)+len(separator):], key)

	return outputKey
}

func processNotFoundErr(err error, txHash string) error {
	if errors.Is(err, leveldb.ErrNotFound) {
		return fmt.Errorf("%w: %s", txstore.ErrNotFound, txHash)
	}

	return err
}

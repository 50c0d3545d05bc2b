package db

import (
	"fmt"
	"strings"

	"github.com/Ethernal-Tech/icon-infrastructure/txstore"
	txstorebbolt "github.com/Ethernal-Tech/icon-infrastructure/txstore/db/bbolt"
	txstoreleveldb "github.com/Ethernal-Tech/icon-infrastructure/txstore/db/leveldb"
)

const (
	BBolt   = "bbolt"
	LevelDB = "leveldb"
)

// NewDatabase opens the journal of the given kind. Empty kind defaults to bbolt.
func NewDatabase(kind string, filePath string) (txstore.Store, error) {
	var db txstore.Store

	switch strings.ToLower(kind) {
	case "", BBolt:
		db = &txstorebbolt.BBoltDatabase{}
	case LevelDB:
		db = &txstoreleveldb.LevelDBDatabase{}
	default:
		return nil, fmt.Errorf("unsupported database: %s", kind)
	}

	if err := db.Init(filePath); err != nil {
		return nil, err
	}

	return db, nil
}

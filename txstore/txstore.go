package txstore

import (
	"errors"
	"fmt"
	"time"

	"github.com/fxamacker/cbor/v2"
)

var (
	ErrNotFound      = errors.New("transaction not found")
	ErrAlreadyFinal  = errors.New("transaction result already recorded")
	ErrInvalidRecord = errors.New("invalid transaction record")
)

type Status string

const (
	StatusPending Status = "pending"
	StatusSuccess Status = "success"
	StatusFailure Status = "failure"
)

// Record is journal entry of a transaction sent to the node
type Record struct {
	TxHash      string `cbor:"1,keyasint"`
	From        string `cbor:"2,keyasint"`
	To          string `cbor:"3,keyasint"`
	Nid         string `cbor:"4,keyasint"`
	DataType    string `cbor:"5,keyasint,omitempty"`
	Properties  []byte `cbor:"6,keyasint"`
	Status      Status `cbor:"7,keyasint"`
	SentAt      int64  `cbor:"8,keyasint"`
	BlockHeight uint64 `cbor:"9,keyasint,omitempty"`
	BlockHash   string `cbor:"10,keyasint,omitempty"`
	Failure     string `cbor:"11,keyasint,omitempty"`
}

// Result is the final outcome of a transaction
type Result struct {
	Status      Status
	BlockHeight uint64
	BlockHash   string
	Failure     string
}

// Store is journal of sent transactions
type Store interface {
	Init(filePath string) error
	Close() error

	Put(record *Record) error
	Get(txHash string) (*Record, error)
	GetPending(maxCnt int) ([]*Record, error)
	MarkResult(txHash string, result Result) error
}

func NewRecord(txHash, from, to, nid, dataType string, properties []byte) *Record {
	return &Record{
		TxHash:     txHash,
		From:       from,
		To:         to,
		Nid:        nid,
		DataType:   dataType,
		Properties: properties,
		Status:     StatusPending,
		SentAt:     time.Now().Unix(),
	}
}

func (r Record) Key() []byte {
	return []byte(r.TxHash)
}

func (r Record) IsPending() bool {
	return r.Status == StatusPending
}

// Apply returns a copy of the record with the result applied
func (r Record) Apply(result Result) (*Record, error) {
	if !r.IsPending() {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyFinal, r.TxHash)
	}

	if result.Status != StatusSuccess && result.Status != StatusFailure {
		return nil, fmt.Errorf("%w: unexpected status %s", ErrInvalidRecord, result.Status)
	}

	r.Status = result.Status
	r.BlockHeight = result.BlockHeight
	r.BlockHash = result.BlockHash
	r.Failure = result.Failure

	return &r, nil
}

func (r *Record) Validate() error {
	if r == nil || r.TxHash == "" {
		return fmt.Errorf("%w: missing tx hash", ErrInvalidRecord)
	}

	switch r.Status {
	case StatusPending, StatusSuccess, StatusFailure:
		return nil
	default:
		return fmt.Errorf("%w: unexpected status %s", ErrInvalidRecord, r.Status)
	}
}

func EncodeRecord(r *Record) ([]byte, error) {
	bytes, err := cbor.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("could not marshal record: %w", err)
	}

	return bytes, nil
}

func DecodeRecord(data []byte) (*Record, error) {
	var r Record

	if err := cbor.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("could not unmarshal record: %w", err)
	}

	return &r, nil
}

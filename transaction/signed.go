package transaction

import (
	"encoding/hex"
	"fmt"
)

const signatureField = "signature"

// Signer produces base64 encoded recoverable signature of a transaction digest
type Signer interface {
	Sign(digest []byte) (string, error)
}

// SignedTransaction couples a transaction with the signature of its canonical digest.
// The signature is computed once, at construction.
type SignedTransaction struct {
	transaction *Transaction
	raw         RawTransaction
	digest      []byte
	signature   string
}

func NewSignedTransaction(tx *Transaction, signer Signer) (*SignedTransaction, error) {
	raw, err := ToRawTransaction(tx)
	if err != nil {
		return nil, err
	}

	digest, err := Digest(raw)
	if err != nil {
		return nil, err
	}

	if signer == nil {
		return nil, fmt.Errorf("%w: signer not specified", ErrSigningFailed)
	}

	signature, err := signer.Sign(digest)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSigningFailed, err)
	}

	if signature == "" {
		return nil, fmt.Errorf("%w: empty signature", ErrSigningFailed)
	}

	return &SignedTransaction{
		transaction: tx,
		raw:         raw,
		digest:      digest,
		signature:   signature,
	}, nil
}

func (s *SignedTransaction) Transaction() *Transaction {
	return s.transaction
}

func (s *SignedTransaction) Signature() string {
	return s.signature
}

// Digest returns copy of the signed digest
func (s *SignedTransaction) Digest() []byte {
	return append([]byte(nil), s.digest...)
}

// TxHash returns 0x-prefixed transaction hash, the same value the network reports for the transaction
func (s *SignedTransaction) TxHash() string {
	return "0x" + hex.EncodeToString(s.digest)
}

// RawTransaction returns copy of the raw transaction that was signed
func (s *SignedTransaction) RawTransaction() RawTransaction {
	return s.raw.clone()
}

// Properties returns raw transaction with signature, ready to be sent with icx_sendTransaction
func (s *SignedTransaction) Properties() RawTransaction {
	properties := s.raw.clone()
	properties[signatureField] = s.signature

	return properties
}

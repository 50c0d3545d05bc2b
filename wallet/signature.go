package wallet

import (
	"encoding/base64"
	"fmt"

	"github.com/Ethernal-Tech/icon-infrastructure/transaction"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
)

// RecoverPublicKey recovers signer public key from digest and base64 encoded R || S || recovery id signature
func RecoverPublicKey(digest []byte, signature string) (*secp256k1.PublicKey, error) {
	raw, err := base64.StdEncoding.DecodeString(signature)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSignature, err)
	}

	if len(raw) != SignatureSize {
		return nil, fmt.Errorf("%w: invalid size %d", ErrInvalidSignature, len(raw))
	}

	recoveryID := raw[SignatureSize-1]
	if recoveryID > 3 {
		return nil, fmt.Errorf("%w: invalid recovery id %d", ErrInvalidSignature, recoveryID)
	}

	compact := make([]byte, SignatureSize)
	compact[0] = recoveryID + compactMagicOffset
	copy(compact[1:], raw[:SignatureSize-1])

	publicKey, _, err := ecdsa.RecoverCompact(compact, digest)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSignature, err)
	}

	return publicKey, nil
}

// RecoverAddress returns address of the account that signed the digest
func RecoverAddress(digest []byte, signature string) (string, error) {
	publicKey, err := RecoverPublicKey(digest, signature)
	if err != nil {
		return "", err
	}

	return addressFromPublicKey(publicKey), nil
}

// VerifySignature checks that signed transaction is signed by the given address
func VerifySignature(signed *transaction.SignedTransaction, address string) error {
	recovered, err := RecoverAddress(signed.Digest(), signed.Signature())
	if err != nil {
		return err
	}

	if recovered != address {
		return fmt.Errorf("%w: signed by %s, expected %s", ErrInvalidSignature, recovered, address)
	}

	return nil
}

package client

import (
	"crypto/ecdsa"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Wallet is the local stand-in for a browser wallet connection: a secp256k1
// key pair whose address receives the minted token and signs the mint
// transaction.
type Wallet struct {
	key *ecdsa.PrivateKey
}

// LoadWallet parses a hex-encoded private key.
func LoadWallet(hexKey string) (*Wallet, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(hexKey, "0x"))
	if err != nil {
		return nil, fmt.Errorf("parse wallet key: %w", err)
	}
	return &Wallet{key: key}, nil
}

// LoadWalletFile reads the key from a file, one hex key per file.
func LoadWalletFile(path string) (*Wallet, error) {
	key, err := crypto.LoadECDSA(path)
	if err != nil {
		return nil, fmt.Errorf("load wallet key: %w", err)
	}
	return &Wallet{key: key}, nil
}

// Address returns the wallet's address.
func (w *Wallet) Address() common.Address {
	return crypto.PubkeyToAddress(w.key.PublicKey)
}

// Key exposes the private key for transaction signing.
func (w *Wallet) Key() *ecdsa.PrivateKey {
	return w.key
}

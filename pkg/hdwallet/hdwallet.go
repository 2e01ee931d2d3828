// Package hdwallet derives Ethereum signing keys from BIP-39 recovery
// phrases using the standard BIP-44 account path m/44'/60'/0'/0/0.
package hdwallet

import (
	"encoding/hex"
	"errors"
	"strings"

	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/tyler-smith/go-bip39"
)

// ErrInvalidMnemonic is returned for phrases that fail BIP-39 validation.
var ErrInvalidMnemonic = errors.New("invalid mnemonic phrase")

// DerivationPath is the Ethereum account-zero path.
var DerivationPath = []uint32{
	hdkeychain.HardenedKeyStart + 44,
	hdkeychain.HardenedKeyStart + 60,
	hdkeychain.HardenedKeyStart + 0,
	0,
	0,
}

// DerivedKey is the result of deriving account zero from a mnemonic.
type DerivedKey struct {
	// PrivateKeyHex is the 64-character hex encoding of the secp256k1
	// private key, without 0x prefix. Treat as a secret.
	PrivateKeyHex string
	// Address is the EIP-55 checksummed account address.
	Address string
}

// FromMnemonic validates the phrase and derives the account-zero key.
func FromMnemonic(mnemonic string) (*DerivedKey, error) {
	phrase := strings.Join(strings.Fields(strings.TrimSpace(mnemonic)), " ")
	if !bip39.IsMnemonicValid(phrase) {
		return nil, ErrInvalidMnemonic
	}

	seed := bip39.NewSeed(phrase, "")
	key, err := hdkeychain.NewMaster(seed, &chaincfg.MainNetParams)
	if err != nil {
		return nil, err
	}

	for _, index := range DerivationPath {
		key, err = key.Derive(index)
		if err != nil {
			return nil, err
		}
	}

	ecPriv, err := key.ECPrivKey()
	if err != nil {
		return nil, err
	}

	priv := ecPriv.ToECDSA()
	address := ethcrypto.PubkeyToAddress(priv.PublicKey).Hex()

	return &DerivedKey{
		PrivateKeyHex: hex.EncodeToString(ethcrypto.FromECDSA(priv)),
		Address:       address,
	}, nil
}

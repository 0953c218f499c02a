// Package crypto provides the Keccak256 hashing used for code hashes,
// EXTCODEHASH and contract address derivation.
package crypto

import (
	"encoding/binary"

	"golang.org/x/crypto/sha3"

	"github.com/corevm/go-evm/common"
)

// Keccak256 calculates and returns the Keccak256 hash of the input data.
func Keccak256(data ...[]byte) []byte {
	d := sha3.NewLegacyKeccak256()
	for _, b := range data {
		d.Write(b)
	}
	return d.Sum(nil)
}

// Keccak256Hash calculates and returns the Keccak256 hash of the input data,
// converting it to an internal Hash data structure.
func Keccak256Hash(data ...[]byte) (h common.Hash) {
	h.SetBytes(Keccak256(data...))
	return h
}

// CreateAddress derives the address a creating account with the given nonce
// deploys to. The derivation hashes the creator address together with the
// big-endian encoding of the nonce.
func CreateAddress(b common.Address, nonce uint64) common.Address {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], nonce)
	return common.BytesToAddress(Keccak256(b.Bytes(), buf[:])[12:])
}

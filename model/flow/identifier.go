package flow

import (
	"encoding/hex"
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"golang.org/x/crypto/sha3"
)

// IdentifierLen is the length of an Identifier in bytes.
const IdentifierLen = 32

// Identifier represents a 32-byte unique identifier for an entity. It is the
// content digest of the entity and doubles as its storage key.
type Identifier [IdentifierLen]byte

// ZeroID is the lowest value in the 32-byte ID space.
var ZeroID = Identifier{}

// encMode is the canonical CBOR encoding used for hashing entities. Nil and
// empty containers encode identically, so an entity keeps its ID after a round
// trip through storage codecs that do not preserve the distinction.
var encMode = func() cbor.EncMode {
	opts := cbor.CanonicalEncOptions()
	opts.NilContainers = cbor.NilContainerAsEmpty
	mode, err := opts.EncMode()
	if err != nil {
		panic(fmt.Sprintf("could not create canonical cbor encoding mode: %v", err))
	}
	return mode
}()

// HexStringToIdentifier converts a hex string to an identifier. The input
// must be 64 characters long and contain only valid hex characters.
func HexStringToIdentifier(hexString string) (Identifier, error) {
	var identifier Identifier
	if len(hexString) != hex.EncodedLen(IdentifierLen) {
		return identifier, fmt.Errorf("malformed input, expected %d hex characters, got %d", hex.EncodedLen(IdentifierLen), len(hexString))
	}
	_, err := hex.Decode(identifier[:], []byte(hexString))
	if err != nil {
		return identifier, err
	}
	return identifier, nil
}

// String returns the hex string representation of the identifier.
func (id Identifier) String() string {
	return hex.EncodeToString(id[:])
}

// IsZero returns true if the identifier is the ZeroID.
func (id Identifier) IsZero() bool {
	return id == ZeroID
}

// MarshalText implements encoding.TextMarshaler.
func (id Identifier) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *Identifier) UnmarshalText(text []byte) error {
	var err error
	*id, err = HexStringToIdentifier(string(text))
	return err
}

// MakeID creates an ID from the canonical encoding of an entity. It panics if
// the entity cannot be encoded, which only happens for types that can not be
// represented in CBOR at all (channels, functions).
func MakeID(entity interface{}) Identifier {
	data, err := encMode.Marshal(entity)
	if err != nil {
		panic(fmt.Sprintf("could not encode entity for hashing: %v", err))
	}
	return HashToID(data)
}

// HashToID hashes the given bytes with SHA3-256 into an identifier.
func HashToID(data []byte) Identifier {
	return Identifier(sha3.Sum256(data))
}

// GetIDs returns the identifiers of the given blocks, preserving order.
func GetIDs(blocks []*Block) []Identifier {
	ids := make([]Identifier, 0, len(blocks))
	for _, block := range blocks {
		ids = append(ids, block.ID())
	}
	return ids
}

// Package keys derives stable cache keys from composite argument lists.
// Arguments are serialized canonically (map keys sorted) so that logically
// equal values always produce the same key, then hashed with xxHash.
package keys

import (
	"bytes"
	"encoding/json"
	"strconv"

	"github.com/cespare/xxhash/v2"
	"github.com/fxamacker/cbor/v2"
	"github.com/vmihailenco/msgpack/v5"
)

// Encoding selects the canonical serialization used before hashing.
type Encoding int

const (
	Msgpack Encoding = iota
	JSON
	CBOR
)

var cborEnc cbor.EncMode

func init() {
	var err error
	cborEnc, err = cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(err)
	}
}

// Hash derives a key from args using the default Msgpack encoding.
func Hash(args ...any) (string, error) {
	return HashWith(Msgpack, args...)
}

// HashWith derives a key from args using the given encoding. The result is
// the lowercase hex form of the 64-bit xxHash of the serialized arguments.
func HashWith(enc Encoding, args ...any) (string, error) {
	b, err := encode(enc, args)
	if err != nil {
		return "", err
	}
	return strconv.FormatUint(xxhash.Sum64(b), 16), nil
}

func encode(enc Encoding, args []any) ([]byte, error) {
	switch enc {
	case JSON:
		return json.Marshal(args)
	case CBOR:
		return cborEnc.Marshal(args)
	default:
		var buf bytes.Buffer
		e := msgpack.NewEncoder(&buf)
		e.SetSortMapKeys(true)
		if err := e.Encode(args); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}
}

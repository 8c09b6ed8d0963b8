package shm

import (
	"crypto/rand"
	"encoding/binary"
	"os"

	"github.com/bytedance/gopkg/util/xxhash3"
)

// NewID derives an opaque segment identifier from the creating process's
// PID and a random nonce, hashed with xxhash3 (from bytedance/gopkg, a
// dependency this module already has for lang/dirtmake). It is not meant to
// be guessable or globally unique across hosts, only distinct enough that
// a joining process can sanity-check it attached the segment it thinks it
// did.
func NewID() (ID, error) {
	var nonce [8]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return 0, err
	}

	var buf [16]byte
	binary.LittleEndian.PutUint64(buf[0:8], uint64(os.Getpid()))
	copy(buf[8:16], nonce[:])

	return ID(xxhash3.Hash(buf[:])), nil
}

// SPDX-License-Identifier: GPL-3.0-only

package crypto

import "errors"

type Algorithm string

const (
	Bcrypt   Algorithm = "bcrypt"
	Argon2id Algorithm = "argon2id"
)

const DefaultBcryptCost = 12

// MaxBcryptPasswordBytes is the longest input bcrypt accepts.
const MaxBcryptPasswordBytes = 72

var (
	ErrUnknownHashFormat  = errors.New("unknown password hash format")
	ErrUnsupportedEncoder = errors.New("unsupported encoding")
)

// Crypto hashes and verifies passwords. Hashes written by either algorithm
// verify regardless of which one is configured for new hashes.
type Crypto struct {
	Algorithm    Algorithm
	BcryptCost   int
	ArgonTime    uint32
	ArgonMemory  uint32
	ArgonThreads uint8
	ArgonKeyLen  uint32
	ArgonSaltLen uint32
}

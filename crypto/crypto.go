// SPDX-License-Identifier: GPL-3.0-only

package crypto

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"usercred-server/commons"

	"github.com/alexedwards/argon2id"
	"golang.org/x/crypto/bcrypt"
)

func NewCrypto() *Crypto {
	algorithm := Algorithm(strings.ToLower(commons.GetEnv("HASH_ALGORITHM", string(Bcrypt))))
	if algorithm != Bcrypt && algorithm != Argon2id {
		commons.Logger.Warnf("Unsupported HASH_ALGORITHM %q, falling back to %s", algorithm, Bcrypt)
		algorithm = Bcrypt
	}

	return &Crypto{
		Algorithm:    algorithm,
		BcryptCost:   clampBcryptCost(commons.GetEnvInt("BCRYPT_COST", DefaultBcryptCost)),
		ArgonTime:    uint32(commons.GetEnvInt("ARGON2_TIME", 3)),
		ArgonMemory:  uint32(commons.GetEnvInt("ARGON2_MEMORY", 65536)),
		ArgonThreads: uint8(commons.GetEnvInt("ARGON2_THREADS", 2)),
		ArgonKeyLen:  uint32(commons.GetEnvInt("ARGON2_KEYLEN", 32)),
		ArgonSaltLen: uint32(commons.GetEnvInt("ARGON2_SALTLEN", 16)),
	}
}

func clampBcryptCost(cost int) int {
	if cost < bcrypt.MinCost {
		return DefaultBcryptCost
	}
	if cost > bcrypt.MaxCost {
		return bcrypt.MaxCost
	}
	return cost
}

func (c *Crypto) argonParams() *argon2id.Params {
	return &argon2id.Params{
		Memory:      c.ArgonMemory,
		Iterations:  c.ArgonTime,
		Parallelism: c.ArgonThreads,
		SaltLength:  c.ArgonSaltLen,
		KeyLength:   c.ArgonKeyLen,
	}
}

// HashPassword returns a salted one-way hash of password in the
// algorithm's standard encoded form.
func (c *Crypto) HashPassword(password string) (string, error) {
	commons.Logger.Debugf("Hashing password with %s", c.Algorithm)
	switch c.Algorithm {
	case Argon2id:
		hash, err := argon2id.CreateHash(password, c.argonParams())
		if err != nil {
			return "", fmt.Errorf("argon2id hash: %w", err)
		}
		return hash, nil
	default:
		hash, err := bcrypt.GenerateFromPassword([]byte(password), clampBcryptCost(c.BcryptCost))
		if err != nil {
			return "", fmt.Errorf("bcrypt hash: %w", err)
		}
		return string(hash), nil
	}
}

// MaxPasswordBytes is the longest password the configured algorithm can
// hash, or 0 when there is no limit.
func (c *Crypto) MaxPasswordBytes() int {
	if c.Algorithm == Argon2id {
		return 0
	}
	return MaxBcryptPasswordBytes
}

// VerifyPassword reports whether password matches encodedHash. A mismatch is
// (false, nil); an error means the stored hash could not be used at all.
func (c *Crypto) VerifyPassword(password, encodedHash string) (bool, error) {
	commons.Logger.Debug("Verifying password")
	switch DetectAlgorithm(encodedHash) {
	case Bcrypt:
		err := bcrypt.CompareHashAndPassword([]byte(encodedHash), []byte(password))
		if err == nil {
			return true, nil
		}
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return false, nil
		}
		return false, fmt.Errorf("bcrypt compare: %w", err)
	case Argon2id:
		match, err := argon2id.ComparePasswordAndHash(password, encodedHash)
		if err != nil {
			return false, fmt.Errorf("argon2id compare: %w", err)
		}
		return match, nil
	default:
		return false, ErrUnknownHashFormat
	}
}

// NeedsRehash reports whether encodedHash was produced by another algorithm
// or with weaker parameters than the current configuration.
func (c *Crypto) NeedsRehash(encodedHash string) bool {
	algorithm := DetectAlgorithm(encodedHash)
	if algorithm != c.Algorithm {
		return algorithm != ""
	}

	switch algorithm {
	case Bcrypt:
		cost, err := bcrypt.Cost([]byte(encodedHash))
		if err != nil {
			return false
		}
		return cost < clampBcryptCost(c.BcryptCost)
	case Argon2id:
		params, _, _, err := argon2id.DecodeHash(encodedHash)
		if err != nil {
			return false
		}
		want := c.argonParams()
		return params.Memory < want.Memory ||
			params.Iterations < want.Iterations ||
			params.KeyLength < want.KeyLength
	}
	return false
}

func DetectAlgorithm(encodedHash string) Algorithm {
	switch {
	case strings.HasPrefix(encodedHash, "$argon2id$"):
		return Argon2id
	case strings.HasPrefix(encodedHash, "$2a$"),
		strings.HasPrefix(encodedHash, "$2b$"),
		strings.HasPrefix(encodedHash, "$2y$"):
		return Bcrypt
	}
	return ""
}

// HashToken returns the hex SHA-256 digest used to store one-time tokens.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func ConstantTimeEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

func GenerateRandomString(prefix string, length int, encoding string) (string, error) {
	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}

	switch encoding {
	case "hex":
		return prefix + hex.EncodeToString(b), nil
	case "base64":
		return prefix + base64.RawURLEncoding.EncodeToString(b), nil
	default:
		return "", fmt.Errorf("%w: %s, supported encodings are hex and base64", ErrUnsupportedEncoder, encoding)
	}
}

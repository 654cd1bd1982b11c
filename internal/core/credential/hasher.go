// Package credential hashes and verifies staff passwords.
package credential

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// MaxPasswordBytes is the longest input bcrypt accepts.
const MaxPasswordBytes = 72

// Hasher is a bcrypt-backed one-way password hasher.
type Hasher struct {
	cost            int
	legacyPlaintext bool
	burnHash        []byte
}

// NewHasher returns a Hasher using the given bcrypt cost. A cost outside
// bcrypt's accepted range falls back to bcrypt.DefaultCost. When
// allowLegacyPlaintext is set, Verify also accepts unhashed records, see legacy.go.
func NewHasher(cost int, allowLegacyPlaintext bool) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	burn, err := bcrypt.GenerateFromPassword([]byte("burn-the-cycles"), cost)
	if err != nil {
		panic(fmt.Sprintf("credential: build burn hash: %v", err))
	}
	return &Hasher{cost: cost, legacyPlaintext: allowLegacyPlaintext, burnHash: burn}
}

// Hash returns a salted bcrypt hash of password.
func (h *Hasher) Hash(password string) (string, error) {
	if password == "" {
		return "", fmt.Errorf("hash password: empty input")
	}
	b, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(b), nil
}

// Verify reports whether password matches hash. Malformed or unknown hash
// formats yield false.
func (h *Hasher) Verify(password, hash string) bool {
	if !isBcrypt(hash) {
		return h.legacyPlaintext && legacyPlaintextMatch(password, hash)
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// Burn spends roughly the time of one Verify call against a hash of the
// configured cost. Used when the login is unknown so response timing does
// not reveal account existence.
func (h *Hasher) Burn(password string) {
	_ = bcrypt.CompareHashAndPassword(h.burnHash, []byte(password))
}

func isBcrypt(hash string) bool {
	_, err := bcrypt.Cost([]byte(hash))
	return err == nil
}

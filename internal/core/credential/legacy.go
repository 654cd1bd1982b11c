package credential

import "crypto/subtle"

// Compatibility shims for records that predate hashed credentials.
// Both are scheduled for removal once every account has rotated its
// password; do not extend them.

// LegacyTempPassword is the fixed temporary credential the desktop client
// used to hand out on reset.
const LegacyTempPassword = "Temp123!"

// legacyPlaintextMatch accepts a stored value that was never hashed and
// equals the presented password verbatim.
func legacyPlaintextMatch(password, stored string) bool {
	if stored == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(password), []byte(stored)) == 1
}

// FixedTempPassword always issues LegacyTempPassword.
type FixedTempPassword struct{}

func (FixedTempPassword) TempPassword() (string, error) {
	return LegacyTempPassword, nil
}

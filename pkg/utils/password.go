package utils

import (
	"crypto/subtle"

	"golang.org/x/crypto/bcrypt"
)

// Credential is the single mocked login of the demo: one username, one
// bcrypt hash. The plain password never stays in memory after startup.
type Credential struct {
	Username string
	hash     []byte
}

// NewCredential meng-hash password sekali saat startup
func NewCredential(username, password string) (Credential, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return Credential{}, err
	}
	return Credential{Username: username, hash: hash}, nil
}

// Match membandingkan inputan login dengan credential yang dikonfigurasi
func (c Credential) Match(username, password string) bool {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(c.Username)) == 1
	passOK := bcrypt.CompareHashAndPassword(c.hash, []byte(password)) == nil
	return userOK && passOK
}

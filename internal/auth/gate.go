package auth

import (
	"crypto/subtle"
	"errors"

	"golang.org/x/crypto/bcrypt"
)

var ErrUnauthorized = errors.New("unauthorized")

// ErrForbidden is returned when the target exists but may not be shown or
// shared without the credential (drafts, private walls).
var ErrForbidden = errors.New("forbidden")

// Capability is proof that a request presented the shared secret.
// The zero value grants nothing.
type Capability struct {
	granted bool
}

func (c Capability) Granted() bool { return c.granted }

// Or returns a granted capability if either c or o is granted.
func (c Capability) Or(o Capability) Capability {
	return Capability{granted: c.granted || o.granted}
}

// Require returns ErrUnauthorized unless c is granted.
func (c Capability) Require() error {
	if !c.granted {
		return ErrUnauthorized
	}
	return nil
}

// Gate holds the single shared secret, either as plaintext or as a bcrypt hash.
type Gate struct {
	secret []byte
	hash   []byte
}

func NewGate(secret, bcryptHash string) *Gate {
	g := &Gate{}
	if bcryptHash != "" {
		g.hash = []byte(bcryptHash)
	} else {
		g.secret = []byte(secret)
	}
	return g
}

func (g *Gate) IsAuthorized(supplied string) bool {
	if supplied == "" {
		return false
	}
	if g.hash != nil {
		return bcrypt.CompareHashAndPassword(g.hash, []byte(supplied)) == nil
	}
	if len(g.secret) == 0 {
		return false
	}
	return subtle.ConstantTimeCompare(g.secret, []byte(supplied)) == 1
}

func (g *Gate) Check(supplied string) Capability {
	return Capability{granted: g.IsAuthorized(supplied)}
}

func HashPassword(pw string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

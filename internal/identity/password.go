package identity

import (
	"errors"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

// PasswordHasher hashes and verifies login passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

type BcryptHasher struct {
	Cost int
}

func NewBcryptHasher(cost int) BcryptHasher {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return BcryptHasher{Cost: cost}
}

func (h BcryptHasher) Hash(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), h.Cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (h BcryptHasher) Compare(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

// maxPasswordLen is the longest input bcrypt accepts.
const maxPasswordLen = 72

var ErrWeakPassword = errors.New("password must have 8 to 72 letters or digits, with one uppercase, one lowercase and one digit")

// checkPassword enforces 8 to 72 ASCII letters/digits including an
// uppercase letter, a lowercase letter and a digit.
func checkPassword(pw string) error {
	if len(pw) < 8 || len(pw) > maxPasswordLen {
		return ErrWeakPassword
	}
	var upper, lower, digit bool
	for _, r := range pw {
		switch {
		case r > unicode.MaxASCII:
			return ErrWeakPassword
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		default:
			return ErrWeakPassword
		}
	}
	if !upper || !lower || !digit {
		return ErrWeakPassword
	}
	return nil
}

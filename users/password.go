package users

import "golang.org/x/crypto/bcrypt"

func HashPassword(password string) ([]byte, error) {
	return bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
}

// CheckPassword reports whether password matches the stored hash.
func (a *Account) CheckPassword(password string) bool {
	if len(a.PasswordHash) == 0 {
		return false
	}
	return bcrypt.CompareHashAndPassword(a.PasswordHash, []byte(password)) == nil
}

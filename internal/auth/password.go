package auth

import (
	"golang.org/x/crypto/bcrypt"
)

// MinPasswordLength: минимальная длина пароля при регистрации.
const MinPasswordLength = 6

// HashPassword хеширует пароль bcrypt. Стоимость ниже 10 поднимается до 10.
func HashPassword(password string, cost int) (string, error) {
	if cost < bcrypt.DefaultCost {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

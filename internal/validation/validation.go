// Package validation содержит функции валидации входных данных клиента.
package validation

import (
	"regexp"
	"strings"
)

// MinPasswordLength задаёт минимальную длину пароля, принимаемую сервером.
const MinPasswordLength = 6

var (
	emailRe = regexp.MustCompile(`^[A-Za-z0-9+_.-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)
	phoneRe = regexp.MustCompile(`^\+?[0-9]{8,15}$`)
)

// IsValidEmail проверяет формат адреса электронной почты.
func IsValidEmail(email string) bool {
	return emailRe.MatchString(strings.TrimSpace(email))
}

// IsValidPhone проверяет формат номера телефона: необязательный «+» и от 8 до 15 цифр.
func IsValidPhone(phone string) bool {
	return phoneRe.MatchString(phone)
}

// Credentials проверяет пару email/пароль и возвращает текст первой найденной ошибки.
// Пустая строка означает, что данные корректны.
func Credentials(email, password string) string {
	email = strings.TrimSpace(email)
	switch {
	case email == "":
		return "email is required"
	case !IsValidEmail(email):
		return "invalid email"
	case password == "":
		return "password is required"
	case len(password) < MinPasswordLength:
		return "password must be at least 6 characters"
	default:
		return ""
	}
}

// Registration проверяет данные формы регистрации. Телефон необязателен.
func Registration(name, email, password, confirmation, phone string) string {
	if strings.TrimSpace(name) == "" {
		return "name is required"
	}
	if msg := Credentials(email, password); msg != "" {
		return msg
	}
	if password != confirmation {
		return "passwords do not match"
	}
	if phone != "" && !IsValidPhone(phone) {
		return "invalid phone number"
	}
	return ""
}

package validation

import "testing"

func TestIsValidEmail(t *testing.T) {
	tests := []struct {
		name  string
		email string
		valid bool
	}{
		{name: "plain", email: "user@example.com", valid: true},
		{name: "plus and dots", email: "first.last+tag@mail.example.org", valid: true},
		{name: "surrounding spaces", email: "  user@example.com ", valid: true},
		{name: "no at", email: "user.example.com", valid: false},
		{name: "short tld", email: "user@example.c", valid: false},
		{name: "empty", email: "", valid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValidEmail(tt.email); got != tt.valid {
				t.Fatalf("IsValidEmail(%q) = %v, want %v", tt.email, got, tt.valid)
			}
		})
	}
}

func TestIsValidPhone(t *testing.T) {
	tests := []struct {
		phone string
		valid bool
	}{
		{phone: "+5491122334455", valid: true},
		{phone: "12345678", valid: true},
		{phone: "1234567", valid: false},
		{phone: "12-34-56-78", valid: false},
	}

	for _, tt := range tests {
		if got := IsValidPhone(tt.phone); got != tt.valid {
			t.Fatalf("IsValidPhone(%q) = %v, want %v", tt.phone, got, tt.valid)
		}
	}
}

func TestCredentials(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		password string
		want     string
	}{
		{name: "ok", email: "a@b.co", password: "secret", want: ""},
		{name: "missing email", email: " ", password: "secret", want: "email is required"},
		{name: "bad email", email: "nope", password: "secret", want: "invalid email"},
		{name: "missing password", email: "a@b.co", password: "", want: "password is required"},
		{name: "short password", email: "a@b.co", password: "12345", want: "password must be at least 6 characters"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Credentials(tt.email, tt.password); got != tt.want {
				t.Fatalf("Credentials() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRegistration(t *testing.T) {
	if got := Registration("", "a@b.co", "secret", "secret", ""); got != "name is required" {
		t.Fatalf("got %q", got)
	}
	if got := Registration("Ann", "a@b.co", "secret", "other1", ""); got != "passwords do not match" {
		t.Fatalf("got %q", got)
	}
	if got := Registration("Ann", "a@b.co", "secret", "secret", "abc"); got != "invalid phone number" {
		t.Fatalf("got %q", got)
	}
	if got := Registration("Ann", "a@b.co", "secret", "secret", "+12345678901"); got != "" {
		t.Fatalf("unexpected error %q", got)
	}
}

package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateEmail(t *testing.T) {
	t.Parallel()
	// 64 chars total: 53 local + @ + "example.com"
	emailAt64 := strings.Repeat("a", 52) + "@example.com"
	tests := []struct {
		name    string
		email   string
		wantErr bool
	}{
		{"Valid", "test@example.com", false},
		{"Exactly 64 Characters", emailAt64, false},
		{"Too Long", "a" + emailAt64, true},
		{"Too Short", "a@b.c", true},
		{"Invalid Format", "not-an-email", true},
		{"Missing Domain", "user@", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEmail(tt.email)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateLogin(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		email    string
		password string
		wantErr  bool
	}{
		{"Valid", "admin@example.com", "secret", false},
		{"Short Password", "admin@example.com", "12345", true},
		{"Long Password", "admin@example.com", strings.Repeat("p", 129), true},
		{"Max Password", "admin@example.com", strings.Repeat("p", 128), false},
		{"Bad Email", "admin", "secret", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateLogin(tt.email, tt.password)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateContact(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		email   string
		sender  string
		message string
		wantErr bool
	}{
		{"Valid", "reader@example.com", "Reader", "Hello there", false},
		{"Missing Name", "reader@example.com", "", "Hello", true},
		{"Blank Message", "reader@example.com", "Reader", "   ", true},
		{"Message Too Long", "reader@example.com", "Reader", strings.Repeat("m", 501), true},
		{"Message At Limit", "reader@example.com", "Reader", strings.Repeat("m", 500), false},
		{"Name Too Long", "reader@example.com", strings.Repeat("n", 129), "Hi", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateContact(tt.email, tt.sender, tt.message)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidatePost(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		title   string
		content string
		wantErr bool
	}{
		{"Valid", "Title", "Body", false},
		{"Title At Limit", strings.Repeat("t", 256), "Body", false},
		{"Title Too Long", strings.Repeat("t", 257), "Body", true},
		{"Multibyte Title At Limit", strings.Repeat("é", 256), "Body", false},
		{"Empty Title", "", "Body", true},
		{"Empty Content", "Title", "", true},
		{"Content Too Long", "Title", strings.Repeat("c", 100001), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePost(tt.title, tt.content)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateUsername(t *testing.T) {
	t.Parallel()
	assert.NoError(t, ValidateUsername("admin"))
	assert.Error(t, ValidateUsername(""))
	assert.Error(t, ValidateUsername("  "))
	assert.Error(t, ValidateUsername(strings.Repeat("u", 65)))
}

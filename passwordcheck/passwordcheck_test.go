// SPDX-License-Identifier: GPL-3.0-only

package passwordcheck

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestValidatePasswordMinLength(t *testing.T) {
	t.Setenv("PASSWORD_MIN_LENGTH", "")
	t.Setenv("PASSWORD_STRICT", "")
	t.Setenv("PWNED_PASSWORDS_ENABLED", "")
	ctx := context.Background()

	if err := ValidatePassword(ctx, "abcd"); err != nil {
		t.Errorf("Expected a 4 character password to pass, got %v", err)
	}
	if err := ValidatePassword(ctx, "abc"); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("Expected a 3 character password to fail, got %v", err)
	}
	if err := ValidatePassword(ctx, "    "); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("Expected a blank password to fail, got %v", err)
	}
	if err := ValidatePassword(ctx, "äöüß"); err != nil {
		t.Errorf("Expected length to be counted in runes, got %v", err)
	}

	t.Setenv("PASSWORD_MIN_LENGTH", "8")
	if err := ValidatePassword(ctx, "abcd"); err == nil {
		t.Error("Expected configured minimum length to apply")
	}
}

func TestValidatePasswordMaxBytes(t *testing.T) {
	p := Policy{MinLength: DefaultMinLength, MaxBytes: 72}
	ctx := context.Background()

	if err := p.Validate(ctx, strings.Repeat("a", 72)); err != nil {
		t.Errorf("Expected a 72 byte password to pass, got %v", err)
	}
	if err := p.Validate(ctx, strings.Repeat("a", 80)); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("Expected an 80 byte password to fail, got %v", err)
	}
	// 37 runes, 74 bytes
	if err := p.Validate(ctx, strings.Repeat("ä", 37)); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("Expected the cap to count bytes, got %v", err)
	}
	p.MaxBytes = 0
	if err := p.Validate(ctx, strings.Repeat("a", 200)); err != nil {
		t.Errorf("Expected no cap when MaxBytes is 0, got %v", err)
	}
}

func TestValidatePasswordStrict(t *testing.T) {
	p := Policy{MinLength: 8, Strict: true}
	ctx := context.Background()

	cases := map[string]bool{
		"MySecret@123": true,
		"mysecret@123": false,
		"MYSECRET@123": false,
		"MySecret@abc": false,
		"MySecret1234": false,
	}
	for password, ok := range cases {
		err := p.Validate(ctx, password)
		if ok && err != nil {
			t.Errorf("Expected %q to pass, got %v", password, err)
		}
		if !ok && err == nil {
			t.Errorf("Expected %q to fail", password)
		}
	}
}

func TestValidatePasswordPwned(t *testing.T) {
	sum := sha1.Sum([]byte("password1"))
	hash := strings.ToUpper(hex.EncodeToString(sum[:]))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, hash[:5]) {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		fmt.Fprintf(w, "0018A45C4D1DEF81644B54AB7F969B88D65:1\r\n%s:42\r\n", hash[5:])
	}))
	defer srv.Close()

	p := Policy{MinLength: 4, CheckPwned: true, PwnedAPIURL: srv.URL + "/range/", HTTPClient: srv.Client()}
	ctx := context.Background()

	if err := p.Validate(ctx, "password1"); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("Expected pwned password to be rejected, got %v", err)
	}
	if err := p.Validate(ctx, "an unlikely passphrase"); err != nil {
		t.Errorf("Expected unknown password to pass, got %v", err)
	}
}

func TestValidatePasswordPwnedAPIDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	p := Policy{MinLength: 4, CheckPwned: true, PwnedAPIURL: srv.URL + "/", HTTPClient: srv.Client()}
	if err := p.Validate(context.Background(), "password1"); err != nil {
		t.Errorf("Expected breach check failures not to block the password, got %v", err)
	}
}

func TestValidateEmail(t *testing.T) {
	valid := []string{"user@example.com", "first.last+tag@sub.example.org"}
	for _, e := range valid {
		if err := ValidateEmail(e); err != nil {
			t.Errorf("Expected %q to be valid, got %v", e, err)
		}
	}

	invalidEmails := []string{"", "user", "user@", "@example.com", "User <user@example.com>", "user@localhost"}
	for _, e := range invalidEmails {
		if err := ValidateEmail(e); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("Expected %q to be invalid, got %v", e, err)
		}
	}
}

func TestNormalizePhone(t *testing.T) {
	t.Setenv("DEFAULT_PHONE_REGION", "US")

	got, err := NormalizePhone("+1 650-253-0000")
	if err != nil {
		t.Fatalf("NormalizePhone failed: %v", err)
	}
	if got != "+16502530000" {
		t.Errorf("Expected +16502530000, got %s", got)
	}

	got, err = NormalizePhone("(650) 253-0000")
	if err != nil {
		t.Fatalf("NormalizePhone with default region failed: %v", err)
	}
	if got != "+16502530000" {
		t.Errorf("Expected +16502530000, got %s", got)
	}

	if _, err := NormalizePhone("12"); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("Expected short number to be rejected, got %v", err)
	}
	if _, err := NormalizePhone("not a phone"); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("Expected garbage to be rejected, got %v", err)
	}
}

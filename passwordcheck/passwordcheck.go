// SPDX-License-Identifier: GPL-3.0-only

package passwordcheck

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
	"usercred-server/commons"
)

const DefaultMinLength = 4

var ErrInvalidInput = errors.New("invalid input")

type Policy struct {
	MinLength   int
	// MaxBytes caps the encoded length of a password; 0 means no cap.
	MaxBytes    int
	Strict      bool
	CheckPwned  bool
	PwnedAPIURL string
	HTTPClient  *http.Client
}

func DefaultPolicy() Policy {
	return Policy{
		MinLength:   commons.GetEnvInt("PASSWORD_MIN_LENGTH", DefaultMinLength),
		Strict:      commons.GetEnvBool("PASSWORD_STRICT", false),
		CheckPwned:  commons.GetEnvBool("PWNED_PASSWORDS_ENABLED", false),
		PwnedAPIURL: commons.GetEnv("PWNED_PASSWORDS_API_URL", "https://api.pwnedpasswords.com/range/"),
		HTTPClient:  &http.Client{Timeout: 5 * time.Second},
	}
}

func ValidatePassword(ctx context.Context, password string) error {
	return DefaultPolicy().Validate(ctx, password)
}

func invalid(msg string) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, msg)
}

func (p Policy) Validate(ctx context.Context, password string) error {
	if strings.TrimSpace(password) == "" {
		return invalid("password is required")
	}
	if utf8.RuneCountInString(password) < p.MinLength {
		return invalid(fmt.Sprintf("password must be at least %d characters long", p.MinLength))
	}
	if p.MaxBytes > 0 && len(password) > p.MaxBytes {
		return invalid(fmt.Sprintf("password must be at most %d bytes long", p.MaxBytes))
	}

	if p.Strict {
		if !hasUppercase(password) {
			return invalid("password must contain at least one uppercase letter")
		}
		if !hasLowercase(password) {
			return invalid("password must contain at least one lowercase letter")
		}
		if !hasDigit(password) {
			return invalid("password must contain at least one digit")
		}
		if !hasSpecialChar(password) {
			return invalid("password must contain at least one special character (e.g., !@#$%)")
		}
	}

	if p.CheckPwned {
		pwned, err := p.checkPasswordPwned(ctx, password)
		if err != nil {
			commons.Logger.Error("Error checking pwned passwords:", err)
		}
		if pwned {
			return invalid("password has been found in data breaches (pwned); choose a different one")
		}
	}

	return nil
}

func (p Policy) checkPasswordPwned(ctx context.Context, password string) (bool, error) {
	hasher := sha1.New()
	hasher.Write([]byte(password))
	hash := strings.ToUpper(hex.EncodeToString(hasher.Sum(nil)))

	prefix, suffix := hash[:5], hash[5:]

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.PwnedAPIURL+prefix, nil)
	if err != nil {
		return false, fmt.Errorf("failed to create request: %w", err)
	}

	client := p.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return false, fmt.Errorf("HIBP API request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("HIBP API returned %s", resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return false, fmt.Errorf("failed to read HIBP response: %w", err)
	}

	for _, line := range strings.Split(string(body), "\n") {
		if hashSuffix, _, ok := strings.Cut(line, ":"); ok {
			if strings.TrimSpace(hashSuffix) == suffix {
				return true, nil
			}
		}
	}
	return false, nil
}

func hasUppercase(s string) bool {
	for _, r := range s {
		if unicode.IsUpper(r) {
			return true
		}
	}
	return false
}

func hasLowercase(s string) bool {
	for _, r := range s {
		if unicode.IsLower(r) {
			return true
		}
	}
	return false
}

func hasDigit(s string) bool {
	for _, r := range s {
		if unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

func hasSpecialChar(s string) bool {
	for _, r := range s {
		if unicode.IsSymbol(r) || unicode.IsPunct(r) {
			return true
		}
	}
	return false
}

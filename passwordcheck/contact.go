// SPDX-License-Identifier: GPL-3.0-only

package passwordcheck

import (
	"net/mail"
	"strings"
	"usercred-server/commons"

	"github.com/nyaruka/phonenumbers"
)

// ValidateEmail accepts a bare address such as "user@example.com".
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return invalid("please provide your email")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || addr.Name != "" {
		return invalid("please provide a valid email")
	}
	if _, domain, _ := strings.Cut(email, "@"); !strings.Contains(domain, ".") {
		return invalid("please provide a valid email")
	}
	return nil
}

// NormalizePhone returns phone in E.164 form. Numbers without a leading +
// are parsed in the DEFAULT_PHONE_REGION region.
func NormalizePhone(phone string) (string, error) {
	region := strings.ToUpper(commons.GetEnv("DEFAULT_PHONE_REGION", "US"))
	num, err := phonenumbers.Parse(strings.TrimSpace(phone), region)
	if err != nil {
		return "", invalid("please provide a valid phone number")
	}
	if !phonenumbers.IsValidNumber(num) {
		return "", invalid("please provide a valid phone number")
	}
	return phonenumbers.Format(num, phonenumbers.E164), nil
}

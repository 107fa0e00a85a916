package roster

import (
	"regexp"
	"strings"
)

var (
	contactSeparators = regexp.MustCompile(`[\s\-().]+`)
	bareDigits        = regexp.MustCompile(`^\d{10,15}$`)
	internationalForm = regexp.MustCompile(`^\+\d{10,15}$`)
)

// NormalizeContact rewrites a phone number into +<country><number> form where it can.
// Blank input is returned unchanged; anything unrecognisable is returned with separators removed.
func NormalizeContact(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return raw
	}

	phone := contactSeparators.ReplaceAllString(strings.TrimSpace(raw), "")
	if strings.HasPrefix(phone, "00") {
		phone = "+" + phone[2:]
	}

	switch {
	case internationalForm.MatchString(phone):
		return phone
	case bareDigits.MatchString(phone):
		return "+" + phone
	}
	return phone
}

func IsInternational(phone string) bool {
	return internationalForm.MatchString(phone)
}

package sanitizer

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// fallbackRegions are tried, in order, for numbers written without a country code.
var fallbackRegions = []string{
	"US",
	"GB",
}

// NormalizePhone converts a phone number to E.164. Unparseable input is returned
// trimmed so the e164 validation rule rejects it.
func NormalizePhone(phone string) string {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return ""
	}

	for _, region := range fallbackRegions {
		parsed, err := phonenumbers.Parse(phone, region)
		if err == nil && phonenumbers.IsPossibleNumber(parsed) {
			return phonenumbers.Format(parsed, phonenumbers.E164)
		}
	}
	return phone
}

package deel

import (
	"fmt"
	"strings"
)

// EmailIndex maps normalized worker emails to contract identifiers.
type EmailIndex map[string]string

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// BuildEmailIndex registers the primary and alternate emails of every
// contract with a worker. The first registration of an email wins, so the
// result is stable for a given contract order; an email claimed by more
// than one contract is reported as a warning instead of silently remapped.
func BuildEmailIndex(contracts []Contract) (EmailIndex, []string) {
	index := make(EmailIndex)
	var warnings []string

	register := func(email *string, contractID string) {
		if email == nil {
			return
		}
		normalized := NormalizeEmail(*email)
		if normalized == "" {
			return
		}
		existing, ok := index[normalized]
		if ok {
			if existing != contractID {
				warnings = append(warnings, fmt.Sprintf(
					"email %s is claimed by contracts %s and %s, keeping %s",
					normalized, existing, contractID, existing))
			}
			return
		}
		index[normalized] = contractID
	}

	for _, contract := range contracts {
		if contract.Worker == nil {
			continue
		}
		register(contract.Worker.Email, contract.ID)
		for _, alt := range contract.Worker.AlternateEmail {
			register(alt.Email, contract.ID)
		}
	}

	return index, warnings
}

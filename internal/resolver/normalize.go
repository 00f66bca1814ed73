package resolver

import "github.com/hammamikhairi/ottodraw/internal/domain"

// Normalize folds user text into the form catalog names are keyed by.
func Normalize(s string) string {
	return domain.NameKey(s)
}

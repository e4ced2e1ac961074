package accounts

import "sort"

// PruneScopes reduces a requested scope list to the defaults plus whatever
// requested scopes the allow list permits. Inputs are treated as sets, so
// duplicates collapse and order does not matter. A requested scope outside
// the allow list is dropped silently, not rejected. The result always
// contains every default scope and comes back sorted so equal sets compare
// equal.
func PruneScopes(requested, defaultScopes, allowedScopes []string) []string {
	allowed := make(map[string]struct{}, len(allowedScopes))
	for _, scope := range allowedScopes {
		allowed[scope] = struct{}{}
	}

	granted := make(map[string]struct{}, len(defaultScopes)+len(requested))
	for _, scope := range defaultScopes {
		granted[scope] = struct{}{}
	}
	for _, scope := range requested {
		if _, ok := allowed[scope]; ok {
			granted[scope] = struct{}{}
		}
	}

	scopes := make([]string, 0, len(granted))
	for scope := range granted {
		scopes = append(scopes, scope)
	}
	sort.Strings(scopes)

	return scopes
}

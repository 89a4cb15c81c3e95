package credential

import "github.com/nhle/onebox/internal/model"

// BackendKeyring selects OS keyring storage for account passwords;
// anything else keeps passwords in the database row.
const BackendKeyring = "keyring"

// Resolver returns the IMAP password for an account.
type Resolver func(acc model.Account) (string, error)

// DatabaseResolver reads the password from the account row itself.
func DatabaseResolver() Resolver {
	return func(acc model.Account) (string, error) {
		return acc.Password, nil
	}
}

// KeyringResolver reads the password from the OS keyring, keyed by the
// account ID. An inline password on the row takes precedence so
// partially migrated accounts keep working.
func KeyringResolver() Resolver {
	return func(acc model.Account) (string, error) {
		if acc.Password != "" {
			return acc.Password, nil
		}
		return Get(acc.ID)
	}
}

// ResolverFor picks the resolver matching a configured backend name.
func ResolverFor(backend string) Resolver {
	if backend == BackendKeyring {
		return KeyringResolver()
	}
	return DatabaseResolver()
}

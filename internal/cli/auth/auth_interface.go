package auth

// TokenStore defines the interface for token storage operations.
// This allows us to mock the keyring in tests.
type TokenStore interface {
	SaveToken(server, token string) error
	LoadToken(server string) (string, error)
	DeleteToken(server string) error
}

// defaultTokenStore implements TokenStore using the OS keyring
type defaultTokenStore struct{}

var Default TokenStore = &defaultTokenStore{}

func (d *defaultTokenStore) SaveToken(server, token string) error {
	return SaveToken(server, token)
}

func (d *defaultTokenStore) LoadToken(server string) (string, error) {
	return LoadToken(server)
}

func (d *defaultTokenStore) DeleteToken(server string) error {
	return DeleteToken(server)
}

package domain

import "errors"

var (
	// ErrCredentialsMissing is returned when the credential file does not exist
	ErrCredentialsMissing = errors.New("credential file not found")

	// ErrCredentialsInvalid is returned when the credential file cannot be parsed or lacks a field
	ErrCredentialsInvalid = errors.New("invalid credentials")
)

// Credentials is the Kaggle API identity read from kaggle.json
type Credentials struct {
	Username string `json:"username"`
	Key      string `json:"key"`
}

// Complete reports whether both the identity and the secret are present
func (c Credentials) Complete() bool {
	return c.Username != "" && c.Key != ""
}

// Package models defines server-side data models persisted in the database.
package models

import "time"

// Provider identifies where a subject's primary identity comes from.
type Provider string

const (
	ProviderLocal  Provider = "local"
	ProviderGoogle Provider = "google"
	ProviderGitHub Provider = "github"
)

func (p Provider) Valid() bool {
	switch p {
	case ProviderLocal, ProviderGoogle, ProviderGitHub:
		return true
	}
	return false
}

// Subject is an account that can log in.
type Subject struct {
	ID    string
	Email string
	Name  string
	// PasswordHash is an argon2id PHC string. Empty for federated-only subjects.
	PasswordHash string
	Provider     Provider
	Roles        []string

	// SecondFactorSecret is the base32 TOTP secret, empty when never provisioned.
	SecondFactorSecret  string
	SecondFactorEnabled bool

	CreatedAt time.Time
}

// LoginActivity counts the logins of a subject on one calendar day (UTC).
type LoginActivity struct {
	SubjectID string
	Day       time.Time
	Count     int
}

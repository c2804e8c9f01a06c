package rpc

import "time"

// Login states as they appear on the wire.
const (
	StateIssued               = "issued_directly"
	StateAwaitingSecondFactor = "awaiting_second_factor"
	StateIssuedAfterVerify    = "issued_after_verification"
)

type Empty struct{}

type PingResponse struct {
	Status string `json:"status"`
}

type RegisterRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name,omitempty"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type CompleteSecondFactorRequest struct {
	SubjectID string `json:"subject_id"`
	Code      string `json:"code"`
}

// FederatedLoginRequest carries what an external identity provider
// asserted about a user. Only trusted gateways may send it.
type FederatedLoginRequest struct {
	Provider string `json:"provider"`
	Email    string `json:"email,omitempty"`
	Name     string `json:"name,omitempty"`
	Login    string `json:"login,omitempty"`
}

// LoginResponse is returned by every login step. Credential and ExpiresAt
// are empty while State is StateAwaitingSecondFactor.
type LoginResponse struct {
	State      string     `json:"state"`
	SubjectID  string     `json:"subject_id"`
	Credential string     `json:"credential,omitempty"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
}

type ValidateRequest struct {
	Credential string `json:"credential"`
}

type ValidateResponse struct {
	SubjectID string    `json:"subject_id"`
	Roles     []string  `json:"roles"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

type ProvisionResponse struct {
	Secret string `json:"secret"`
	URL    string `json:"url"`
}

type CodeRequest struct {
	Code string `json:"code"`
}

type VerifyResponse struct {
	Valid bool `json:"valid"`
}

type StatusResponse struct {
	Enabled bool `json:"enabled"`
}

type ActivityDay struct {
	Day   string `json:"day"` // YYYY-MM-DD, UTC
	Count int    `json:"count"`
}

type LoginActivityResponse struct {
	Days []ActivityDay `json:"days"`
}

package common

// AuthorizationHeaderName is the gRPC metadata key carrying the bearer
// credential on outbound requests.
const AuthorizationHeaderName = "authorization"

// BearerPrefix precedes the credential in the authorization header value.
const BearerPrefix = "Bearer "

// Role names granted by the server.
const (
	RoleUser       = "ROLE_USER"
	RoleOAuth2User = "OAUTH2_USER"
)

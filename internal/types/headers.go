package types

const (
	HeaderRequestID     = "X-Request-ID"
	HeaderAuthorization = "Authorization"
	HeaderAdminAPIKey   = "x-admin-api-key"
)

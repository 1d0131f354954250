// Package ctxkeys provides the context keys shared by the HTTP layers.
package ctxkeys

// Key is the type for all context keys in the application.
// Using a dedicated type prevents collisions with keys from other packages.
type Key string

const (
	// KeyRequestID holds the request id string set by the server middleware.
	KeyRequestID Key = "request_id"

	// KeyUserID holds the int64 id of the caller as forwarded by the upstream gateway.
	KeyUserID Key = "user_id"
)

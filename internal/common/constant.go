package common

const (
	// AuthorizationHeaderName carries "Bearer <token>" on HTTP requests and
	// as lower-case gRPC metadata.
	AuthorizationHeaderName = "Authorization"

	// BearerScheme is the authorization scheme accepted by the interceptors.
	BearerScheme = "Bearer"
)

package common

// Cookie names shared by the HTTP transport and the CLI client.
const (
	AccessTokenCookieName  = "accessToken"
	RefreshTokenCookieName = "refreshToken"
)

// AuthorizationHeaderName carries "Bearer <access token>" for non-browser clients.
const AuthorizationHeaderName = "Authorization"

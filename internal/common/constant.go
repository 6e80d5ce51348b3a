package common

// AuthorizationHeaderName is the HTTP header carrying the access token on
// inbound requests.
const AuthorizationHeaderName = "Authorization"

// BearerPrefix is the token scheme prefix expected in the Authorization header.
const BearerPrefix = "Bearer "

// TokenTypeBearer is the token_type value returned by login and refresh.
const TokenTypeBearer = "Bearer"

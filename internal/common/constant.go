package common

// TokenCookieName is the cookie used to carry the session token on
// inbound requests.
const TokenCookieName = "token"

package common

// TokenTypeBearer is the token_type value reported in issuance responses and
// the scheme used in the Authorization header.
const TokenTypeBearer = "Bearer"

// AuthPathPrefix marks the endpoints that must never receive an Authorization
// header from the client (login, register, refresh, logout).
const AuthPathPrefix = "/api/auth/"

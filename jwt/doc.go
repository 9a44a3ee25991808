// Package jwt provides the default signed bearer-credential issuer for
// goSession. The wire format stays opaque to the lifecycle core: the Service
// consumes only the issuer interface, and nothing outside this package
// inspects claims.
//
// Supported signing methods are ed25519 (default) and HS256. Every issued
// credential carries a unique token ID (jti) so the blacklist can revoke it
// individually.
package jwt

// Package internal holds shared helpers for the goSession module: refresh
// secret generation, credential-ID derivation, and the opaque refresh token
// codec. Nothing here touches the store.
package internal

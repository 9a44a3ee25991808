// Package stores contains the bearer-credential blacklist: a TTL deny-list
// keyed by credential ID whose entries never outlive the credential they
// revoke.
package stores

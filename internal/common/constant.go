// Package common contains shared constants and sentinel errors used across
// GophStore components.
package common

// AuthorizationHeaderName is the HTTP header carrying the bearer token on
// authenticated storefront requests.
const AuthorizationHeaderName = "Authorization"

// BearerPrefix precedes the access token in the Authorization header.
const BearerPrefix = "Bearer "

// PreferenceStorageKey is the fixed key under which the client persists its
// preference blob.
const PreferenceStorageKey = "storefront-storage"

// TraceIDHeaderName carries the client's per-request trace id so client and
// server logs can be correlated.
const TraceIDHeaderName = "X-Trace-ID"

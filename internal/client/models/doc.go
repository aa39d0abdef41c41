// Package models defines the storefront records exchanged with the backend:
// products and their images, catalog options, and list characters.
// Field names follow the backend's JSON contract.
package models

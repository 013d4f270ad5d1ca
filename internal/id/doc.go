// Package id derives the stable identifiers used across the interchange engine.
//
// Identifiers are deterministic so that importing the same document twice
// yields the same IDs:
//
//   - Slug: a lowercase, ASCII, dash-separated form of a display name
//   - EndpointID: the slug of an endpoint's path and method
//   - Stable: a name-based UUID (SHA-1, RFC 4122 version 5) for formats that
//     want UUID-shaped identifiers
//   - Set: hands out unique IDs within one scope, suffixing collisions
//     with -2, -3 and so on
package id

// Package accounts is an identity and credential subsystem: it registers
// accounts, authenticates them, issues and revokes session tokens, enforces
// a whitelist of authorization scopes, and manages expiring single-use
// password reset tokens.
//
// Components:
//   - CredentialStore owns account records, email uniqueness, and password
//     hashing. Registration is a compare-and-insert: concurrent attempts on
//     the same email produce exactly one account.
//   - PruneScopes is the stateless scope authorizer: defaults union the
//     allowed subset of what was requested.
//   - TokenService signs session tokens (HMAC over a canonical claims
//     encoding) and tracks revocation through session records. Token
//     integrity is verifiable offline; validity requires the store.
//   - ResetTokenManager issues short-lived single-use reset tokens, storing
//     only their hash, and consumes each at most once even under concurrent
//     confirmation attempts.
//   - Service sequences the components behind the six operations a request
//     layer consumes: Register, Login, Logout, VerifyToken,
//     CreateResetAndNotify, ConfirmReset. Transport, routing, and email
//     delivery stay outside this package.
//
// Stores are explicit: the same code runs against the SQL-backed BunStore
// or the MemoryStore, both honoring the same atomicity contracts.
package accounts

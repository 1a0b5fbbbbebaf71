// Package password provides Argon2id password hashing for Drishya accounts.
//
// Hashes are encoded as PHC-style strings and are treated as untrusted input
// during verification: decoding is strict, and hashes carrying parameters far
// above the configured maxima are refused before any key derivation runs.
package password

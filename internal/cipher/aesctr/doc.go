// Package aesctr implements AES-256 in counter mode and its engines.
//
// The block cipher and key schedule follow FIPS-197; the counter follows NIST SP 800-38A
// with a full 128-bit increment. No padding is applied: a trailing partial block
// consumes only as many keystream bytes as it needs.
package aesctr

// Package errors provides the structured error type shared by every authkit
// package. Each AppError carries a machine-readable code, a human message and
// optional details; sentinel values allow matching by code with errors.Is.
package errors

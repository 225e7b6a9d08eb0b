// Package encryption seals short secrets, such as stored tokens, with an
// AEAD cipher keyed from a passphrase.
//
// Ciphertexts are base64 strings carrying their nonce, so they fit any
// string-valued storage backend. Associated data binds a ciphertext to its
// context (e.g. the storage key); opening it under another context fails.
//
//	enc, err := encryption.New(passphrase)
//	sealed, err := enc.Seal("token", []byte("access_token"))
//	plain, err := enc.Open(sealed, []byte("access_token"))
package encryption

// Package auth verifies credentials for HTTP Basic authentication.
//
// Passwords are stored as bcrypt hashes ([BcryptHasher]). The [Verifier]
// resolves a username through the user store and compares the supplied
// password with the stored hash, returning the same [ErrInvalidCredentials]
// whether the username is unknown or the password is wrong.
//
// Basic Auth sends credentials base64 encoded, not encrypted. Serve the API
// behind TLS.
package auth

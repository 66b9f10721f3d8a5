package oauth

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"

	"golang.org/x/oauth2"
)

// GenerateCodeVerifier returns a high-entropy random PKCE code verifier in
// the URL-safe alphabet, at least 43 characters long per RFC 7636.
func GenerateCodeVerifier() string {
	return oauth2.GenerateVerifier()
}

// ComputeS256Challenge computes the OAuth PKCE S256 challenge from a
// verifier: SHA-256 then URL-safe base64 without padding.
func ComputeS256Challenge(verifier string) string {
	hash := sha256.Sum256([]byte(verifier))
	return base64.RawURLEncoding.EncodeToString(hash[:])
}

// GeneratePKCE returns a fresh verifier/challenge pair. The verifier is never
// transmitted; the challenge goes into the authorization URL.
func GeneratePKCE() (verifier, challenge string) {
	verifier = GenerateCodeVerifier()
	return verifier, ComputeS256Challenge(verifier)
}

// ValidatePKCE reports whether the verifier matches the challenge under the
// given method. Only S256 is accepted.
func ValidatePKCE(verifier, challenge, method string) bool {
	if method != "S256" {
		return false
	}
	if len(verifier) < 43 || len(verifier) > 128 {
		return false
	}
	computed := ComputeS256Challenge(verifier)
	return subtle.ConstantTimeCompare([]byte(computed), []byte(challenge)) == 1
}

// ValidateCodeChallenge checks the challenge is a plausible S256 value:
// 43 characters of the unreserved URL-safe alphabet.
func ValidateCodeChallenge(challenge string) bool {
	if len(challenge) != 43 {
		return false
	}
	for _, r := range challenge {
		switch {
		case r >= 'A' && r <= 'Z':
		case r >= 'a' && r <= 'z':
		case r >= '0' && r <= '9':
		case r == '-' || r == '_':
		default:
			return false
		}
	}
	return true
}

package testclient

import (
	"github.com/golang-jwt/jwt/v5"

	"github.com/kbukum/httptestkit/errors"
)

// SignJWT signs claims with key using HS256 and returns the compact token.
func SignJWT(claims jwt.Claims, key []byte) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(key)
	if err != nil {
		return "", errors.InvalidRequest("unable to sign token").WithCause(err)
	}
	return signed, nil
}

// SignedJWT signs claims with key (HS256) and sends the result as a bearer
// token, for services that authenticate with shared-secret JWTs.
//
//	resp, err := client.Get("/me").
//	    SignedJWT(jwt.MapClaims{"sub": "user-1"}, secret).
//	    Send(ctx)
func (b *RequestBuilder) SignedJWT(claims jwt.Claims, key []byte) *RequestBuilder {
	token, err := SignJWT(claims, key)
	if err != nil {
		b.fail(err)
		return b
	}
	return b.BearerToken(token)
}

// APIKey sets a header carrying an API key. An empty name uses X-API-Key.
func (b *RequestBuilder) APIKey(name, key string) *RequestBuilder {
	if name == "" {
		name = "X-API-Key"
	}
	return b.Header(name, key)
}

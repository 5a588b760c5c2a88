package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
)

func newToken(raw string) *oauth2.Token {
	return &oauth2.Token{
		AccessToken: raw,
		TokenType:   "Bearer",
		Expiry:      expiryOf(raw),
	}
}

// expiryOf reads the exp claim of a JWT credential. The signature is not
// checked: the clinic API does that, the console only needs to know when to
// stop presenting the token. Opaque credentials have no expiry.
func expiryOf(raw string) time.Time {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return time.Time{}
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.Time
}

// Package auth builds the Authorization header value a session attaches
// to its dial request, and helps diagnose a bearer token's freshness
// without verifying its signature (verification is the server's job).
package auth

import (
	"encoding/base64"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"
)

// BasicHeader builds a "Basic <base64(user:pass)>" Authorization value.
func BasicHeader(username, password string) string {
	raw := username + ":" + password
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(raw))
}

// BearerHeader builds a "Bearer <token>" Authorization value.
func BearerHeader(token string) string {
	return "Bearer " + token
}

// LogTokenExpiry decodes a JWT bearer token's claims without verifying its
// signature and logs a warning if it is already expired or expires within
// warnWithin. Decode failures (non-JWT opaque tokens) are logged at debug
// and otherwise ignored, since ETP access tokens are not required to be
// JWTs.
func LogTokenExpiry(token string, warnWithin time.Duration) {
	parser := jwt.NewParser()
	claims := jwt.MapClaims{}
	_, _, err := parser.ParseUnverified(token, claims)
	if err != nil {
		log.Debug().Err(err).Msg("auth: token is not a parseable JWT, skipping expiry check")
		return
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return
	}

	remaining := time.Until(exp.Time)
	switch {
	case remaining <= 0:
		log.Warn().Time("expired_at", exp.Time).Msg("auth: bearer token is already expired")
	case remaining <= warnWithin:
		log.Warn().Time("expires_at", exp.Time).Dur("remaining", remaining).Msg("auth: bearer token expires soon")
	}
}

// HeaderForCredentials picks the Authorization scheme from whichever
// credential is set, preferring an explicit access token over
// username/password. Returns "" if neither is set.
func HeaderForCredentials(username, password, accessToken string) string {
	if accessToken != "" {
		return BearerHeader(accessToken)
	}
	if username != "" || password != "" {
		return BasicHeader(username, password)
	}
	return ""
}

// ErrNoCredentials is returned by callers that require an Authorization
// header but were given none.
var ErrNoCredentials = fmt.Errorf("auth: no username/password or access token configured")

package domain

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
	"time"
)

var ErrMalformedCredential = errors.New("malformed credential")

// Claims is the set of fields this service mints into a credential.
type Claims struct {
	UserID string `json:"sub"`
	Email  string `json:"email"`
	Role   Role   `json:"role"`
	Exp    int64  `json:"exp"`
}

// DecodeExpiry extracts the expiry instant from a bearer credential without
// verifying its signature. The expiry watcher only needs the instant to
// schedule a local logout; the backend remains the authority on validity.
// Any structural defect maps to ErrMalformedCredential.
func DecodeExpiry(token string) (time.Time, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return time.Time{}, ErrMalformedCredential
	}

	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return time.Time{}, ErrMalformedCredential
	}

	var body struct {
		Exp int64 `json:"exp"`
	}
	if err := json.Unmarshal(payload, &body); err != nil || body.Exp == 0 {
		return time.Time{}, ErrMalformedCredential
	}

	return time.Unix(body.Exp, 0), nil
}

package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/melodiia/voicerelay/internal/domain"
)

// Verifier checks HS256 tokens minted by the account service. The relay
// never issues tokens; it only validates the signature and extracts the
// user_id claim as the connection's identity.
type Verifier struct {
	secret []byte
	now    func() time.Time
}

func NewVerifier(secret string) Verifier {
	return Verifier{secret: []byte(secret), now: time.Now}
}

type jwtHeader struct {
	Alg string `json:"alg"`
	Typ string `json:"typ"`
}

type jwtClaims struct {
	UserID any   `json:"user_id"`
	Exp    int64 `json:"exp"`
}

// VerifyIdentity validates token and returns the identity it carries.
func (v Verifier) VerifyIdentity(token string) (domain.Identity, error) {
	headerB64, payloadB64, sigB64, ok := splitToken(token)
	if !ok {
		return "", ErrInvalidToken
	}

	headerJSON, err := base64.RawURLEncoding.DecodeString(headerB64)
	if err != nil {
		return "", ErrInvalidToken
	}
	var header jwtHeader
	if err := json.Unmarshal(headerJSON, &header); err != nil {
		return "", ErrInvalidToken
	}
	if header.Alg != "HS256" {
		return "", ErrInvalidToken
	}

	sig, err := base64.RawURLEncoding.DecodeString(sigB64)
	if err != nil {
		return "", ErrInvalidToken
	}
	mac := hmac.New(sha256.New, v.secret)
	mac.Write([]byte(headerB64 + "." + payloadB64))
	if !hmac.Equal(sig, mac.Sum(nil)) {
		return "", ErrInvalidToken
	}

	payloadJSON, err := base64.RawURLEncoding.DecodeString(payloadB64)
	if err != nil {
		return "", ErrInvalidToken
	}
	var claims jwtClaims
	if err := json.Unmarshal(payloadJSON, &claims); err != nil {
		return "", ErrInvalidToken
	}
	if claims.Exp != 0 && v.now().Unix() >= claims.Exp {
		return "", ErrExpiredToken
	}

	id, ok := identityClaim(claims.UserID)
	if !ok {
		return "", ErrInvalidToken
	}
	return id, nil
}

func splitToken(token string) (header, payload, sig string, ok bool) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return "", "", "", false
	}
	return parts[0], parts[1], parts[2], true
}

// identityClaim accepts the user_id claim as either a JSON number (the
// account service encodes the primary key) or a string.
func identityClaim(raw any) (domain.Identity, bool) {
	switch v := raw.(type) {
	case string:
		if v == "" {
			return "", false
		}
		return domain.Identity(v), true
	case float64:
		return domain.Identity(strconv.FormatInt(int64(v), 10)), true
	default:
		return "", false
	}
}

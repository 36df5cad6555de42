package mercari

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DPoPSigner implements Signer with a DPoP proof (RFC 9449 style): an
// ES256 JWT carrying the request method, URL and a per-request
// identifier, with the ephemeral public key embedded as a JWK. A fresh
// key pair is generated per signer so instances are not correlatable.
type DPoPSigner struct {
	key *ecdsa.PrivateKey
}

func NewDPoPSigner() (*DPoPSigner, error) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generate signing key: %w", err)
	}
	return &DPoPSigner{key: key}, nil
}

func (s *DPoPSigner) Sign(method, url, requestID string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodES256, jwt.MapClaims{
		"htm":  method,
		"htu":  url,
		"jti":  requestID,
		"uuid": requestID,
		"iat":  time.Now().Unix(),
	})
	token.Header["typ"] = "dpop+jwt"
	token.Header["jwk"] = s.publicJWK()

	signed, err := token.SignedString(s.key)
	if err != nil {
		return "", fmt.Errorf("sign proof token: %w", err)
	}
	return signed, nil
}

func (s *DPoPSigner) publicJWK() map[string]string {
	pub := s.key.PublicKey
	return map[string]string{
		"kty": "EC",
		"crv": "P-256",
		"x":   base64.RawURLEncoding.EncodeToString(padCoordinate(pub.X.Bytes())),
		"y":   base64.RawURLEncoding.EncodeToString(padCoordinate(pub.Y.Bytes())),
	}
}

// padCoordinate left-pads a P-256 coordinate to its fixed 32-byte width.
func padCoordinate(b []byte) []byte {
	const size = 32
	if len(b) >= size {
		return b
	}
	out := make([]byte, size)
	copy(out[size-len(b):], b)
	return out
}

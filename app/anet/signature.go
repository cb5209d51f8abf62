package anet

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"strings"

	"github.com/vibast-solutions/ms-go-authorizenet/app/entity"
)

const signaturePrefix = "sha512="

// VerifySignature checks that the webhook notification body was signed with
// the profile's signature key. The header carries "sha512=" followed by the
// uppercase hex HMAC-SHA512 of the exact raw body. hexKey selects between
// the two deployment generations of key encoding: the raw secret string, or
// a hex string that must be decoded to the key bytes first.
func VerifySignature(profile *entity.PaymentProfile, signatureHeader string, body []byte, hexKey bool) bool {
	key := []byte(profile.SignatureKey)
	if hexKey {
		decoded, err := hex.DecodeString(profile.SignatureKey)
		if err != nil {
			return false
		}
		key = decoded
	}

	mac := hmac.New(sha512.New, key)
	_, _ = mac.Write(body)
	expected := signaturePrefix + strings.ToUpper(hex.EncodeToString(mac.Sum(nil)))

	return hmac.Equal([]byte(expected), []byte(signatureHeader))
}

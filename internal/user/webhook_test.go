package user

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"
)

func sign(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifySignature(t *testing.T) {
	body := []byte(`{"type":"user.created","data":{"id":"user_1"}}`)
	secret := "whsec_test"

	if !VerifySignature(body, sign(body, secret), secret) {
		t.Error("valid signature rejected")
	}
	if VerifySignature(body, sign(body, "other_secret"), secret) {
		t.Error("signature from wrong secret accepted")
	}
	if VerifySignature([]byte(`{"tampered":true}`), sign(body, secret), secret) {
		t.Error("signature for different body accepted")
	}
}

func TestVerifySignatureRejectsEmpty(t *testing.T) {
	body := []byte(`{}`)
	if VerifySignature(body, "", "whsec_test") {
		t.Error("empty signature accepted")
	}
	if VerifySignature(body, sign(body, ""), "") {
		t.Error("empty secret accepted")
	}
}

package services

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"sort"
	"strings"
	"testing"
)

const testBotToken = "123456:TEST-TOKEN"

// signInitData builds a correctly signed initData payload the way Telegram
// does: check string over decoded values, HMAC keyed by
// SHA256("WebAppData" + bot token).
func signInitData(botToken string, fields map[string]string) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		lines = append(lines, k+"="+fields[k])
	}
	secret := sha256.Sum256([]byte("WebAppData" + botToken))
	mac := hmac.New(sha256.New, secret[:])
	mac.Write([]byte(strings.Join(lines, "\n")))
	hash := hex.EncodeToString(mac.Sum(nil))

	v := url.Values{}
	for k, val := range fields {
		v.Set(k, val)
	}
	v.Set("hash", hash)
	return v.Encode()
}

func validFields() map[string]string {
	return map[string]string{
		"auth_date": "1700000000",
		"query_id":  "AAF9tT0aAAAAAH21PRpBqmHS",
		"user":      `{"id":987654321,"username":"alice","first_name":"Alice"}`,
	}
}

func TestVerifyInitDataAccepted(t *testing.T) {
	svc := NewAuthService(Config{BotToken: testBotToken})

	data, err := svc.VerifyInitData(signInitData(testBotToken, validFields()))
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if data.User.ID != 987654321 {
		t.Fatalf("user id = %d, want 987654321", data.User.ID)
	}
	if data.User.Username != "alice" {
		t.Fatalf("username = %q, want alice", data.User.Username)
	}
	if data.Fields["auth_date"] != "1700000000" {
		t.Fatalf("auth_date = %q", data.Fields["auth_date"])
	}
}

func TestVerifyInitDataTamperedFieldRejected(t *testing.T) {
	svc := NewAuthService(Config{BotToken: testBotToken})

	payload := signInitData(testBotToken, validFields())
	tampered := strings.Replace(payload, "alice", "alicf", 1)
	if tampered == payload {
		t.Fatal("tampering had no effect on payload")
	}
	if _, err := svc.VerifyInitData(tampered); err == nil {
		t.Fatal("tampered payload accepted")
	}
}

func TestVerifyInitDataTamperedHashRejected(t *testing.T) {
	svc := NewAuthService(Config{BotToken: testBotToken})

	payload := signInitData(testBotToken, validFields())
	last := payload[len(payload)-1]
	flip := byte('0')
	if last == '0' {
		flip = '1'
	}
	tampered := payload[:len(payload)-1] + string(flip)
	if _, err := svc.VerifyInitData(tampered); err == nil {
		t.Fatal("payload with flipped hash accepted")
	}
}

func TestVerifyInitDataWrongBotTokenRejected(t *testing.T) {
	svc := NewAuthService(Config{BotToken: "other-token"})
	if _, err := svc.VerifyInitData(signInitData(testBotToken, validFields())); err == nil {
		t.Fatal("payload signed with a different token accepted")
	}
}

func TestVerifyInitDataEmptyRejected(t *testing.T) {
	svc := NewAuthService(Config{BotToken: testBotToken})
	if _, err := svc.VerifyInitData(""); err == nil {
		t.Fatal("empty payload accepted")
	}
}

func TestVerifyInitDataMissingHashRejected(t *testing.T) {
	svc := NewAuthService(Config{BotToken: testBotToken})
	v := url.Values{}
	for k, val := range validFields() {
		v.Set(k, val)
	}
	if _, err := svc.VerifyInitData(v.Encode()); err == nil {
		t.Fatal("payload without hash accepted")
	}
}

func TestVerifyInitDataUserValidation(t *testing.T) {
	svc := NewAuthService(Config{BotToken: testBotToken})

	noUser := validFields()
	delete(noUser, "user")
	if _, err := svc.VerifyInitData(signInitData(testBotToken, noUser)); err == nil {
		t.Fatal("payload without user accepted")
	}

	badUser := validFields()
	badUser["user"] = "not-json"
	if _, err := svc.VerifyInitData(signInitData(testBotToken, badUser)); err == nil {
		t.Fatal("payload with malformed user accepted")
	}

	zeroID := validFields()
	zeroID["user"] = `{"id":0,"username":"ghost"}`
	if _, err := svc.VerifyInitData(signInitData(testBotToken, zeroID)); err == nil {
		t.Fatal("payload with non-positive user id accepted")
	}
}

package services

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// InitDataError marks an authentication failure on the initData handshake.
// The reason never contains payload or secret material beyond what the
// caller already sent.
type InitDataError struct {
	Reason string
}

func (e *InitDataError) Error() string {
	return fmt.Sprintf("invalid init data: %s", e.Reason)
}

// TelegramUser is the `user` object embedded in initData.
type TelegramUser struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// InitData is a verified initData payload: the raw field map plus the
// decoded user object.
type InitData struct {
	Fields map[string]string
	User   TelegramUser
}

// AuthService verifies Telegram WebApp initData signatures.
// https://core.telegram.org/bots/webapps#validating-data-received-via-the-web-app
type AuthService struct {
	botToken string
}

func NewAuthService(cfg Config) *AuthService {
	return &AuthService{botToken: cfg.BotToken}
}

// VerifyInitData checks the HMAC signature of a raw initData string and, on
// success, returns the parsed fields with `user` decoded. Pure function:
// no I/O, safe for concurrent use.
//
// Steps:
//  1. Parse the querystring-shaped payload (duplicate keys: last one wins).
//  2. Build the data-check-string from all key=value pairs except `hash`,
//     sorted by key, joined by newlines.
//  3. secret_key = SHA256("WebAppData" + bot token)
//  4. Expected hash = hex(HMAC_SHA256(secret_key, data_check_string)),
//     compared in constant time.
func (s *AuthService) VerifyInitData(raw string) (InitData, error) {
	if raw == "" {
		return InitData{}, &InitDataError{Reason: "empty payload"}
	}

	values, err := url.ParseQuery(raw)
	if err != nil {
		return InitData{}, &InitDataError{Reason: "malformed payload"}
	}

	fields := make(map[string]string, len(values))
	for k, vs := range values {
		if len(vs) > 0 {
			fields[k] = vs[len(vs)-1]
		} else {
			fields[k] = ""
		}
	}

	providedHash, ok := fields["hash"]
	if !ok || providedHash == "" {
		return InitData{}, &InitDataError{Reason: "missing hash"}
	}
	delete(fields, "hash")

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		lines = append(lines, k+"="+fields[k])
	}
	checkString := strings.Join(lines, "\n")

	secretKey := sha256.Sum256([]byte("WebAppData" + s.botToken))
	mac := hmac.New(sha256.New, secretKey[:])
	mac.Write([]byte(checkString))
	computed := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(computed), []byte(providedHash)) {
		return InitData{}, &InitDataError{Reason: "signature mismatch"}
	}

	userRaw, ok := fields["user"]
	if !ok {
		return InitData{}, &InitDataError{Reason: "missing user field"}
	}
	var user TelegramUser
	if err := json.Unmarshal([]byte(userRaw), &user); err != nil {
		return InitData{}, &InitDataError{Reason: "malformed user field"}
	}
	if user.ID < 1 {
		return InitData{}, &InitDataError{Reason: "invalid user id"}
	}

	return InitData{Fields: fields, User: user}, nil
}

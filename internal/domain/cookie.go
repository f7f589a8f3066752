package domain

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
)

// Cookie is one authentication cookie record captured by the login
// collaborator. Domain is kept verbatim so the record can be re-scoped
// when installed into a fresh cookie jar.
type Cookie struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Domain string `json:"domain"`
}

// EncodeCookies serializes cookie records into the opaque blob form
// carried in TT_COOKIES_B64_* environment variables.
func EncodeCookies(cookies []Cookie) (string, error) {
	raw, err := json.Marshal(cookies)
	if err != nil {
		return "", fmt.Errorf("marshal cookie records: %w", err)
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

// DecodeCookies reverses EncodeCookies. Any malformed input is reported
// as ErrCookieBlobDecode so callers can distinguish a bad blob from a
// rejected session.
func DecodeCookies(blob string) ([]Cookie, error) {
	raw, err := base64.StdEncoding.DecodeString(blob)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCookieBlobDecode, err)
	}

	var cookies []Cookie
	if err := json.Unmarshal(raw, &cookies); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCookieBlobDecode, err)
	}

	return cookies, nil
}

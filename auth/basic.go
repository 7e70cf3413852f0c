package auth

import (
	"encoding/base64"
	"strings"
)

const basicPrefix = "Basic "

// Credentials is the api_id/api_key pair carried by a Basic Authorization header.
type Credentials struct {
	APIID  string
	APIKey string
}

// ParseBasicAuth extracts merchant API credentials from a raw Authorization
// header value. It reports false when the header is empty, uses another
// scheme, is not valid base64 or has no colon separator.
func ParseBasicAuth(header string) (Credentials, bool) {
	if !strings.HasPrefix(header, basicPrefix) {
		return Credentials{}, false
	}

	decoded, err := base64.StdEncoding.DecodeString(header[len(basicPrefix):])
	if err != nil {
		return Credentials{}, false
	}

	apiID, apiKey, ok := strings.Cut(string(decoded), ":")
	if !ok {
		return Credentials{}, false
	}
	return Credentials{APIID: apiID, APIKey: apiKey}, true
}

// Header encodes the credentials back into an Authorization header value.
func (c Credentials) Header() string {
	return basicPrefix + base64.StdEncoding.EncodeToString([]byte(c.APIID+":"+c.APIKey))
}

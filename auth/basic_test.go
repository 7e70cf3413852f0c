package auth_test

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/xtopay/checkout-backend/auth"
)

func TestParseBasicAuth_Valid(t *testing.T) {
	header := "Basic " + base64.StdEncoding.EncodeToString([]byte("demo_id:demo_key"))

	creds, ok := auth.ParseBasicAuth(header)
	assert.True(t, ok)
	assert.Equal(t, "demo_id", creds.APIID)
	assert.Equal(t, "demo_key", creds.APIKey)
}

func TestParseBasicAuth_SplitsOnFirstColon(t *testing.T) {
	header := "Basic " + base64.StdEncoding.EncodeToString([]byte("id1:key:with:colons"))

	creds, ok := auth.ParseBasicAuth(header)
	assert.True(t, ok)
	assert.Equal(t, "id1", creds.APIID)
	assert.Equal(t, "key:with:colons", creds.APIKey)
}

func TestParseBasicAuth_EmptyParts(t *testing.T) {
	header := "Basic " + base64.StdEncoding.EncodeToString([]byte(":"))

	creds, ok := auth.ParseBasicAuth(header)
	assert.True(t, ok)
	assert.Equal(t, auth.Credentials{}, creds)
}

func TestParseBasicAuth_Rejects(t *testing.T) {
	cases := map[string]string{
		"empty":         "",
		"bearer scheme": "Bearer abc.def.ghi",
		"lowercase":     "basic " + base64.StdEncoding.EncodeToString([]byte("a:b")),
		"no space":      "Basic" + base64.StdEncoding.EncodeToString([]byte("a:b")),
		"bad base64":    "Basic %%%not-base64%%%",
		"no colon":      "Basic " + base64.StdEncoding.EncodeToString([]byte("nocolon")),
	}

	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			_, ok := auth.ParseBasicAuth(header)
			assert.False(t, ok)
		})
	}
}

func TestCredentials_HeaderRoundTrip(t *testing.T) {
	pairs := []auth.Credentials{
		{APIID: "demo_id", APIKey: "demo_key"},
		{APIID: "id1", APIKey: "key1"},
		{APIID: "", APIKey: "secret"},
		{APIID: "merchant", APIKey: "k:e:y"},
		{APIID: "ünïcode", APIKey: "ключ"},
	}

	for _, c := range pairs {
		header := c.Header()

		parsed, ok := auth.ParseBasicAuth(header)
		assert.True(t, ok, header)
		assert.Equal(t, c, parsed)
		assert.Equal(t, header, parsed.Header())
	}
}

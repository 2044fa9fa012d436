package binding

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenKeyURL(t *testing.T) {
	b := &Binding{
		Client:    "sb-app1",
		XsAppName: "app1",
		URL:       "https://paas.auth.example.com/",
		UAADomain: "auth.example.com",
	}

	cases := []struct {
		zid, sd, want string
	}{
		{"", "", "https://paas.auth.example.com/token_keys"},
		{"tenant-1", "", "https://paas.auth.example.com/token_keys?zid=tenant-1"},
		{"", "sub1", "https://sub1.auth.example.com/token_keys"},
		{"tenant-1", "Sub-1", "https://sub-1.auth.example.com/token_keys?zid=tenant-1"},
		{"a b&c", "sub1", "https://sub1.auth.example.com/token_keys?zid=a+b%26c"},
	}
	for _, c := range cases {
		got, err := b.TokenKeyURL(c.zid, c.sd)
		require.NoError(t, err)
		assert.Equal(t, c.want, got)
	}
}

func TestTokenKeyURL_RejectsHostileSubdomain(t *testing.T) {
	b := &Binding{URL: "https://paas.auth.example.com", UAADomain: "auth.example.com"}
	for _, sd := range []string{"evil.com/", "a.b", "x@y", "-lead", "trail-", "with space", "ü"} {
		_, err := b.TokenKeyURL("", sd)
		if !errors.Is(err, ErrInvalidSubdomain) {
			t.Fatalf("subdomain %q: want ErrInvalidSubdomain, got %v", sd, err)
		}
	}
}

func TestTokenKeyURL_Incomplete(t *testing.T) {
	_, err := (&Binding{UAADomain: "auth.example.com"}).TokenKeyURL("", "")
	assert.True(t, errors.Is(err, ErrIncomplete))

	_, err = (&Binding{URL: "https://paas.auth.example.com"}).TokenKeyURL("", "sub1")
	assert.True(t, errors.Is(err, ErrIncomplete))
}

func TestFromVCAP(t *testing.T) {
	raw := `{
	  "xsuaa": [
	    {"name": "other", "label": "xsuaa", "credentials": {"clientid": "sb-other"}},
	    {"name": "my-uaa", "label": "xsuaa", "credentials": {
	      "clientid": "sb-app1", "xsappname": "app1",
	      "url": "https://paas.auth.example.com", "uaadomain": "auth.example.com"}}
	  ]
	}`
	b, err := FromVCAP(raw, "my-uaa")
	require.NoError(t, err)
	assert.Equal(t, "sb-app1", b.ClientID())
	assert.Equal(t, "app1", b.AppID())
	assert.Equal(t, "auth.example.com", b.UAADomain)
	require.NoError(t, b.Validate())

	b, err = FromVCAP(raw, "")
	require.NoError(t, err)
	assert.Equal(t, "sb-other", b.ClientID())

	_, err = FromVCAP(raw, "missing")
	assert.True(t, errors.Is(err, ErrNoBinding))

	_, err = FromVCAP("", "")
	assert.True(t, errors.Is(err, ErrNoBinding))

	_, err = FromVCAP("{", "")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	assert.Error(t, (&Binding{}).Validate())
	assert.Error(t, (&Binding{Client: "c"}).Validate())
	assert.NoError(t, (&Binding{Client: "c", URL: "https://x"}).Validate())
}

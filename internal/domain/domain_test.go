package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"https with www", "https://www.Acme.io/careers?x=1", "acme.io"},
		{"http without www", "http://acme.io", "acme.io"},
		{"bare host", "acme.io", "acme.io"},
		{"bare host with www", "WWW.acme.io/about", "acme.io"},
		{"repeated www", "https://www.www.acme.io", "acme.io"},
		{"port dropped", "https://acme.io:8443/", "acme.io"},
		{"subdomain kept", "https://app.acme.io", "app.acme.io"},
		{"trailing dot", "https://acme.io./", "acme.io"},
		{"empty", "", ""},
		{"whitespace", "   ", ""},
		{"malformed", "https://%zz", ""},
		{"scheme only", "https://", ""},
		{"ipv4", "http://10.0.0.1:8080/x", "10.0.0.1"},
		{"ipv6 with port", "https://[::1]:8080/x", "[::1]"},
		{"bare ipv6", "[2001:DB8::1]", "[2001:db8::1]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		"https://www.Acme.io/careers",
		"acme.io",
		"http://WWW.sub.Example.COM:80/path",
		"https://startups.gallery/companies/acme",
		"https://[::1]:8080/x",
		"[2001:DB8::1]/about",
		"http://10.0.0.1",
	}
	for _, in := range inputs {
		once := Normalize(in)
		assert.NotEmpty(t, once, in)
		assert.Equal(t, once, Normalize(once), in)
	}
}

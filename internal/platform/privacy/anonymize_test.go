package privacy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnonymizeIP(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "ipv4 standard address", input: "192.168.1.47", expected: "192.168.1.0"},
		{name: "ipv4 localhost", input: "127.0.0.1", expected: "127.0.0.0"},
		{name: "ipv6 full address", input: "2001:db8:85a3:0000:0000:8a2e:0370:7334", expected: "2001:0db8:85a3::"},
		{name: "ipv6 loopback", input: "::1", expected: "0000:0000:0000::"},
		{name: "empty string", input: "", expected: "unknown"},
		{name: "invalid ip", input: "not-an-ip", expected: "invalid"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, AnonymizeIP(tt.input))
		})
	}
}

func TestSummarizeUserAgent(t *testing.T) {
	const chromeOnMac = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) " +
		"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	info := SummarizeUserAgent(chromeOnMac)
	assert.Equal(t, "Chrome", info.Browser)
	assert.NotEmpty(t, info.OS)
}

func TestSummarizeUserAgentEmpty(t *testing.T) {
	assert.Equal(t, ClientInfo{}, SummarizeUserAgent(""))
}

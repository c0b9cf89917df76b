package privacy

import "github.com/mssola/useragent"

// ClientInfo is the coarse, non-identifying slice of a User-Agent string that
// is safe to record alongside audit entries.
type ClientInfo struct {
	OS      string
	Browser string
}

// SummarizeUserAgent reduces a raw User-Agent header to OS and browser
// family. Versions and device details are discarded so the summary cannot be
// used to fingerprint an individual client.
func SummarizeUserAgent(rawUA string) ClientInfo {
	if rawUA == "" {
		return ClientInfo{}
	}
	ua := useragent.New(rawUA)
	browser, _ := ua.Browser()
	return ClientInfo{
		OS:      ua.OS(),
		Browser: browser,
	}
}

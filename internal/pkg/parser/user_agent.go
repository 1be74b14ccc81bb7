package parser

import "strings"

const Unknown = "Unknown"

// Client is the coarse platform a request came from.
type Client struct {
	OS      string
	Browser string
}

type rule struct {
	name    string
	matches []string
	unless  []string
}

// Order matters: Android agents also say Linux, iPhone agents say Mac OS,
// and Edge and Opera both claim to be Chrome.
var osRules = []rule{
	{name: "Android", matches: []string{"android"}},
	{name: "iOS", matches: []string{"iphone", "ipad", "ipod"}},
	{name: "Windows", matches: []string{"windows"}},
	{name: "macOS", matches: []string{"mac os"}},
	{name: "Linux", matches: []string{"linux"}},
}

var browserRules = []rule{
	{name: "Edge", matches: []string{"edg/", "edge/"}},
	{name: "Opera", matches: []string{"opr/", "opera"}},
	{name: "Firefox", matches: []string{"firefox", "fxios"}},
	{name: "Chrome", matches: []string{"chrome", "crios"}},
	{name: "Safari", matches: []string{"safari"}, unless: []string{"chrome", "crios"}},
}

func ParseUserAgent(ua string) Client {
	ua = strings.ToLower(ua)
	return Client{OS: match(ua, osRules), Browser: match(ua, browserRules)}
}

func match(ua string, rules []rule) string {
	for _, r := range rules {
		if containsAny(ua, r.unless) {
			continue
		}
		if containsAny(ua, r.matches) {
			return r.name
		}
	}
	return Unknown
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

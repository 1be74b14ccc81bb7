package parser

import "testing"

func TestParseUserAgent(t *testing.T) {
	tests := []struct {
		name string
		ua   string
		want Client
	}{
		{
			name: "chrome on windows",
			ua:   "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36",
			want: Client{OS: "Windows", Browser: "Chrome"},
		},
		{
			name: "edge is not chrome",
			ua:   "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36 Edg/120.0",
			want: Client{OS: "Windows", Browser: "Edge"},
		},
		{
			name: "android is not linux",
			ua:   "Mozilla/5.0 (Linux; Android 14; Pixel 8) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Mobile Safari/537.36",
			want: Client{OS: "Android", Browser: "Chrome"},
		},
		{
			name: "safari on iphone",
			ua:   "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1",
			want: Client{OS: "iOS", Browser: "Safari"},
		},
		{
			name: "firefox on linux",
			ua:   "Mozilla/5.0 (X11; Linux x86_64; rv:121.0) Gecko/20100101 Firefox/121.0",
			want: Client{OS: "Linux", Browser: "Firefox"},
		},
		{
			name: "cli tool",
			ua:   "curl/8.4.0",
			want: Client{OS: Unknown, Browser: Unknown},
		},
		{
			name: "empty",
			ua:   "",
			want: Client{OS: Unknown, Browser: Unknown},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseUserAgent(tt.ua); got != tt.want {
				t.Errorf("ParseUserAgent() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

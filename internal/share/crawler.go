package share

import "strings"

// crawlerTokens are matched as lowercase substrings of the User-Agent.
var crawlerTokens = []string{
	"bot",
	"facebookexternalhit",
	"twitterbot",
	"slackbot",
	"whatsapp",
	"discordbot",
	"linkedinbot",
}

// IsCrawler reports whether ua looks like a link-preview fetcher.
func IsCrawler(ua string) bool {
	ua = strings.ToLower(ua)
	for _, t := range crawlerTokens {
		if strings.Contains(ua, t) {
			return true
		}
	}
	return false
}

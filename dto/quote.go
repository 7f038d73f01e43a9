package dto

import (
	"slices"
	"strings"
)

const MisskeyQuoteRel = "https://misskey-hub.net/ns#_misskey_quote"

var quoteFields = []string{"_misskey_quote", "quoteUrl", "quoteUri"}

// ExtractQuoteUrl finds the note a post quotes. Explicit quote properties win. Otherwise the post's
// Link tags pointing at ActivityStreams objects are considered: one carrying the Misskey quote rel is
// preferred, else the distinct hrefs are collected. If more than one candidate remains the quote is
// ambiguous and the result is empty.
func ExtractQuoteUrl(post Object) string {
	for _, key := range quoteFields {
		if val := post.Str(key); val != "" {
			return val
		}
	}

	var links []Object
	for _, ref := range post.Refs("tag") {
		if ref.Obj == nil || ref.Obj.Type() != TypeLink {
			continue
		}
		if !isApMediaType(ref.Obj.Str("mediaType")) || ref.Obj.Str("href") == "" {
			continue
		}
		links = append(links, ref.Obj)
	}

	var hrefs []string
	for _, link := range links {
		if slices.Contains(GetApIds(link["rel"]), MisskeyQuoteRel) {
			return link.Str("href")
		}
		if href := link.Str("href"); !slices.Contains(hrefs, href) {
			hrefs = append(hrefs, href)
		}
	}
	if len(hrefs) == 1 {
		return hrefs[0]
	}
	return ""
}

func isApMediaType(mediaType string) bool {
	mt := strings.ToLower(strings.ReplaceAll(mediaType, " ", ""))
	if mt == "application/activity+json" {
		return true
	}
	return strings.HasPrefix(mt, "application/ld+json") &&
		strings.Contains(mt, `profile="https://www.w3.org/ns/activitystreams"`)
}

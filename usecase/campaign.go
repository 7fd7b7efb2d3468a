package usecase

import (
	"net/url"
	"regexp"
	"strings"

	"ai-promoter/domain/model"
)

// DesiredUTMs combines the configured UTM query (a leading "?" is ignored) with the item's campaign tag.
func DesiredUTMs(utmParams string, campaignTag *string) url.Values {
	desired := url.Values{}
	if parsed, err := url.ParseQuery(strings.TrimPrefix(utmParams, "?")); err == nil {
		for k, v := range parsed {
			if len(v) > 0 {
				desired.Set(k, v[0])
			}
		}
	}
	if campaignTag != nil && *campaignTag != "" {
		desired.Set("utm_campaign", *campaignTag)
	}
	return desired
}

// CampaignURL returns the item's url carrying the desired UTM parameters.
func CampaignURL(item *model.ContentItem, utmParams string) string {
	return withUTMs(item.URL, DesiredUTMs(utmParams, item.CampaignTag))
}

// ApplyCampaignTags rewrites every occurrence of the item's url in copy so it carries the desired UTM
// parameters, which win over any already present. If the copy never mentions the url, the tagged url is
// appended.
func ApplyCampaignTags(copy string, item *model.ContentItem, utmParams string) string {
	desired := DesiredUTMs(utmParams, item.CampaignTag)
	base := item.URL
	if u, err := url.Parse(item.URL); err == nil {
		base = u.Scheme + "://" + u.Host + u.Path
	}
	pattern := regexp.MustCompile(regexp.QuoteMeta(base) + `[^\s"'<]*`)

	found := false
	out := pattern.ReplaceAllStringFunc(copy, func(match string) string {
		link, tail := splitTrailingPunct(match, len(base))
		if rest := link[len(base):]; rest != "" && rest[0] != '?' && rest[0] != '#' {
			// a longer path that only shares the prefix
			return match
		}
		found = true
		return withUTMs(link, desired) + tail
	})
	if found {
		return out
	}
	sep := ""
	if out != "" && !strings.HasSuffix(out, " ") {
		sep = " "
	}
	return out + sep + withUTMs(item.URL, desired)
}

// splitTrailingPunct moves sentence punctuation after a url out of the match, keeping at least keep bytes.
func splitTrailingPunct(match string, keep int) (string, string) {
	end := len(match)
	for end > keep && strings.ContainsRune(".,;:!?)", rune(match[end-1])) {
		end--
	}
	return match[:end], match[end:]
}

// withUTMs merges desired into the utm_* parameters already on raw.
func withUTMs(raw string, desired url.Values) string {
	base, existing, fragment := splitUTMs(raw)
	for k, v := range desired {
		existing[k] = v
	}
	if len(existing) > 0 {
		sep := "?"
		if strings.Contains(base, "?") {
			sep = "&"
		}
		base += sep + existing.Encode()
	}
	if fragment != "" {
		base += "#" + fragment
	}
	return base
}

// splitUTMs separates utm_* parameters and the fragment from the rest of the url.
func splitUTMs(raw string) (string, url.Values, string) {
	utms := url.Values{}
	u, err := url.Parse(raw)
	if err != nil {
		return raw, utms, ""
	}
	rest := url.Values{}
	for k, v := range u.Query() {
		if len(v) == 0 {
			continue
		}
		if strings.HasPrefix(k, "utm_") {
			utms.Set(k, v[0])
		} else {
			rest.Set(k, v[0])
		}
	}
	base := u.Scheme + "://" + u.Host + u.Path
	if len(rest) > 0 {
		base += "?" + rest.Encode()
	}
	return base, utms, u.EscapedFragment()
}

// Package domain reduces website URLs to the bare domain HubSpot uses to
// identify companies.
package domain

import (
	"net"
	"net/url"
	"strings"

	"golang.org/x/net/publicsuffix"
)

// DefaultCompoundSuffixes are the two-label suffixes recognized out of the box.
var DefaultCompoundSuffixes = []string{"co.uk"}

// Normalizer turns a website into "name.tld", or "name.co.uk" for a known
// compound suffix. The zero value recognizes no compound suffixes.
type Normalizer struct {
	compound     map[string]struct{}
	publicSuffix bool
}

// NewNormalizer builds a Normalizer recognizing the given compound suffixes.
// With usePublicSuffix set the public suffix list decides the registrable
// domain and the compound list only applies when that lookup fails.
func NewNormalizer(compoundSuffixes []string, usePublicSuffix bool) *Normalizer {
	n := &Normalizer{
		compound:     make(map[string]struct{}, len(compoundSuffixes)),
		publicSuffix: usePublicSuffix,
	}
	for _, s := range compoundSuffixes {
		s = strings.Trim(strings.ToLower(strings.TrimSpace(s)), ".")
		if s != "" {
			n.compound[s] = struct{}{}
		}
	}
	return n
}

var defaultNormalizer = NewNormalizer(DefaultCompoundSuffixes, false)

// Normalize applies the default Normalizer.
func Normalize(website string) string {
	return defaultNormalizer.Normalize(website)
}

// Normalize returns the bare domain of website. Input that cannot be parsed
// as a URL is returned unchanged.
func (n *Normalizer) Normalize(website string) string {
	raw := strings.TrimSpace(website)
	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return website
	}
	host := strings.TrimSuffix(strings.ToLower(u.Hostname()), ".")
	if host == "" {
		return website
	}
	if net.ParseIP(host) != nil {
		return host
	}

	if n.publicSuffix {
		if d, err := publicsuffix.EffectiveTLDPlusOne(host); err == nil {
			return d
		}
	}

	parts := strings.Split(host, ".")
	keep := 2
	if len(parts) >= 2 {
		if _, ok := n.compound[strings.Join(parts[len(parts)-2:], ".")]; ok {
			keep = 3
		}
	}
	if len(parts) > keep {
		parts = parts[len(parts)-keep:]
	}
	return strings.Join(parts, ".")
}

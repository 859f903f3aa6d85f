package storage

import (
	"errors"
	"net/url"
	"strings"
)

var ErrNoObjectName = errors.New("url has no object name")

// ObjectName returns the object key addressed by a public URL: the last
// path segment, percent-decoded.
func ObjectName(raw string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", err
	}
	escaped := strings.TrimRight(u.EscapedPath(), "/")
	idx := strings.LastIndex(escaped, "/")
	seg := escaped[idx+1:]
	if seg == "" {
		return "", ErrNoObjectName
	}
	name, err := url.PathUnescape(seg)
	if err != nil {
		return "", err
	}
	return name, nil
}

// URLRewriter maps image URLs stored under an old storage host onto the
// current public base URL.
type URLRewriter struct {
	legacyBase string
	legacyHost string
	publicBase string
	publicHost string
}

func NewURLRewriter(legacyBase, legacyHost, publicBase string) *URLRewriter {
	r := &URLRewriter{
		legacyBase: strings.TrimRight(legacyBase, "/"),
		legacyHost: legacyHost,
		publicBase: strings.TrimRight(publicBase, "/"),
	}
	if u, err := url.Parse(r.publicBase); err == nil {
		r.publicHost = u.Host
	}
	return r
}

func (r *URLRewriter) Rewrite(raw string) string {
	if raw == "" {
		return raw
	}
	if r.legacyBase != "" && strings.HasPrefix(raw, r.legacyBase+"/") {
		return r.publicBase + strings.TrimPrefix(raw, r.legacyBase)
	}
	if r.legacyHost != "" && strings.HasPrefix(raw, "http://") && strings.Contains(raw, r.legacyHost) {
		u, err := url.Parse(raw)
		if err != nil {
			return raw
		}
		u.Scheme = "https"
		if r.publicHost != "" {
			u.Host = r.publicHost
		}
		return u.String()
	}
	return raw
}

func (r *URLRewriter) RewriteAll(urls []string) []string {
	out := make([]string, len(urls))
	for i, u := range urls {
		out[i] = r.Rewrite(u)
	}
	return out
}

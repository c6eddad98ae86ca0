// Package dappid derives canonical dApp ids from an app URL when a submission
// does not carry an explicit one.
package dappid

import (
	"errors"
	"strings"

	"dappstore.GO/core/errs"
)

// Suffix is appended to every generated id.
const Suffix = ".app"

const op = "dappid.generate"

var (
	ErrURLTaken  = errors.New("app url is already registered")
	ErrNameTaken = errors.New("dApp name is already registered")
	ErrNoURL     = errors.New("app url is required to derive an id")
)

// Providers are shared hosting domains where the subdomain identifies the app.
var Providers = map[string]bool{
	"vercel":    true,
	"twitter":   true,
	"instagram": true,
	"bit":       true,
	"netlify":   true,
	"github":    true,
	"herokuapp": true,
}

// Entry is an existing registry entry.
type Entry struct {
	ID   string
	Name string
	URL  string
}

// Generator hands out ids for one batch. Ids, URLs and names issued earlier in
// the batch count as taken.
type Generator struct {
	ids   map[string]bool
	urls  map[string]bool
	names map[string]bool
}

// NewGenerator indexes the existing entries.
func NewGenerator(existing []Entry) *Generator {
	g := &Generator{
		ids:   make(map[string]bool, len(existing)),
		urls:  make(map[string]bool, len(existing)),
		names: make(map[string]bool, len(existing)),
	}
	for _, e := range existing {
		g.reserve(e.ID, e.URL, e.Name)
	}
	return g
}

func (g *Generator) reserve(id, url, name string) {
	if id != "" {
		g.ids[strings.ToLower(id)] = true
	}
	if u := Normalize(url); u != "" {
		g.urls[u] = true
	}
	if n := normName(name); n != "" {
		g.names[n] = true
	}
}

// Reserve marks an explicitly chosen id in the batch as taken.
func (g *Generator) Reserve(id, url, name string) {
	g.reserve(id, url, name)
}

// Generate derives a free id for name and rawURL and reserves it.
func (g *Generator) Generate(name, rawURL string) (string, error) {
	u := Normalize(rawURL)
	if u == "" {
		return "", errs.Wrap(errs.KindValidation, op, ErrNoURL, "%q", name)
	}
	if g.urls[u] {
		return "", errs.Wrap(errs.KindValidation, op, ErrURLTaken, "%s", u)
	}
	if n := normName(name); n != "" && g.names[n] {
		return "", errs.Wrap(errs.KindValidation, op, ErrNameTaken, "%q", name)
	}

	cands := Candidates(u)
	for _, c := range cands {
		if !g.ids[c] {
			g.reserve(c, u, name)
			return c, nil
		}
	}
	last := ""
	if len(cands) > 0 {
		last = cands[len(cands)-1]
	}
	return "", errs.E(errs.KindIDExhausted, op, "dApp id already exists, dappId: %s", last)
}

// Generate is a one-shot helper for a single entry against a pending batch.
func Generate(name, rawURL string, existing []Entry, pendingURLs, pendingNames []string) (string, error) {
	g := NewGenerator(existing)
	for _, u := range pendingURLs {
		g.reserve("", u, "")
	}
	for _, n := range pendingNames {
		g.reserve("", "", n)
	}
	return g.Generate(name, rawURL)
}

// Normalize strips scheme, "www.", query, fragment and trailing slashes and lowercases.
func Normalize(rawURL string) string {
	u := strings.TrimSpace(rawURL)
	if i := strings.IndexAny(u, "?#"); i >= 0 {
		u = u[:i]
	}
	u = strings.ToLower(u)
	u = strings.TrimPrefix(u, "https://")
	u = strings.TrimPrefix(u, "http://")
	u = strings.TrimPrefix(u, "www.")
	return strings.TrimRight(u, "/")
}

// Candidates lists the ids to try for a normalized URL, in order.
func Candidates(normalized string) []string {
	host, path, _ := strings.Cut(normalized, "/")
	suffix := pathSuffix(path)

	labels := strings.Split(host, ".")
	// reversed: [tld, sld, subdomains nearest first...]
	for i, j := 0, len(labels)-1; i < j; i, j = i+1, j-1 {
		labels[i], labels[j] = labels[j], labels[i]
	}
	if len(labels) < 2 {
		if host == "" {
			return nil
		}
		return uniq(slug(host)+Suffix, join(slug(host), suffix)+Suffix)
	}
	sld := slug(labels[1])
	sub := make([]string, 0, len(labels)-2)
	for _, l := range labels[2:] {
		if s := slug(l); s != "" {
			sub = append(sub, s)
		}
	}
	subs := strings.Join(sub, "-")

	if Providers[sld] {
		var out []string
		if subs != "" {
			out = append(out, subs+Suffix)
		}
		if s := join(subs, suffix); s != "" {
			out = append(out, s+Suffix)
		}
		return uniq(out...)
	}
	return uniq(sld+Suffix, join(sld, subs)+Suffix, join(sld, suffix)+Suffix)
}

func pathSuffix(path string) string {
	var parts []string
	for _, p := range strings.Split(path, "/") {
		if s := slug(p); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "-")
}

// slug keeps [a-z0-9-] and collapses everything else into single dashes.
func slug(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimRight(b.String(), "-")
}

func join(a, b string) string {
	switch {
	case a == "":
		return b
	case b == "":
		return a
	}
	return a + "-" + b
}

func uniq(in ...string) []string {
	seen := make(map[string]bool, len(in))
	out := in[:0]
	for _, s := range in {
		if s == "" || s == Suffix || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

func normName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

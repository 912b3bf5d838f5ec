package catalog

import (
	"sort"
	"strings"
)

// knownTechnologies is the allow-list offered to clients for discovery.
var knownTechnologies = []string{
	"html", "css", "javascript", "typescript", "react", "vue", "angular", "svelte", "next.js", "nuxt.js", "gatsby",
	"react native", "flutter", "ionic", "xamarin", "kotlin", "swift", "node.js", "express", "fastify", "nest.js",
	"python", "django", "flask", "fastapi", "php", "laravel", "symfony", "codeigniter", "java", "spring", "spring boot",
	"c#", ".net", ".net core", "ruby", "rails", "sinatra", "go", "gin", "echo", "rust", "actix", "sql", "mysql", "postgresql",
	"sqlite", "mariadb", "mongodb", "couchdb", "redis", "memcached", "firebase", "firestore", "supabase", "power bi", "tableau",
	"excel", "google analytics", "looker", "aws", "azure", "gcp", "heroku", "vercel", "netlify", "docker", "kubernetes", "jenkins",
	"github actions", "git", "github", "gitlab", "bitbucket", "figma", "adobe xd", "sketch", "photoshop", "webpack", "vite",
	"parcel", "rollup", "jest", "cypress", "playwright", "selenium",
}

// Catalog is an immutable set of recognized technology names.
// It is safe for concurrent use.
type Catalog struct {
	known  map[string]struct{}
	sorted []string
}

// New builds a catalog from the given names. Names are normalized the same
// way tag input is, so lookups are case-insensitive.
func New(names ...string) *Catalog {
	c := &Catalog{known: make(map[string]struct{}, len(names))}
	for _, n := range names {
		n = strings.ToLower(strings.TrimSpace(n))
		if n == "" {
			continue
		}
		if _, ok := c.known[n]; ok {
			continue
		}
		c.known[n] = struct{}{}
		c.sorted = append(c.sorted, n)
	}
	sort.Strings(c.sorted)
	return c
}

// Default returns the catalog of technologies the portfolio recognizes.
func Default() *Catalog {
	return New(knownTechnologies...)
}

// Normalize splits comma-separated tag input into trimmed, lower-cased
// tokens. Empty tokens are dropped; order and duplicates are kept.
func Normalize(raw string) []string {
	tags := []string{}
	for _, part := range strings.Split(raw, ",") {
		tag := strings.ToLower(strings.TrimSpace(part))
		if tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

// Classify normalizes raw and reports which tags are not in the catalog.
// Unrecognized tags stay in normalized; the check is advisory.
func (c *Catalog) Classify(raw string) (normalized, unrecognized []string) {
	normalized = Normalize(raw)
	for _, tag := range normalized {
		if !c.Contains(tag) {
			unrecognized = append(unrecognized, tag)
		}
	}
	return normalized, unrecognized
}

// Contains reports whether tag is a recognized technology.
func (c *Catalog) Contains(tag string) bool {
	_, ok := c.known[tag]
	return ok
}

// List returns the recognized technologies in sorted order.
// The returned slice is a copy.
func (c *Catalog) List() []string {
	out := make([]string, len(c.sorted))
	copy(out, c.sorted)
	return out
}

// Len returns the number of recognized technologies.
func (c *Catalog) Len() int {
	return len(c.sorted)
}

package config

import "strings"

// AuthSkipperPaths are /api route prefixes that skip the admin auth
// middleware. Reads are public; registry submissions authenticate with the
// submitter's GitHub token instead.
func AuthSkipperPaths() []string {
	return []string{"/api/dapps", "/api/stores", "/api/categories", "/api/registry"}
}

// SkipAuth reports whether the route path is public.
func SkipAuth(path string) bool {
	for _, p := range AuthSkipperPaths() {
		if path == p || strings.HasPrefix(path, p+"/") {
			return true
		}
	}
	return false
}

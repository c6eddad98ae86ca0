package entity

import "strings"

// FeaturedSection is a curated, titled list of dApp ids.
type FeaturedSection struct {
	Key         string   `json:"key"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	DAppIDs     []string `json:"dappIds"`
}

// Registry is the canonical dApp document (src/registry.json).
type Registry struct {
	Title            string            `json:"title"`
	Chains           []int             `json:"chains"`
	DApps            []DApp            `json:"dapps"`
	FeaturedSections []FeaturedSection `json:"featuredSections,omitempty"`
}

// FindDApp returns the index of the dApp with the given id, or -1.
func (r *Registry) FindDApp(id string) int {
	for i := range r.DApps {
		if r.DApps[i].DAppID == id {
			return i
		}
	}
	return -1
}

// CountDApp returns how many entries carry id. More than one means the document is corrupt.
func (r *Registry) CountDApp(id string) int {
	n := 0
	for i := range r.DApps {
		if r.DApps[i].DAppID == id {
			n++
		}
	}
	return n
}

// IsListed reports whether id exists and is listed.
func (r *Registry) IsListed(id string) bool {
	i := r.FindDApp(id)
	return i >= 0 && r.DApps[i].IsListed
}

// FindSection returns the index of the featured section with key, or -1.
func (r *Registry) FindSection(key string) int {
	return findSection(r.FeaturedSections, key)
}

// HasSectionTitle reports whether a section with the title already exists.
func (r *Registry) HasSectionTitle(title string) bool {
	return hasSectionTitle(r.FeaturedSections, title)
}

// RemoveFromSections drops id from every featured section.
func (r *Registry) RemoveFromSections(id string) []string {
	var touched []string
	for i := range r.FeaturedSections {
		s := &r.FeaturedSections[i]
		kept := s.DAppIDs[:0]
		for _, d := range s.DAppIDs {
			if d != id {
				kept = append(kept, d)
			}
		}
		if len(kept) != len(s.DAppIDs) {
			touched = append(touched, s.Key)
		}
		s.DAppIDs = kept
	}
	return touched
}

func findSection(sections []FeaturedSection, key string) int {
	for i := range sections {
		if sections[i].Key == key {
			return i
		}
	}
	return -1
}

// hasSectionTitle compares trimmed titles case-insensitively.
func hasSectionTitle(sections []FeaturedSection, title string) bool {
	t := strings.TrimSpace(title)
	for i := range sections {
		if strings.EqualFold(strings.TrimSpace(sections[i].Title), t) {
			return true
		}
	}
	return false
}

// Package enrich applies store specific overlays on top of canonical dApps.
package enrich

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"dappstore.GO/core/errs"
	"dappstore.GO/model/entity"
)

// Patch is a change request for one enrich record.
type Patch struct {
	// Remove lists dot separated field paths to drop, e.g. "images.banner".
	Remove []string `json:"remove,omitempty"`
	// Add is shallow merged into the record fields; screenshots merge by index.
	Add map[string]any `json:"add,omitempty"`
}

// MaxScreenshotIndex is the highest screenshot position an overlay may set.
const MaxScreenshotIndex = 49

// Screenshot replaces the screenshot at Index.
type Screenshot struct {
	Index int    `json:"index"`
	Value string `json:"value"`
}

// Update applies p to rec in place.
func Update(rec *entity.EnrichRecord, p Patch) error {
	if rec.Fields == nil {
		rec.Fields = map[string]any{}
	}
	for _, path := range p.Remove {
		removePath(rec.Fields, path)
	}
	if len(p.Add) == 0 {
		return nil
	}
	add, err := normalize(p.Add)
	if err != nil {
		return err
	}
	if err := checkScreenshotIndexes(add); err != nil {
		return err
	}

	existing := screenshotsOf(rec.Fields)
	incoming := screenshotsOf(add)
	if merged := mergeScreenshots(incoming, existing); len(merged) > 0 || hasScreenshots(add) {
		images, _ := add["images"].(map[string]any)
		if images == nil {
			images = map[string]any{}
		}
		images["screenshots"] = merged
		add["images"] = images
		if add, err = normalize(add); err != nil {
			return err
		}
	}
	for k, v := range add {
		rec.Fields[k] = v
	}
	return nil
}

// Apply returns d with rec's fields overlaid. Images merge per key and
// screenshots replace the entry at their index; any other field replaces the
// canonical value.
func Apply(d entity.DApp, rec *entity.EnrichRecord) (entity.DApp, error) {
	if rec == nil || len(rec.Fields) == 0 {
		return d, nil
	}
	b, err := json.Marshal(d)
	if err != nil {
		return d, err
	}
	var base map[string]any
	if err := json.Unmarshal(b, &base); err != nil {
		return d, err
	}
	fields, err := normalize(rec.Fields)
	if err != nil {
		return d, err
	}

	for k, v := range fields {
		if k != "images" {
			base[k] = v
			continue
		}
		overlay, ok := v.(map[string]any)
		if !ok {
			continue
		}
		images, _ := base["images"].(map[string]any)
		if images == nil {
			images = map[string]any{}
		}
		for ik, iv := range overlay {
			if ik == "screenshots" {
				images[ik] = applyScreenshots(images[ik], iv)
				continue
			}
			images[ik] = iv
		}
		base["images"] = images
	}

	out, err := json.Marshal(base)
	if err != nil {
		return d, err
	}
	var res entity.DApp
	if err := json.Unmarshal(out, &res); err != nil {
		return d, fmt.Errorf("enrich %s: %w", d.DAppID, err)
	}
	return res, nil
}

// View returns the store's view of dapps: banned entries are dropped and the
// remaining ones carry the store's overlay.
func View(store *entity.Store, dapps []entity.DApp) ([]entity.DApp, error) {
	out := make([]entity.DApp, 0, len(dapps))
	for _, d := range dapps {
		if store.IsBanned(d.DAppID) {
			continue
		}
		v, err := Apply(d, store.EnrichFor(d.DAppID))
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func removePath(m map[string]any, path string) {
	parts := strings.Split(path, ".")
	for i, p := range parts {
		if i == len(parts)-1 {
			delete(m, p)
			return
		}
		next, ok := m[p].(map[string]any)
		if !ok {
			return
		}
		m = next
	}
}

// normalize round-trips v through JSON so nested values are plain maps and slices.
func normalize(v map[string]any) (map[string]any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out map[string]any
	err = json.Unmarshal(b, &out)
	return out, err
}

func hasScreenshots(fields map[string]any) bool {
	images, ok := fields["images"].(map[string]any)
	if !ok {
		return false
	}
	_, ok = images["screenshots"]
	return ok
}

func checkScreenshotIndexes(fields map[string]any) error {
	images, _ := fields["images"].(map[string]any)
	list, _ := images["screenshots"].([]any)
	for _, item := range list {
		m, _ := item.(map[string]any)
		if idx, ok := m["index"].(float64); ok && (idx < 0 || idx > MaxScreenshotIndex) {
			return errs.E(errs.KindValidation, "enrich.update", "screenshot index %v is outside 0..%d", idx, MaxScreenshotIndex)
		}
	}
	return nil
}

func screenshotsOf(fields map[string]any) []Screenshot {
	images, ok := fields["images"].(map[string]any)
	if !ok {
		return nil
	}
	list, ok := images["screenshots"].([]any)
	if !ok {
		return nil
	}
	out := make([]Screenshot, 0, len(list))
	for _, item := range list {
		if s, ok := toScreenshot(item); ok {
			out = append(out, s)
		}
	}
	return out
}

func toScreenshot(v any) (Screenshot, bool) {
	m, ok := v.(map[string]any)
	if !ok {
		return Screenshot{}, false
	}
	idx, ok := m["index"].(float64)
	if !ok || idx < 0 || idx > MaxScreenshotIndex {
		return Screenshot{}, false
	}
	val, _ := m["value"].(string)
	return Screenshot{Index: int(idx), Value: val}, true
}

// mergeScreenshots keeps every incoming entry and the existing entries whose
// index was not replaced.
func mergeScreenshots(incoming, existing []Screenshot) []Screenshot {
	if len(existing) == 0 {
		return incoming
	}
	replaced := make(map[int]bool, len(incoming))
	for _, s := range incoming {
		replaced[s.Index] = true
	}
	out := append([]Screenshot{}, incoming...)
	for _, s := range existing {
		if !replaced[s.Index] {
			out = append(out, s)
		}
	}
	return out
}

// applyScreenshots writes overlay screenshots into the canonical url list.
// Indexes past the end are appended in index order, never padded.
func applyScreenshots(base, overlay any) any {
	var urls []any
	if list, ok := base.([]any); ok {
		urls = append(urls, list...)
	}
	list, ok := overlay.([]any)
	if !ok {
		return base
	}
	var extra []Screenshot
	for _, item := range list {
		s, ok := toScreenshot(item)
		if !ok {
			continue
		}
		if s.Index < len(urls) {
			urls[s.Index] = s.Value
			continue
		}
		extra = append(extra, s)
	}
	sort.SliceStable(extra, func(i, j int) bool { return extra[i].Index < extra[j].Index })
	for _, s := range extra {
		urls = append(urls, s.Value)
	}
	kept := urls[:0]
	for _, u := range urls {
		if u != "" {
			kept = append(kept, u)
		}
	}
	return kept
}

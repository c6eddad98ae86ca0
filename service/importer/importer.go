// Package importer turns a CSV listing of dApps into registry entries ready
// for a batch submission.
package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"dappstore.GO/model/entity"
)

// Options configures an import run.
type Options struct {
	// BatchSize is the number of dApps per submission.
	BatchSize int
	// Listed is the default isListed when the column is absent.
	Listed bool
	// Today fills listDate when the column is absent or empty.
	Today func() time.Time
}

// Result holds the parsed dApps and counters from an import run.
type Result struct {
	TotalRows int
	Skipped   int
	Warnings  []string
	DApps     []entity.DApp
}

// Batches splits the parsed dApps into submissions of at most size entries.
func (r *Result) Batches(size int) [][]entity.DApp {
	if size <= 0 {
		size = DefaultBatchSize
	}
	var out [][]entity.DApp
	for i := 0; i < len(r.DApps); i += size {
		end := i + size
		if end > len(r.DApps) {
			end = len(r.DApps)
		}
		out = append(out, r.DApps[i:end])
	}
	return out
}

// DefaultBatchSize keeps each generated commit reviewable.
const DefaultBatchSize = 25

// listSep separates values inside one list cell.
const listSep = ";"

type setter func(d *entity.DApp, v string) error

var columns = map[string]setter{
	"dappId":              func(d *entity.DApp, v string) error { d.DAppID = v; return nil },
	"name":                func(d *entity.DApp, v string) error { d.Name = v; return nil },
	"description":         func(d *entity.DApp, v string) error { d.Description = v; return nil },
	"appUrl":              func(d *entity.DApp, v string) error { d.AppURL = v; return nil },
	"repoUrl":             func(d *entity.DApp, v string) error { d.RepoURL = v; return nil },
	"category":            func(d *entity.DApp, v string) error { d.Category = v; return nil },
	"subCategory":         func(d *entity.DApp, v string) error { d.SubCategory = v; return nil },
	"version":             func(d *entity.DApp, v string) error { d.Version = v; return nil },
	"listDate":            func(d *entity.DApp, v string) error { d.ListDate = v; return nil },
	"ownerAddress":        func(d *entity.DApp, v string) error { d.OwnerAddress = v; return nil },
	"language":            func(d *entity.DApp, v string) error { d.Language = split(v); return nil },
	"availableOnPlatform": func(d *entity.DApp, v string) error { d.AvailableOnPlatform = split(v); return nil },
	"tags":                func(d *entity.DApp, v string) error { d.Tags = split(v); return nil },
	"chains": func(d *entity.DApp, v string) error {
		d.Chains = nil
		for _, s := range split(v) {
			n, err := strconv.Atoi(s)
			if err != nil {
				return fmt.Errorf("chain %q is not a number", s)
			}
			d.Chains = append(d.Chains, n)
		}
		return nil
	},
	"minAge": func(d *entity.DApp, v string) error {
		n, err := strconv.Atoi(v)
		d.MinAge = n
		return err
	},
	"isForMatureAudience": boolField(func(d *entity.DApp, b bool) { d.IsForMatureAudience = b }),
	"isSelfModerated":     boolField(func(d *entity.DApp, b bool) { d.IsSelfModerated = b }),
	"isListed":            boolField(func(d *entity.DApp, b bool) { d.IsListed = b }),
	"logo":                func(d *entity.DApp, v string) error { images(d).Logo = v; return nil },
	"banner":              func(d *entity.DApp, v string) error { images(d).Banner = v; return nil },
	"screenshots":         func(d *entity.DApp, v string) error { images(d).Screenshots = split(v); return nil },
	"developerLegalName":  func(d *entity.DApp, v string) error { developer(d).LegalName = v; return nil },
	"developerWebsite":    func(d *entity.DApp, v string) error { developer(d).Website = v; return nil },
	"developerPrivacyPolicyUrl": func(d *entity.DApp, v string) error {
		developer(d).PrivacyPolicyURL = v
		return nil
	},
	"developerGithubId": func(d *entity.DApp, v string) error { developer(d).GithubID = v; return nil },
	"supportUrl":        func(d *entity.DApp, v string) error { developer(d).Support.URL = v; return nil },
	"supportEmail":      func(d *entity.DApp, v string) error { developer(d).Support.Email = v; return nil },
}

// ImportDApps reads CSV data from r. The header names the columns; unknown
// columns are reported and skipped, rows without a name or app URL are skipped.
func ImportDApps(r io.Reader, opts Options) (*Result, error) {
	if opts.Today == nil {
		opts.Today = time.Now
	}

	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	headers, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read CSV header: %w", err)
	}
	colIndex := make(map[string]int, len(headers))
	for i, h := range headers {
		headers[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		colIndex[headers[i]] = i
	}
	for _, required := range []string{"name", "appUrl"} {
		if _, ok := colIndex[required]; !ok {
			return nil, fmt.Errorf("CSV must contain a %q column", required)
		}
	}

	result := &Result{}
	for _, h := range headers {
		if _, ok := columns[h]; !ok {
			result.Warnings = append(result.Warnings, fmt.Sprintf("column %q: unknown, skipping", h))
		}
	}

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read CSV rows: %w", err)
	}
	result.TotalRows = len(rows)

	for ri, row := range rows {
		line := ri + 2
		d := entity.DApp{IsListed: opts.Listed, Chains: []int{}, AvailableOnPlatform: []string{entity.PlatformWeb}}
		bad := false
		for ci, h := range headers {
			set, ok := columns[h]
			if !ok || ci >= len(row) {
				continue
			}
			v := strings.TrimSpace(row[ci])
			if v == "" {
				continue
			}
			if err := set(&d, v); err != nil {
				result.Warnings = append(result.Warnings, fmt.Sprintf("line %d, column %q: %v", line, h, err))
				bad = true
			}
		}
		if bad || d.Name == "" || d.AppURL == "" {
			if !bad {
				result.Warnings = append(result.Warnings, fmt.Sprintf("line %d: name and appUrl are required, skipping", line))
			}
			result.Skipped++
			continue
		}
		if d.ListDate == "" {
			d.ListDate = opts.Today().Format("2006-01-02")
		}
		result.DApps = append(result.DApps, d)
	}
	return result, nil
}

func split(v string) []string {
	var out []string
	for _, p := range strings.Split(v, listSep) {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func boolField(set func(d *entity.DApp, b bool)) setter {
	return func(d *entity.DApp, v string) error {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%q is not a boolean", v)
		}
		set(d, b)
		return nil
	}
}

func images(d *entity.DApp) *entity.Images {
	if d.Images == nil {
		d.Images = &entity.Images{}
	}
	return d.Images
}

func developer(d *entity.DApp) *entity.Developer {
	if d.Developer == nil {
		d.Developer = &entity.Developer{}
	}
	return d.Developer
}

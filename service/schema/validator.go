package schema

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"dappstore.GO/core/errs"
	"dappstore.GO/model/entity"
)

//go:embed schemas/*.json
var schemaFS embed.FS

const schemaBase = "https://dappstore.local/schemas/"

var printer = message.NewPrinter(language.English)

// Issue is one structural or uniqueness problem in a document.
type Issue struct {
	Path    string // instance location, e.g. "/dapps/3/dappId"
	Message string
	Keyword string // failing schema keyword, or "unique" / "reference"
}

func (i Issue) String() string {
	if i.Path == "" {
		return i.Message
	}
	return i.Path + ": " + i.Message
}

// Result is the outcome of validating one document.
type Result struct {
	Valid  bool
	Issues []Issue
}

// Err converts a failing result into a ValidationError carrying every issue.
func (r Result) Err(op string) error {
	if r.Valid {
		return nil
	}
	details := make([]string, 0, len(r.Issues))
	for _, is := range r.Issues {
		details = append(details, is.String())
	}
	msg := "document is invalid"
	if len(details) > 0 {
		msg = details[0]
	}
	return errs.E(errs.KindValidation, op, "%s", msg).WithDetails(details...)
}

// Validator checks registry and stores documents. It is safe for concurrent use.
type Validator struct {
	registry *jsonschema.Schema
	stores   *jsonschema.Schema
}

var (
	defaultValidator *Validator
	defaultOnce      sync.Once
	defaultErr       error
)

// Default returns a process-wide validator compiled from the embedded schemas.
func Default() (*Validator, error) {
	defaultOnce.Do(func() {
		defaultValidator, defaultErr = New()
	})
	return defaultValidator, defaultErr
}

// New compiles the embedded schemas.
func New() (*Validator, error) {
	c := jsonschema.NewCompiler()
	entries, err := schemaFS.ReadDir("schemas")
	if err != nil {
		return nil, fmt.Errorf("reading embedded schemas: %w", err)
	}
	for _, e := range entries {
		b, err := schemaFS.ReadFile(path.Join("schemas", e.Name()))
		if err != nil {
			return nil, err
		}
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(b))
		if err != nil {
			return nil, fmt.Errorf("unmarshaling schema %s: %w", e.Name(), err)
		}
		if err := c.AddResource(schemaBase+e.Name(), doc); err != nil {
			return nil, fmt.Errorf("adding schema resource %s: %w", e.Name(), err)
		}
	}

	v := &Validator{}
	if v.registry, err = c.Compile(schemaBase + "registry.schema.json"); err != nil {
		return nil, fmt.Errorf("compiling registry schema: %w", err)
	}
	if v.stores, err = c.Compile(schemaBase + "stores.schema.json"); err != nil {
		return nil, fmt.Errorf("compiling stores schema: %w", err)
	}
	return v, nil
}

// ValidateRegistry checks structure, dApp id and name uniqueness and featured
// section references.
func (v *Validator) ValidateRegistry(doc *entity.Registry) Result {
	if doc == nil {
		return Result{Issues: []Issue{{Message: "registry document is empty"}}}
	}
	issues := structural(v.registry, doc)
	issues = append(issues, registryUniqueness(doc)...)
	issues = append(issues, sectionIssues("/featuredSections", doc.FeaturedSections, doc.IsListed)...)
	return result(issues)
}

// ValidateStores checks structure and store key uniqueness.
func (v *Validator) ValidateStores(doc *entity.Stores) Result {
	if doc == nil {
		return Result{Issues: []Issue{{Message: "stores document is empty"}}}
	}
	issues := structural(v.stores, doc)
	seen := make(map[string]int, len(doc.DAppStores))
	for i, s := range doc.DAppStores {
		k := strings.ToLower(s.Key)
		if first, ok := seen[k]; ok {
			issues = append(issues, Issue{
				Path:    fmt.Sprintf("/dappStores/%d/key", i),
				Message: fmt.Sprintf("duplicate store key %q (first at /dappStores/%d)", s.Key, first),
				Keyword: "unique",
			})
			continue
		}
		seen[k] = i
		prefix := fmt.Sprintf("/dappStores/%d/featuredSections", i)
		issues = append(issues, sectionIssues(prefix, s.FeaturedSections, nil)...)
	}
	return result(issues)
}

// MustValidateRegistry returns a ValidationError unless doc is valid.
func (v *Validator) MustValidateRegistry(op string, doc *entity.Registry) error {
	return v.ValidateRegistry(doc).Err(op)
}

// MustValidateStores returns a ValidationError unless doc is valid.
func (v *Validator) MustValidateStores(op string, doc *entity.Stores) error {
	return v.ValidateStores(doc).Err(op)
}

func result(issues []Issue) Result {
	if len(issues) == 0 {
		return Result{Valid: true}
	}
	return Result{Issues: deduplicate(issues)}
}

func structural(sch *jsonschema.Schema, doc any) []Issue {
	b, err := json.Marshal(doc)
	if err != nil {
		return []Issue{{Message: "encoding document: " + err.Error()}}
	}
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(b))
	if err != nil {
		return []Issue{{Message: "preparing document: " + err.Error()}}
	}
	err = sch.Validate(inst)
	if err == nil {
		return nil
	}
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return []Issue{{Message: err.Error()}}
	}
	var issues []Issue
	collect(ve, &issues)
	if len(issues) == 0 {
		return []Issue{{Message: ve.Error()}}
	}
	return issues
}

// collect walks the error tree down to leaf errors.
func collect(ve *jsonschema.ValidationError, issues *[]Issue) {
	if len(ve.Causes) > 0 {
		for _, c := range ve.Causes {
			collect(c, issues)
		}
		return
	}
	if ve.ErrorKind == nil {
		return
	}
	keyword := ""
	if kw := ve.ErrorKind.KeywordPath(); len(kw) > 0 {
		keyword = kw[len(kw)-1]
	}
	switch keyword {
	case "", "$ref", "allOf", "oneOf":
		return
	}
	p := ""
	if len(ve.InstanceLocation) > 0 {
		p = "/" + strings.Join(ve.InstanceLocation, "/")
	}
	*issues = append(*issues, Issue{
		Path:    p,
		Message: ve.ErrorKind.LocalizedString(printer),
		Keyword: keyword,
	})
}

func registryUniqueness(doc *entity.Registry) []Issue {
	var issues []Issue
	ids := make(map[string]int, len(doc.DApps))
	names := make(map[string]int, len(doc.DApps))
	for i := range doc.DApps {
		d := &doc.DApps[i]
		id := strings.ToLower(d.DAppID)
		if first, ok := ids[id]; ok && id != "" {
			issues = append(issues, Issue{
				Path:    fmt.Sprintf("/dapps/%d/dappId", i),
				Message: fmt.Sprintf("duplicate dApp id %q (first at /dapps/%d)", d.DAppID, first),
				Keyword: "unique",
			})
		} else {
			ids[id] = i
		}
		name := d.NormalizedName()
		if first, ok := names[name]; ok && name != "" {
			issues = append(issues, Issue{
				Path:    fmt.Sprintf("/dapps/%d/name", i),
				Message: fmt.Sprintf("duplicate dApp name %q (first at /dapps/%d)", d.Name, first),
				Keyword: "unique",
			})
		} else {
			names[name] = i
		}
	}
	return issues
}

// sectionIssues checks section key and title uniqueness. When listed is set,
// every referenced dApp must exist and be listed.
func sectionIssues(prefix string, sections []entity.FeaturedSection, listed func(string) bool) []Issue {
	var issues []Issue
	keys := make(map[string]bool, len(sections))
	titles := make(map[string]bool, len(sections))
	for i, s := range sections {
		if keys[s.Key] {
			issues = append(issues, Issue{
				Path:    fmt.Sprintf("%s/%d/key", prefix, i),
				Message: fmt.Sprintf("duplicate featured section key %q", s.Key),
				Keyword: "unique",
			})
		}
		keys[s.Key] = true
		t := strings.ToLower(strings.TrimSpace(s.Title))
		if titles[t] {
			issues = append(issues, Issue{
				Path:    fmt.Sprintf("%s/%d/title", prefix, i),
				Message: fmt.Sprintf("duplicate featured section title %q", s.Title),
				Keyword: "unique",
			})
		}
		titles[t] = true
		if listed == nil {
			continue
		}
		for j, id := range s.DAppIDs {
			if !listed(id) {
				issues = append(issues, Issue{
					Path:    fmt.Sprintf("%s/%d/dappIds/%d", prefix, i, j),
					Message: fmt.Sprintf("featured dApp %q does not exist or is not listed", id),
					Keyword: "reference",
				})
			}
		}
	}
	return issues
}

func deduplicate(issues []Issue) []Issue {
	seen := make(map[string]bool, len(issues))
	out := issues[:0]
	for _, is := range issues {
		k := is.Path + "|" + is.Keyword + "|" + is.Message
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, is)
	}
	return out
}

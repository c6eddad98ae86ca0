package commit

import (
	"context"
	"strings"

	"dappstore.GO/core/errs"
	"dappstore.GO/model/entity"
	"dappstore.GO/service/dappid"
)

// AddOrUpdateDApp adds d or replaces the entry with the same id. Only the
// developer recorded on both the new and the existing entry may do this.
func (w *Workflow) AddOrUpdateDApp(ctx context.Context, sub Submitter, d entity.DApp) (*Result, error) {
	const op = "commit.add_or_update_dapp"
	if err := w.authenticated(op, sub); err != nil {
		return nil, err
	}
	if err := ownsDApp(op, sub, &d); err != nil {
		return nil, err
	}

	reg, err := w.registry(ctx)
	if err != nil {
		return nil, err
	}
	switch reg.CountDApp(d.DAppID) {
	case 0:
		// existing entries may carry generated .app ids
		if !strings.HasSuffix(d.DAppID, entity.DAppIDSuffix) {
			return nil, errs.E(errs.KindValidation, op, "dApp ID %s is invalid, it must end with %s", d.DAppID, entity.DAppIDSuffix)
		}
		reg.DApps = append(reg.DApps, d)
	case 1:
		i := reg.FindDApp(d.DAppID)
		if err := ownsDApp(op, sub, &reg.DApps[i]); err != nil {
			return nil, err
		}
		reg.DApps[i] = d
		if !d.IsListed {
			reg.RemoveFromSections(d.DAppID)
		}
	default:
		return nil, errs.E(errs.KindValidation, op, "multiple dApps with the same ID %s found", d.DAppID)
	}
	return w.persistRegistry(ctx, sub, op, d.DAppID, "add-"+d.DAppID, reg, d)
}

// AddDApps adds a batch of new dApps in one change. Entries without an id get
// one derived from their name and URL.
func (w *Workflow) AddDApps(ctx context.Context, sub Submitter, dapps []entity.DApp) (*Result, error) {
	const op = "commit.add_dapps"
	if err := w.authenticated(op, sub); err != nil {
		return nil, err
	}
	if len(dapps) == 0 {
		return nil, errs.E(errs.KindValidation, op, "no dApps to add")
	}
	for i := range dapps {
		if err := ownsDApp(op, sub, &dapps[i]); err != nil {
			return nil, err
		}
	}

	reg, err := w.registry(ctx)
	if err != nil {
		return nil, err
	}
	existing := make([]dappid.Entry, 0, len(reg.DApps))
	for _, d := range reg.DApps {
		existing = append(existing, dappid.Entry{ID: d.DAppID, Name: d.Name, URL: d.AppURL})
	}
	gen := dappid.NewGenerator(existing)

	ids := make([]string, 0, len(dapps))
	for i := range dapps {
		d := &dapps[i]
		if d.DAppID == "" {
			id, err := gen.Generate(d.Name, d.AppURL)
			if err != nil {
				return nil, err
			}
			d.DAppID = id
		} else {
			if !strings.HasSuffix(d.DAppID, entity.DAppIDSuffix) {
				return nil, errs.E(errs.KindValidation, op, "dApp ID %s is invalid, it must end with %s", d.DAppID, entity.DAppIDSuffix)
			}
			if reg.FindDApp(d.DAppID) >= 0 {
				return nil, errs.E(errs.KindValidation, op, "dApp ID %s already exists", d.DAppID)
			}
			gen.Reserve(d.DAppID, d.AppURL, d.Name)
		}
		ids = append(ids, d.DAppID)
		reg.DApps = append(reg.DApps, *d)
	}
	return w.persistRegistry(ctx, sub, op, strings.Join(ids, ","), "add-"+strings.Join(ids, "-"), reg, ids)
}

// DeleteDApp removes a dApp and drops it from every featured section.
func (w *Workflow) DeleteDApp(ctx context.Context, sub Submitter, id string) (*Result, error) {
	const op = "commit.delete_dapp"
	reg, i, err := w.ownedDApp(ctx, op, sub, id)
	if err != nil {
		return nil, err
	}
	reg.DApps = append(reg.DApps[:i], reg.DApps[i+1:]...)
	sections := reg.RemoveFromSections(id)
	return w.persistRegistry(ctx, sub, op, id, "delete-"+id, reg, map[string]any{"sections": sections})
}

// ToggleListing flips isListed. A delisted dApp leaves every featured section.
func (w *Workflow) ToggleListing(ctx context.Context, sub Submitter, id string) (*Result, error) {
	const op = "commit.toggle_listing"
	reg, i, err := w.ownedDApp(ctx, op, sub, id)
	if err != nil {
		return nil, err
	}
	d := &reg.DApps[i]
	d.IsListed = !d.IsListed
	summary := map[string]any{"isListed": d.IsListed}
	if !d.IsListed {
		summary["sections"] = reg.RemoveFromSections(id)
	}
	return w.persistRegistry(ctx, sub, op, id, "toggle-listing-"+id, reg, summary)
}

// AddFeaturedSection appends a section of listed dApps.
func (w *Workflow) AddFeaturedSection(ctx context.Context, sub Submitter, section entity.FeaturedSection) (*Result, error) {
	const op = "commit.add_featured_section"
	if err := w.maintainer(op, sub); err != nil {
		return nil, err
	}
	reg, err := w.registry(ctx)
	if err != nil {
		return nil, err
	}
	if err := newSection(op, reg, section); err != nil {
		return nil, err
	}
	if err := requireListed(op, reg, section.DAppIDs); err != nil {
		return nil, err
	}
	reg.FeaturedSections = append(reg.FeaturedSections, section)
	return w.persistRegistry(ctx, sub, op, section.Key, "add-featured-section-"+section.Title, reg, section)
}

func (w *Workflow) RemoveFeaturedSection(ctx context.Context, sub Submitter, key string) (*Result, error) {
	const op = "commit.remove_featured_section"
	if err := w.maintainer(op, sub); err != nil {
		return nil, err
	}
	reg, err := w.registry(ctx)
	if err != nil {
		return nil, err
	}
	i := reg.FindSection(key)
	if i < 0 {
		return nil, errs.E(errs.KindNotFound, op, "no featured section with key %s found", key)
	}
	reg.FeaturedSections = append(reg.FeaturedSections[:i], reg.FeaturedSections[i+1:]...)
	return w.persistRegistry(ctx, sub, op, key, "remove-featured-section-"+key, reg, nil)
}

// ToggleDAppsInFeaturedSection removes the ids already in the section and adds
// the others. Every added id must be listed, else nothing changes.
func (w *Workflow) ToggleDAppsInFeaturedSection(ctx context.Context, sub Submitter, key string, ids []string) (*Result, error) {
	const op = "commit.toggle_featured_dapps"
	if err := w.maintainer(op, sub); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, errs.E(errs.KindValidation, op, "no dApp ids given")
	}
	reg, err := w.registry(ctx)
	if err != nil {
		return nil, err
	}
	i := reg.FindSection(key)
	if i < 0 {
		return nil, errs.E(errs.KindNotFound, op, "no section with key %s found", key)
	}
	next, added := Toggle(reg.FeaturedSections[i].DAppIDs, ids)
	if err := requireListed(op, reg, added); err != nil {
		return nil, err
	}
	reg.FeaturedSections[i].DAppIDs = next
	msg := "add-dapp-to-featured-section-" + key + "-" + strings.Join(ids, "-")
	return w.persistRegistry(ctx, sub, op, key, msg, reg, map[string]any{"toggled": ids})
}

// ownedDApp loads the registry and checks sub owns the single entry with id.
func (w *Workflow) ownedDApp(ctx context.Context, op string, sub Submitter, id string) (*entity.Registry, int, error) {
	if err := w.authenticated(op, sub); err != nil {
		return nil, -1, err
	}
	reg, err := w.registry(ctx)
	if err != nil {
		return nil, -1, err
	}
	switch reg.CountDApp(id) {
	case 0:
		return nil, -1, errs.E(errs.KindNotFound, op, "no dApp with the ID %s found", id)
	case 1:
	default:
		return nil, -1, errs.E(errs.KindValidation, op, "multiple dApps with the same ID %s found", id)
	}
	i := reg.FindDApp(id)
	if err := ownsDApp(op, sub, &reg.DApps[i]); err != nil {
		return nil, -1, err
	}
	return reg, i, nil
}

func ownsDApp(op string, sub Submitter, d *entity.DApp) error {
	owner := d.OwnerIdentity()
	if owner == "" {
		return errs.E(errs.KindAuthorization, op, "developer is unknown in dApp %s", d.DAppID)
	}
	if owner != sub.ID {
		return errs.E(errs.KindAuthorization, op, "cannot change dApp %s as you are not the owner", d.DAppID)
	}
	return nil
}

// sections is implemented by both the registry and a store.
type sections interface {
	FindSection(key string) int
	HasSectionTitle(title string) bool
}

// newSection checks s can be added to existing.
func newSection(op string, existing sections, s entity.FeaturedSection) error {
	if strings.TrimSpace(s.Key) == "" || strings.TrimSpace(s.Title) == "" {
		return errs.E(errs.KindValidation, op, "a section needs a key and a title")
	}
	if len(s.DAppIDs) == 0 {
		return errs.E(errs.KindValidation, op, "a section must have at least one dApp")
	}
	if existing.FindSection(s.Key) >= 0 {
		return errs.E(errs.KindValidation, op, "a section with key %s already exists", s.Key)
	}
	if existing.HasSectionTitle(s.Title) {
		return errs.E(errs.KindValidation, op, "a section with name %s already exists", s.Title)
	}
	return nil
}

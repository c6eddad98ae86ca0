package commit

import (
	"context"
	"strings"

	"dappstore.GO/core/errs"
	"dappstore.GO/model/entity"
	"dappstore.GO/service/enrich"
)

// AddStore registers a new storefront owned by the submitter.
func (w *Workflow) AddStore(ctx context.Context, sub Submitter, s entity.Store) (*Result, error) {
	const op = "commit.add_store"
	if err := w.authenticated(op, sub); err != nil {
		return nil, err
	}
	if err := ownsStore(op, sub, &s); err != nil {
		return nil, err
	}
	if !strings.HasSuffix(s.Key, entity.StoreKeySuffix) {
		return nil, errs.E(errs.KindValidation, op, "store key %s is invalid, it must end with %s", s.Key, entity.StoreKeySuffix)
	}
	st, err := w.stores(ctx)
	if err != nil {
		return nil, err
	}
	for _, existing := range st.DAppStores {
		if strings.EqualFold(existing.Key, s.Key) {
			return nil, errs.E(errs.KindValidation, op, "store already exist with the ID %s", s.Key)
		}
	}
	if len(s.BannedDAppIDs) > 0 || len(s.FeaturedSections) > 0 {
		reg, err := w.registry(ctx)
		if err != nil {
			return nil, err
		}
		if err := storeReferences(op, reg, nil, &s); err != nil {
			return nil, err
		}
	}
	st.DAppStores = append(st.DAppStores, s)
	return w.persistStores(ctx, sub, op, s.Key, "add-"+s.Key, st, s)
}

// UpdateStore replaces a store the submitter owns.
func (w *Workflow) UpdateStore(ctx context.Context, sub Submitter, s entity.Store) (*Result, error) {
	const op = "commit.update_store"
	if err := ownsStore(op, sub, &s); err != nil {
		return nil, err
	}
	st, i, err := w.ownedStore(ctx, op, sub, s.Key)
	if err != nil {
		return nil, err
	}
	reg, err := w.registry(ctx)
	if err != nil {
		return nil, err
	}
	if err := storeReferences(op, reg, &st.DAppStores[i], &s); err != nil {
		return nil, err
	}
	st.DAppStores[i] = s
	return w.persistStores(ctx, sub, op, s.Key, "update-"+s.Key, st, s)
}

func (w *Workflow) DeleteStore(ctx context.Context, sub Submitter, key string) (*Result, error) {
	const op = "commit.delete_store"
	st, i, err := w.ownedStore(ctx, op, sub, key)
	if err != nil {
		return nil, err
	}
	st.DAppStores = append(st.DAppStores[:i], st.DAppStores[i+1:]...)
	return w.persistStores(ctx, sub, op, key, "delete-"+key, st, nil)
}

// ToggleBannedDApps flips the ban of every id for the store. Newly banned ids
// must exist and be listed in the registry.
func (w *Workflow) ToggleBannedDApps(ctx context.Context, sub Submitter, key string, ids []string) (*Result, error) {
	const op = "commit.toggle_banned_dapps"
	if len(ids) == 0 {
		return nil, errs.E(errs.KindValidation, op, "no dApp ids given")
	}
	st, i, err := w.ownedStore(ctx, op, sub, key)
	if err != nil {
		return nil, err
	}
	store := &st.DAppStores[i]
	next, added := Toggle(store.BannedDAppIDs, ids)
	if err := w.listed(ctx, op, added); err != nil {
		return nil, err
	}
	store.BannedDAppIDs = next
	msg := "add-dapp-to-bannedList-of-" + key + "-" + strings.Join(ids, "-")
	return w.persistStores(ctx, sub, op, key, msg, st, map[string]any{"toggled": ids})
}

func (w *Workflow) AddStoreFeaturedSection(ctx context.Context, sub Submitter, key string, section entity.FeaturedSection) (*Result, error) {
	const op = "commit.add_store_featured_section"
	st, i, err := w.ownedStore(ctx, op, sub, key)
	if err != nil {
		return nil, err
	}
	store := &st.DAppStores[i]
	if err := newSection(op, store, section); err != nil {
		return nil, err
	}
	if err := w.listed(ctx, op, section.DAppIDs); err != nil {
		return nil, err
	}
	store.FeaturedSections = append(store.FeaturedSections, section)
	msg := "add-featured-section-" + section.Title + "-in-store-" + key
	return w.persistStores(ctx, sub, op, key, msg, st, section)
}

func (w *Workflow) RemoveStoreFeaturedSection(ctx context.Context, sub Submitter, key, sectionKey string) (*Result, error) {
	const op = "commit.remove_store_featured_section"
	st, i, err := w.ownedStore(ctx, op, sub, key)
	if err != nil {
		return nil, err
	}
	store := &st.DAppStores[i]
	j := store.FindSection(sectionKey)
	if j < 0 {
		return nil, errs.E(errs.KindNotFound, op, "no featured section with key %s found", sectionKey)
	}
	store.FeaturedSections = append(store.FeaturedSections[:j], store.FeaturedSections[j+1:]...)
	msg := "remove-featured-section-" + sectionKey + "-in-store-" + key
	return w.persistStores(ctx, sub, op, key, msg, st, nil)
}

func (w *Workflow) ToggleDAppsInStoreFeaturedSection(ctx context.Context, sub Submitter, key, sectionKey string, ids []string) (*Result, error) {
	const op = "commit.toggle_store_featured_dapps"
	if len(ids) == 0 {
		return nil, errs.E(errs.KindValidation, op, "no dApp ids given")
	}
	st, i, err := w.ownedStore(ctx, op, sub, key)
	if err != nil {
		return nil, err
	}
	store := &st.DAppStores[i]
	j := store.FindSection(sectionKey)
	if j < 0 {
		return nil, errs.E(errs.KindNotFound, op, "no section with key %s found", sectionKey)
	}
	next, added := Toggle(store.FeaturedSections[j].DAppIDs, ids)
	if err := w.listed(ctx, op, added); err != nil {
		return nil, err
	}
	store.FeaturedSections[j].DAppIDs = next
	msg := "add-dapp-to-featured-section-" + sectionKey + "-in-store-" + key
	return w.persistStores(ctx, sub, op, key, msg, st, map[string]any{"section": sectionKey, "toggled": ids})
}

// UpsertEnrich creates or patches the store's overlay for one dApp.
func (w *Workflow) UpsertEnrich(ctx context.Context, sub Submitter, key, dappID string, p enrich.Patch) (*Result, error) {
	const op = "commit.upsert_enrich"
	if len(p.Add) == 0 && len(p.Remove) == 0 {
		return nil, errs.E(errs.KindValidation, op, "enrich patch is empty")
	}
	st, i, err := w.ownedStore(ctx, op, sub, key)
	if err != nil {
		return nil, err
	}
	reg, err := w.registry(ctx)
	if err != nil {
		return nil, err
	}
	if reg.FindDApp(dappID) < 0 {
		return nil, errs.E(errs.KindReference, op, "dApp ID %s not found in registry", dappID)
	}

	store := &st.DAppStores[i]
	j := store.FindEnrich(dappID)
	if j < 0 {
		store.DAppsEnrich = append(store.DAppsEnrich, entity.EnrichRecord{DAppID: dappID})
		j = len(store.DAppsEnrich) - 1
	}
	if err := enrich.Update(&store.DAppsEnrich[j], p); err != nil {
		return nil, errs.Wrap(errs.KindValidation, op, err, "applying enrich patch")
	}
	if len(store.DAppsEnrich[j].Fields) == 0 {
		store.DAppsEnrich = append(store.DAppsEnrich[:j], store.DAppsEnrich[j+1:]...)
	}
	msg := "enrich-" + dappID + "-in-store-" + key
	return w.persistStores(ctx, sub, op, key, msg, st, p)
}

func (w *Workflow) ownedStore(ctx context.Context, op string, sub Submitter, key string) (*entity.Stores, int, error) {
	if err := w.authenticated(op, sub); err != nil {
		return nil, -1, err
	}
	st, err := w.stores(ctx)
	if err != nil {
		return nil, -1, err
	}
	i := st.FindStore(key)
	if i < 0 {
		return nil, -1, errs.E(errs.KindNotFound, op, "no store with key %s found", key)
	}
	if err := ownsStore(op, sub, &st.DAppStores[i]); err != nil {
		return nil, -1, err
	}
	return st, i, nil
}

func (w *Workflow) listed(ctx context.Context, op string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	reg, err := w.registry(ctx)
	if err != nil {
		return err
	}
	return requireListed(op, reg, ids)
}

func ownsStore(op string, sub Submitter, s *entity.Store) error {
	owner := s.OwnerIdentity()
	if owner == "" {
		return errs.E(errs.KindAuthorization, op, "owner is unknown for store %s", s.Key)
	}
	if owner != sub.ID {
		return errs.E(errs.KindAuthorization, op, "cannot change store %s as you are not the owner", s.Key)
	}
	return nil
}

// storeReferences checks the ids s references that prev did not. Newly
// banned and newly featured ids must both exist and be listed.
func storeReferences(op string, reg *entity.Registry, prev, s *entity.Store) error {
	known := map[string]bool{}
	if prev != nil {
		for _, id := range prev.BannedDAppIDs {
			known["b:"+id] = true
		}
		for _, sec := range prev.FeaturedSections {
			for _, id := range sec.DAppIDs {
				known["f:"+id] = true
			}
		}
	}
	var added []string
	add := func(id string) {
		if !known["a:"+id] {
			known["a:"+id] = true
			added = append(added, id)
		}
	}
	for _, id := range s.BannedDAppIDs {
		if !known["b:"+id] {
			add(id)
		}
	}
	for _, sec := range s.FeaturedSections {
		for _, id := range sec.DAppIDs {
			if !known["f:"+id] {
				add(id)
			}
		}
	}
	return requireListed(op, reg, added)
}

package moniker

import (
	"github.com/ValentinKolb/moniker/lib/db"
	"github.com/ValentinKolb/moniker/lib/store"
)

// tierNamespace validates the arguments and resolves the namespace of a (category, tier) pair
func (d *DB) tierNamespace(category string, tier Tier, name *string) (store.Namespace, error) {
	if err := d.requireReady(); err != nil {
		return nil, err
	}
	if _, err := ParseTier(string(tier)); err != nil {
		return nil, err
	}
	if name != nil && *name == "" {
		return nil, &InvalidArgumentError{Field: "name", Reason: "name cannot be empty"}
	}
	h, err := d.resolve(category)
	if err != nil {
		return nil, err
	}
	return h.Tier(tier), nil
}

// tierLock returns the lockmgr key guarding a (category, tier) pair
func tierLock(category string, tier Tier) string {
	return db.Path{category, tier.String()}.String()
}

// CreateName stores a freshly generated identifier for name in the tier of the category.
// It fails with *NameAlreadyExistsError if the name is taken, the stored identifier is left untouched then.
func (d *DB) CreateName(category string, tier Tier, name string) error {
	ns, err := d.tierNamespace(category, tier, &name)
	if err != nil {
		d.metrics.opError("create_name")
		return err
	}

	unlock := d.locks.Lock(tierLock(category, tier))
	defer unlock()

	var existing string
	err = ns.Get(name, &existing)
	switch {
	case err == nil:
		d.metrics.opError("create_name")
		return &NameAlreadyExistsError{Category: category, Tier: tier, Name: name}
	case !store.IsNotFound(err):
		d.metrics.opError("create_name")
		return err
	}

	if err := ns.Put(name, d.opts.newID()); err != nil {
		d.metrics.opError("create_name")
		return err
	}

	log.Infof("successfully put %s into %s", name, ns.Path())
	d.metrics.namesCreated.Inc()
	return nil
}

// DeleteName removes name from the tier of the category.
// A name that was never created fails with *NameNotFoundError.
func (d *DB) DeleteName(category string, tier Tier, name string) error {
	ns, err := d.tierNamespace(category, tier, &name)
	if err != nil {
		d.metrics.opError("delete_name")
		return err
	}

	unlock := d.locks.Lock(tierLock(category, tier))
	defer unlock()

	var existing string
	if err := ns.Get(name, &existing); err != nil {
		d.metrics.opError("delete_name")
		if store.IsNotFound(err) {
			return &NameNotFoundError{Category: category, Tier: tier, Name: name, Err: err}
		}
		return err
	}

	if err := ns.Delete(name); err != nil {
		d.metrics.opError("delete_name")
		return err
	}

	log.Infof("successfully deleted %s from %s", name, ns.Path())
	d.metrics.namesDeleted.Inc()
	return nil
}

// ListNames returns all names of the tier in the order the store enumerates them
func (d *DB) ListNames(category string, tier Tier) ([]string, error) {
	ns, err := d.tierNamespace(category, tier, nil)
	if err != nil {
		d.metrics.opError("list_names")
		return nil, err
	}

	names, err := ns.Keys()
	if err != nil {
		d.metrics.opError("list_names")
		return nil, err
	}
	if names == nil {
		names = []string{}
	}
	return names, nil
}

// NameExists reports whether an identifier is stored for name
func (d *DB) NameExists(category string, tier Tier, name string) (bool, error) {
	ns, err := d.tierNamespace(category, tier, &name)
	if err != nil {
		return false, err
	}

	var id string
	err = ns.Get(name, &id)
	switch {
	case err == nil:
		return true, nil
	case store.IsNotFound(err):
		return false, nil
	default:
		return false, err
	}
}

// Package crop holds the crop profile table and the fixed crop
// prediction tree.
package crop

// Profile describes the target soil conditions for a single crop.
// TargetN/P/K are the desired nutrient levels; DryThreshold is the
// moisture reading above which the soil counts as too dry.
type Profile struct {
	Name         string
	LocalName    string
	TargetN      float32
	TargetP      float32
	TargetK      float32
	DryThreshold int
	Fertilizer   string
}

// Catalog is an ordered, immutable set of crop profiles. The order
// defines menu traversal order.
type Catalog struct {
	profiles []Profile
}

// NewCatalog creates a catalog from an ordered profile slice.
func NewCatalog(profiles []Profile) Catalog {
	return Catalog{profiles: profiles}
}

// Len returns the number of crops in the catalog.
func (c Catalog) Len() int {
	return len(c.profiles)
}

// At returns the profile at index i.
func (c Catalog) At(i int) Profile {
	return c.profiles[i]
}

// Names returns the crop names in catalog order.
func (c Catalog) Names() []string {
	names := make([]string, len(c.profiles))
	for i, p := range c.profiles {
		names[i] = p.Name
	}
	return names
}

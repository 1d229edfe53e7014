package catalog

// Filter selects bands by attribute. Zero-valued fields match every band.
type Filter struct {
	Region     string
	Modulation Modulation
	Bandwidth  int
}

func (f Filter) match(mod Modulation, b Band) bool {
	if f.Region != "" && b.Region != f.Region {
		return false
	}
	if f.Modulation != "" && mod != f.Modulation {
		return false
	}
	if f.Bandwidth != 0 && b.Bandwidth != f.Bandwidth {
		return false
	}
	return true
}

// Filter returns a new catalog holding only the bands that match f. Ranges
// and modulations left without bands are dropped.
func (c *Catalog) Filter(f Filter) *Catalog {
	out := make(tree)
	for mod, ranges := range c.data {
		for rng, bands := range ranges {
			for id, b := range bands {
				if !f.match(mod, b) {
					continue
				}
				if out[mod] == nil {
					out[mod] = make(map[string]map[string]Band)
				}
				if out[mod][rng] == nil {
					out[mod][rng] = make(map[string]Band)
				}
				out[mod][rng][id] = b.clone()
			}
		}
	}
	return &Catalog{source: c.source, data: out}
}

func (c *Catalog) FilterByRegion(region string) *Catalog {
	return c.Filter(Filter{Region: region})
}

func (c *Catalog) FilterByModulation(mod Modulation) *Catalog {
	return c.Filter(Filter{Modulation: mod})
}

func (c *Catalog) FilterByBandwidth(bandwidth int) *Catalog {
	return c.Filter(Filter{Bandwidth: bandwidth})
}

package annotate

import "sort"

// Region is a half-open byte interval [Start, End) in the output buffer.
type Region struct {
	Start int
	End   int
}

func (r Region) overlaps(start, end int) bool {
	return !(end <= r.Start || start >= r.End)
}

// RegionSet holds disjoint regions sorted by Start.
type RegionSet struct {
	regions []Region
}

// Overlaps reports whether [start, end) intersects any region in the set.
func (s *RegionSet) Overlaps(start, end int) bool {
	// Regions are disjoint, so End is sorted too.
	i := sort.Search(len(s.regions), func(i int) bool { return s.regions[i].End > start })
	return i < len(s.regions) && s.regions[i].overlaps(start, end)
}

// Insert adds r unless it is empty or overlaps an existing region, and reports
// whether it was added.
func (s *RegionSet) Insert(r Region) bool {
	if r.End <= r.Start || s.Overlaps(r.Start, r.End) {
		return false
	}
	i := sort.Search(len(s.regions), func(i int) bool { return s.regions[i].Start >= r.Start })
	s.regions = append(s.regions, Region{})
	copy(s.regions[i+1:], s.regions[i:])
	s.regions[i] = r
	return true
}

// ShiftAfter moves every region starting strictly after pos forward by delta.
func (s *RegionSet) ShiftAfter(pos, delta int) {
	i := sort.Search(len(s.regions), func(i int) bool { return s.regions[i].Start > pos })
	for ; i < len(s.regions); i++ {
		s.regions[i].Start += delta
		s.regions[i].End += delta
	}
}

// Regions returns a copy of the set in order.
func (s *RegionSet) Regions() []Region {
	return append([]Region(nil), s.regions...)
}

// Len returns the number of regions.
func (s *RegionSet) Len() int { return len(s.regions) }

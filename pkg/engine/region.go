package engine

import (
	"fmt"
	"strconv"
)

// TerritoryID indexes the territory array.
type TerritoryID int

// SeaZoneID indexes the sea-zone array.
type SeaZoneID int

// RegionKind distinguishes land territories from sea zones.
type RegionKind uint8

const (
	RegionLand RegionKind = iota
	RegionSea
)

// RegionID is a tagged key into either the territory or the sea-zone array.
// Its text form is "L<n>" or "S<n>".
type RegionID struct {
	Kind  RegionKind
	Index int
}

// Land returns the region key of a territory.
func Land(id TerritoryID) RegionID { return RegionID{Kind: RegionLand, Index: int(id)} }

// Sea returns the region key of a sea zone.
func Sea(id SeaZoneID) RegionID { return RegionID{Kind: RegionSea, Index: int(id)} }

func (r RegionID) IsLand() bool { return r.Kind == RegionLand }
func (r RegionID) IsSea() bool  { return r.Kind == RegionSea }

// Territory returns the territory index; only meaningful for land regions.
func (r RegionID) Territory() TerritoryID { return TerritoryID(r.Index) }

// SeaZone returns the sea-zone index; only meaningful for sea regions.
func (r RegionID) SeaZone() SeaZoneID { return SeaZoneID(r.Index) }

func (r RegionID) String() string {
	if r.Kind == RegionSea {
		return "S" + strconv.Itoa(r.Index)
	}
	return "L" + strconv.Itoa(r.Index)
}

// ParseRegion parses the "L<n>" / "S<n>" text form.
func ParseRegion(s string) (RegionID, error) {
	if len(s) < 2 {
		return RegionID{}, fmt.Errorf("invalid region %q", s)
	}
	n, err := strconv.Atoi(s[1:])
	if err != nil || n < 0 {
		return RegionID{}, fmt.Errorf("invalid region %q", s)
	}
	switch s[0] {
	case 'L':
		return Land(TerritoryID(n)), nil
	case 'S':
		return Sea(SeaZoneID(n)), nil
	}
	return RegionID{}, fmt.Errorf("invalid region %q", s)
}

func (r RegionID) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

func (r *RegionID) UnmarshalText(b []byte) error {
	parsed, err := ParseRegion(string(b))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// TerritoryState is the mutable part of a land territory.
type TerritoryState struct {
	Owner        Power      `json:"owner,omitempty"`
	Units        []Unit     `json:"units"`
	Facilities   []Facility `json:"facilities,omitempty"`
	JustCaptured bool       `json:"just_captured,omitempty"`
}

// SeaZoneState is the mutable part of a sea zone.
type SeaZoneState struct {
	Units []Unit `json:"units"`
}

// IndustrialComplex returns the territory's industrial complex, or nil.
func (t *TerritoryState) IndustrialComplex() *Facility {
	for i := range t.Facilities {
		if t.Facilities[i].Type.IsIndustrial() {
			return &t.Facilities[i]
		}
	}
	return nil
}

// HasFacility reports whether the territory has a facility of the given type.
func (t *TerritoryState) HasFacility(ft FacilityType) bool {
	for _, f := range t.Facilities {
		if f.Type == ft {
			return true
		}
	}
	return false
}

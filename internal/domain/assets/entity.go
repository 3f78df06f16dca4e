package assets

// AssetID identifier type
type AssetID int64

// Asset is a monitored web asset. Immutable during a batch run; the
// citizen impact level selects which KPI target threshold applies.
type Asset struct {
	ID                 AssetID `json:"id"`
	Name               string  `json:"name"`
	URL                string  `json:"url"`
	CitizenImpactLevel string  `json:"citizen_impact_level,omitempty"`
	Ministry           string  `json:"ministry,omitempty"`
	Department         string  `json:"department,omitempty"`
}

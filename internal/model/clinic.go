package model

// CostLevel describes how a clinic prices its services.
type CostLevel string

const (
	CostFree       CostLevel = "free"
	CostLowCost    CostLevel = "low-cost"
	CostMarketRate CostLevel = "market-rate"
)

// ClinicRecord is one clinic as supplied by the directory store.
// The engine treats it as an immutable read-only value for the duration
// of an analysis pass.
type ClinicRecord struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	City        string    `json:"city"`
	State       string    `json:"state"`
	Latitude    *float64  `json:"latitude,omitempty"`
	Longitude   *float64  `json:"longitude,omitempty"`
	Phone       string    `json:"phone,omitempty"`
	Email       string    `json:"email,omitempty"`
	Website     string    `json:"website,omitempty"`
	Services    []string  `json:"services"`
	Cost        CostLevel `json:"cost_level"`
	Teletherapy bool      `json:"teletherapy"`
	Verified    bool      `json:"verified"`
	Notes       string    `json:"notes,omitempty"`
}

// HasCoordinates reports whether the clinic can participate in
// distance-based computations.
func (c *ClinicRecord) HasCoordinates() bool {
	return c.Latitude != nil && c.Longitude != nil
}

// HasService reports whether the clinic offers the given service tag.
func (c *ClinicRecord) HasService(tag string) bool {
	for _, s := range c.Services {
		if s == tag {
			return true
		}
	}
	return false
}

// PopulationCenter is a static reference datum for coverage analysis,
// loaded once at engine construction.
type PopulationCenter struct {
	City       string  `json:"city"`
	State      string  `json:"state"`
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
	Population int     `json:"population"`
}

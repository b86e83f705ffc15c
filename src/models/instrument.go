package models

// MInstrument is one row of the tradable instrument listing.
type MInstrument struct {
	Symbol       string   `json:"symbol"`
	Name         string   `json:"name"`
	Category     Category `json:"category"`
	Digits       int      `json:"digits"`
	ContractSize int      `json:"contractSize"`
	MinVolume    float64  `json:"minVolume"`
	MaxVolume    float64  `json:"maxVolume"`
	VolumeStep   float64  `json:"volumeStep"`
	Popular      bool     `json:"popular"`
	// Open is only set for exchange-traded instruments (Stocks); nil means
	// the instrument trades around the clock or session state is unknown.
	Open *bool `json:"open,omitempty"`
}

// -----------------------------------------------------------------------------

// MSymbolSpec is the instrument metadata a venue reports for one symbol.
// Path and VenueCategory carry the venue's own grouping (e.g. "Forex\\Majors")
// and are used to learn classifications ahead of the heuristic rules.
type MSymbolSpec struct {
	Symbol        string `json:"symbol"`
	Description   string `json:"description"`
	Path          string `json:"path"`
	VenueCategory string `json:"category"`
	Exchange      string `json:"exchange"`
}

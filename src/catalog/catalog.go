package catalog

import (
	"regexp"
	"strings"
	"sync"

	"price-aggregator/src/interfaces"
	"price-aggregator/src/logger"
	"price-aggregator/src/models"
)

// -----------------------------------------------------------------------------

// cryptoPrefixes are the base currencies used by the crypto pattern heuristic.
var cryptoPrefixes = []string{"BTC", "ETH", "BNB", "SOL", "XRP", "ADA", "DOGE"}

var sixLetterPattern = regexp.MustCompile(`^[A-Z]{6}$`)

// -----------------------------------------------------------------------------

// classifier is one tier of the categorization chain. Returns false when the
// tier has no opinion on the symbol.
type classifier func(c *Catalog, symbol string) (models.Category, bool)

// -----------------------------------------------------------------------------

// Catalog classifies symbols into categories and supplies instrument metadata
// (display names, decimal precision, contract sizes). Classification runs an
// ordered chain: venue-learned metadata, then static tables, then pattern
// heuristics. First matching tier wins.
type Catalog struct {
	mu      sync.RWMutex
	learned map[string]models.Category
	names   map[string]string

	chain  []classifier
	static map[string]models.Category
	store  interfaces.ICatalogStore
	logger *logger.Logger
}

// -----------------------------------------------------------------------------

// NewCatalog creates a catalog with the default classifier chain. The store
// is optional; pass nil to keep learned metadata in memory only.
func NewCatalog(store interfaces.ICatalogStore, log *logger.Logger) *Catalog {
	c := &Catalog{
		learned: make(map[string]models.Category),
		names:   make(map[string]string),
		static:  make(map[string]models.Category),
		store:   store,
		logger:  log,
	}

	// Classification order matters: learned lists must win over the static
	// tables, and both win over bare pattern heuristics.
	for _, s := range ForexSymbols {
		c.static[s] = models.CategoryForex
	}
	for _, s := range MetalSymbols {
		c.static[s] = models.CategoryMetals
	}
	for _, s := range EnergySymbols {
		c.static[s] = models.CategoryEnergy
	}
	for _, s := range StockSymbols {
		c.static[s] = models.CategoryStocks
	}
	for _, s := range CryptoSymbols {
		c.static[s] = models.CategoryCrypto
	}

	c.chain = []classifier{
		classifyLearned,
		classifyStatic,
		classifyHeuristic,
	}

	return c
}

// -----------------------------------------------------------------------------

func classifyLearned(c *Catalog, symbol string) (models.Category, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	cat, ok := c.learned[symbol]
	return cat, ok
}

// -----------------------------------------------------------------------------

func classifyStatic(c *Catalog, symbol string) (models.Category, bool) {
	cat, ok := c.static[symbol]
	return cat, ok
}

// -----------------------------------------------------------------------------

func classifyHeuristic(c *Catalog, symbol string) (models.Category, bool) {
	if strings.HasPrefix(symbol, "XAU") || strings.HasPrefix(symbol, "XAG") ||
		strings.HasPrefix(symbol, "XPT") || strings.HasPrefix(symbol, "XPD") {
		return models.CategoryMetals, true
	}

	switch symbol {
	case "USOIL", "UKOIL", "NGAS", "BRENT", "WTI":
		return models.CategoryEnergy, true
	}

	if strings.HasSuffix(symbol, "USD") {
		for _, prefix := range cryptoPrefixes {
			if strings.HasPrefix(symbol, prefix) {
				return models.CategoryCrypto, true
			}
		}
	}

	if sixLetterPattern.MatchString(symbol) {
		return models.CategoryForex, true
	}

	return models.CategoryOther, true
}

// -----------------------------------------------------------------------------

// Categorize returns the category for an arbitrary symbol. Pure with respect
// to the current learned state: repeated calls always agree.
func (c *Catalog) Categorize(symbol string) models.Category {
	for _, tier := range c.chain {
		if cat, ok := tier(c, symbol); ok {
			return cat
		}
	}
	return models.CategoryOther
}

// -----------------------------------------------------------------------------

// Learn records the category and display name reported by the venue for one
// specification. First write survives; later specifications for the same
// symbol never reclassify it.
func (c *Catalog) Learn(spec models.MSymbolSpec) {
	if spec.Symbol == "" {
		return
	}

	cat := categoryFromSpec(spec)

	c.mu.Lock()
	if spec.Description != "" {
		if _, seen := c.names[spec.Symbol]; !seen {
			c.names[spec.Symbol] = spec.Description
		}
	}
	if _, seen := c.learned[spec.Symbol]; seen || cat == "" {
		c.mu.Unlock()
		return
	}
	c.learned[spec.Symbol] = cat
	c.mu.Unlock()
}

// -----------------------------------------------------------------------------

// LearnAll ingests a specification batch and persists it when a store is
// configured. Persistence failures are logged, never fatal.
func (c *Catalog) LearnAll(specs []models.MSymbolSpec) {
	for _, spec := range specs {
		c.Learn(spec)
	}

	if c.store != nil && len(specs) > 0 {
		if err := c.store.UpsertSpecifications(specs); err != nil {
			c.logger.Warning("Failed to persist %d specifications: %v", len(specs), err)
		}
	}
}

// -----------------------------------------------------------------------------

// LoadFromStore replays specifications persisted by previous runs so the
// learned tier survives restarts.
func (c *Catalog) LoadFromStore() error {
	if c.store == nil {
		return nil
	}

	specs, err := c.store.LoadSpecifications()
	if err != nil {
		return err
	}

	for _, spec := range specs {
		c.Learn(spec)
	}
	if len(specs) > 0 {
		c.logger.Info("Restored %d learned specifications from storage", len(specs))
	}
	return nil
}

// -----------------------------------------------------------------------------

// categoryFromSpec maps venue path/category metadata to a category, falling
// back to pattern rules when the metadata carries no hint.
func categoryFromSpec(spec models.MSymbolSpec) models.Category {
	path := strings.ToLower(spec.Path)
	category := strings.ToLower(spec.VenueCategory)
	symbol := spec.Symbol

	switch {
	case strings.Contains(path, "forex") || strings.Contains(category, "forex"):
		return models.CategoryForex
	case strings.Contains(path, "crypto") || strings.Contains(category, "crypto"):
		return models.CategoryCrypto
	case strings.Contains(path, "metal") || strings.Contains(category, "metal"):
		return models.CategoryMetals
	case strings.Contains(path, "energy") || strings.Contains(path, "oil") || strings.Contains(category, "energy"):
		return models.CategoryEnergy
	case strings.Contains(path, "stock") || strings.Contains(category, "stock") || spec.Exchange != "":
		return models.CategoryStocks
	}

	// No usable metadata: defer to the pattern tier so the learned table
	// only ever holds venue-confirmed classifications.
	if sixLetterPattern.MatchString(symbol) &&
		!strings.HasPrefix(symbol, "XA") && !strings.HasPrefix(symbol, "XP") {
		return models.CategoryForex
	}
	return ""
}

// -----------------------------------------------------------------------------

// Name returns the display name for a symbol: venue description first, then
// the static name table, then the symbol itself.
func (c *Catalog) Name(symbol string) string {
	c.mu.RLock()
	name, ok := c.names[symbol]
	c.mu.RUnlock()
	if ok {
		return name
	}
	if name, ok := instrumentNames[symbol]; ok {
		return name
	}
	return symbol
}

// -----------------------------------------------------------------------------

// Digits returns the decimal precision used to render a quote.
func (c *Catalog) Digits(symbol string) int {
	if strings.Contains(symbol, "JPY") {
		return 3
	}
	if symbol == "XAUUSD" {
		return 2
	}
	if symbol == "XAGUSD" {
		return 3
	}

	switch c.Categorize(symbol) {
	case models.CategoryCrypto, models.CategoryStocks:
		return 2
	}
	return 5
}

// -----------------------------------------------------------------------------

// ContractSize returns the nominal units per lot.
func (c *Catalog) ContractSize(symbol string) int {
	switch c.Categorize(symbol) {
	case models.CategoryCrypto:
		return 1
	case models.CategoryMetals:
		return 100
	case models.CategoryEnergy:
		return 1000
	}
	return 100000
}

// -----------------------------------------------------------------------------

// IsPopular reports whether the symbol is in the default set for its category.
func (c *Catalog) IsPopular(symbol string) bool {
	cat := c.Categorize(symbol)
	for _, s := range PopularInstruments[cat] {
		if s == symbol {
			return true
		}
	}
	return false
}

// -----------------------------------------------------------------------------

// AllSymbols returns the union of every static table, deduplicated. Used as
// the instrument universe while no live symbol has reported yet.
func AllSymbols() []string {
	seen := make(map[string]bool)
	var all []string
	for _, list := range [][]string{ForexSymbols, MetalSymbols, EnergySymbols, CryptoSymbols, StockSymbols} {
		for _, s := range list {
			if !seen[s] {
				seen[s] = true
				all = append(all, s)
			}
		}
	}
	return all
}

// -----------------------------------------------------------------------------

// Instrument builds the full metadata record for one symbol. stockOpen is an
// optional market-session hint applied to stock instruments only.
func (c *Catalog) Instrument(symbol string, stockOpen *bool) models.MInstrument {
	cat := c.Categorize(symbol)

	inst := models.MInstrument{
		Symbol:       symbol,
		Name:         c.Name(symbol),
		Category:     cat,
		Digits:       c.Digits(symbol),
		ContractSize: c.ContractSize(symbol),
		MinVolume:    0.01,
		MaxVolume:    100,
		VolumeStep:   0.01,
		Popular:      c.IsPopular(symbol),
	}
	if cat == models.CategoryStocks {
		inst.Open = stockOpen
	}
	return inst
}

// -----------------------------------------------------------------------------

// Instruments builds metadata for the given symbols, or for the full static
// universe when the list is empty.
func (c *Catalog) Instruments(symbols []string, stockOpen *bool) []models.MInstrument {
	if len(symbols) == 0 {
		symbols = AllSymbols()
	}

	instruments := make([]models.MInstrument, 0, len(symbols))
	for _, symbol := range symbols {
		instruments = append(instruments, c.Instrument(symbol, stockOpen))
	}
	return instruments
}

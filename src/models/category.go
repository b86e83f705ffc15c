package models

// Category is the asset class of a symbol.
type Category string

const (
	CategoryForex  Category = "Forex"
	CategoryMetals Category = "Metals"
	CategoryEnergy Category = "Energy"
	CategoryCrypto Category = "Crypto"
	CategoryStocks Category = "Stocks"
	CategoryOther  Category = "Other"
)

package catalog

import "price-aggregator/src/models"

// -----------------------------------------------------------------------------
// Static symbol tables. Used as the second classification tier, after
// venue-learned metadata and before pattern heuristics, and as the instrument
// universe while the feed has not reported any live symbol yet.
// -----------------------------------------------------------------------------

var ForexSymbols = []string{
	"EURUSD", "GBPUSD", "USDJPY", "USDCHF", "AUDUSD", "NZDUSD", "USDCAD",
	"EURGBP", "EURJPY", "GBPJPY", "EURCHF", "EURAUD", "EURCAD", "AUDCAD",
	"AUDJPY", "CADJPY", "CHFJPY", "NZDJPY", "AUDNZD", "CADCHF", "GBPCHF",
	"GBPNZD", "EURNZD", "NZDCAD", "NZDCHF", "AUDCHF", "GBPAUD", "GBPCAD",
	"USDSGD", "USDHKD", "USDZAR", "USDTRY", "USDMXN", "USDPLN", "USDSEK",
	"USDNOK", "USDDKK", "USDCNH", "EURPLN", "EURSEK", "EURNOK", "EURDKK",
	"GBPSEK", "GBPNOK", "CHFSEK", "SEKJPY", "NOKJPY", "SGDJPY", "ZARJPY",
}

var CryptoSymbols = []string{
	"BTCUSD", "ETHUSD", "BNBUSD", "SOLUSD", "XRPUSD", "ADAUSD", "DOGEUSD",
	"TRXUSD", "LINKUSD", "MATICUSD", "DOTUSD", "SHIBUSD", "LTCUSD", "BCHUSD",
	"AVAXUSD", "XLMUSD", "UNIUSD", "ATOMUSD", "ETCUSD", "FILUSD", "ICPUSD",
	"VETUSD", "NEARUSD", "GRTUSD", "AAVEUSD", "MKRUSD", "ALGOUSD", "FTMUSD",
	"SANDUSD", "MANAUSD", "AXSUSD", "THETAUSD", "FLOWUSD", "SNXUSD", "EOSUSD",
	"CHZUSD", "ENJUSD", "PEPEUSD", "ARBUSD", "OPUSD", "SUIUSD", "APTUSD",
	"INJUSD", "TONUSD", "HBARUSD", "NEOUSD",
}

var StockSymbols = []string{
	"AAPL", "MSFT", "GOOGL", "AMZN", "NVDA", "META", "TSLA",
	"JPM", "V", "JNJ", "WMT", "PG", "MA", "UNH", "HD",
	"DIS", "BAC", "ADBE", "CRM", "NFLX", "CSCO",
	"PFE", "TMO", "ABT", "COST", "PEP", "AVGO", "NKE",
	"MRK", "ABBV", "KO", "LLY", "CVX", "MCD", "WFC",
	"DHR", "ACN", "NEE", "TXN", "PM", "BMY", "UPS",
	"QCOM", "RTX", "HON", "INTC", "AMD", "PYPL", "SBUX",
}

var MetalSymbols = []string{
	"XAUUSD", "XAGUSD", "XPTUSD", "XPDUSD", "XAUEUR", "XAUAUD", "XAUGBP",
	"XAUCHF", "XAUJPY", "XAGEUR", "XAGAUD", "XAGGBP",
}

var EnergySymbols = []string{
	"USOIL", "UKOIL", "NGAS", "BRENT", "WTI", "GASOLINE", "HEATING",
}

// -----------------------------------------------------------------------------

// PopularInstruments are the per-category defaults shown before a client asks
// for the full universe.
var PopularInstruments = map[models.Category][]string{
	models.CategoryForex:  {"EURUSD", "GBPUSD", "USDJPY", "USDCHF", "AUDUSD", "NZDUSD", "USDCAD", "EURGBP", "EURJPY", "GBPJPY", "EURCHF", "EURAUD", "AUDCAD", "AUDJPY", "CADJPY"},
	models.CategoryMetals: {"XAUUSD", "XAGUSD", "XPTUSD", "XPDUSD", "XAUEUR", "XAUAUD", "XAUGBP", "XAUCHF", "XAUJPY", "XAGEUR"},
	models.CategoryEnergy: {"USOIL", "UKOIL", "NGAS", "BRENT", "WTI", "GASOLINE", "HEATING"},
	models.CategoryCrypto: {"BTCUSD", "ETHUSD", "BNBUSD", "SOLUSD", "XRPUSD", "ADAUSD", "DOGEUSD", "DOTUSD", "MATICUSD", "LTCUSD", "AVAXUSD", "LINKUSD", "SHIBUSD", "UNIUSD", "ATOMUSD"},
	models.CategoryStocks: {"AAPL", "MSFT", "GOOGL", "AMZN", "NVDA", "META", "TSLA", "JPM", "V", "JNJ", "WMT", "PG", "MA", "UNH", "HD"},
}

// -----------------------------------------------------------------------------

// instrumentNames maps symbols to human-readable display names. Symbols
// without an entry fall back to the raw symbol, or to the description the
// venue reported in its specifications.
var instrumentNames = map[string]string{
	// Forex majors & crosses
	"EURUSD": "EUR/USD", "GBPUSD": "GBP/USD", "USDJPY": "USD/JPY", "USDCHF": "USD/CHF",
	"AUDUSD": "AUD/USD", "NZDUSD": "NZD/USD", "USDCAD": "USD/CAD", "EURGBP": "EUR/GBP",
	"EURJPY": "EUR/JPY", "GBPJPY": "GBP/JPY", "EURCHF": "EUR/CHF", "EURAUD": "EUR/AUD",
	"EURCAD": "EUR/CAD", "GBPAUD": "GBP/AUD", "GBPCAD": "GBP/CAD", "AUDCAD": "AUD/CAD",
	"AUDJPY": "AUD/JPY", "CADJPY": "CAD/JPY", "CHFJPY": "CHF/JPY", "NZDJPY": "NZD/JPY",
	"AUDNZD": "AUD/NZD", "CADCHF": "CAD/CHF", "GBPCHF": "GBP/CHF", "GBPNZD": "GBP/NZD",
	"EURNZD": "EUR/NZD", "NZDCAD": "NZD/CAD", "NZDCHF": "NZD/CHF", "AUDCHF": "AUD/CHF",
	// Exotics
	"USDSGD": "USD/SGD", "EURSGD": "EUR/SGD", "GBPSGD": "GBP/SGD", "USDZAR": "USD/ZAR",
	"USDTRY": "USD/TRY", "EURTRY": "EUR/TRY", "USDMXN": "USD/MXN", "USDPLN": "USD/PLN",
	"USDSEK": "USD/SEK", "USDNOK": "USD/NOK", "USDDKK": "USD/DKK", "USDCNH": "USD/CNH",
	// Metals
	"XAUUSD": "Gold", "XAGUSD": "Silver", "XPTUSD": "Platinum", "XPDUSD": "Palladium",
	// Energy
	"USOIL": "US Oil", "UKOIL": "UK Oil", "NGAS": "Natural Gas", "BRENT": "Brent Crude",
	"WTI": "WTI Crude", "GASOLINE": "Gasoline", "HEATING": "Heating Oil",
	// Crypto
	"BTCUSD": "Bitcoin", "ETHUSD": "Ethereum", "BNBUSD": "BNB", "SOLUSD": "Solana",
	"XRPUSD": "XRP", "ADAUSD": "Cardano", "DOGEUSD": "Dogecoin", "TRXUSD": "TRON",
	"LINKUSD": "Chainlink", "MATICUSD": "Polygon", "DOTUSD": "Polkadot",
	"SHIBUSD": "Shiba Inu", "LTCUSD": "Litecoin", "BCHUSD": "Bitcoin Cash", "AVAXUSD": "Avalanche",
	"XLMUSD": "Stellar", "UNIUSD": "Uniswap", "ATOMUSD": "Cosmos", "ETCUSD": "Ethereum Classic",
	"FILUSD": "Filecoin", "ICPUSD": "Internet Computer", "VETUSD": "VeChain",
	"NEARUSD": "NEAR Protocol", "GRTUSD": "The Graph", "AAVEUSD": "Aave", "MKRUSD": "Maker",
	"ALGOUSD": "Algorand", "FTMUSD": "Fantom", "SANDUSD": "The Sandbox", "MANAUSD": "Decentraland",
	"AXSUSD": "Axie Infinity", "THETAUSD": "Theta Network", "XMRUSD": "Monero", "FLOWUSD": "Flow",
	"SNXUSD": "Synthetix", "EOSUSD": "EOS", "CHZUSD": "Chiliz", "ENJUSD": "Enjin Coin",
	"PEPEUSD": "Pepe", "ARBUSD": "Arbitrum", "OPUSD": "Optimism", "SUIUSD": "Sui",
	"APTUSD": "Aptos", "INJUSD": "Injective", "TONUSD": "Toncoin", "HBARUSD": "Hedera",
	"NEOUSD": "NEO",
	// Stocks
	"AAPL": "Apple Inc", "MSFT": "Microsoft", "GOOGL": "Alphabet", "AMZN": "Amazon",
	"NVDA": "NVIDIA", "META": "Meta Platforms", "TSLA": "Tesla", "JPM": "JPMorgan Chase",
	"ADBE": "Adobe Inc", "AMD": "AMD", "NFLX": "Netflix", "INTC": "Intel",
}

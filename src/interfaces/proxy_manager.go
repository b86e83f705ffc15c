package interfaces

// -----------------------------------------------------------------------------
// IProxyManager defines the contract for proxy rotation and user agent supply.
// -----------------------------------------------------------------------------

type IProxyManager interface {

	// -----------------------------------------------------------------------------

	// GetCurrentProxy returns the proxy currently in rotation, "" when none.
	GetCurrentProxy() (string, error)

	// -----------------------------------------------------------------------------

	// RotateProxy advances to the next proxy in the list.
	RotateProxy()

	// -----------------------------------------------------------------------------

	// GetUserAgent returns a randomized browser user agent.
	GetUserAgent() string

	// -----------------------------------------------------------------------------

	// HasProxies reports whether any proxies are configured.
	HasProxies() bool
}

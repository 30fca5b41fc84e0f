package iiasa

// DefaultAuthURL is the IIASA authentication and application-directory service.
const DefaultAuthURL = "https://api.manager.ece.iiasa.ac.at"

// Config defines the configuration for the connection.
type Config struct {
	// AuthURL is the URL of the authentication service that also lists the
	// scenario databases. Empty means DefaultAuthURL.
	AuthURL string `json:"auth_url"`
	// Credentials are used to sign in. When nil, the connection is anonymous
	// and only public databases are reachable.
	Credentials *Credentials `json:"-"`
}

func (c *Config) authURL() string {
	if c == nil || c.AuthURL == "" {
		return DefaultAuthURL
	}
	return c.AuthURL
}

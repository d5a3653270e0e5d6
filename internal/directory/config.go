package directory

// Config describes the layout of the startup directory.
type Config struct {
	// Origin is the scheme and host of the directory, without a trailing slash.
	Origin         string
	HomePath       string
	CategoriesPath string
	// CompanyPrefix and CategoryPrefix are the relative href prefixes of
	// company detail links and category links.
	CompanyPrefix  string
	CategoryPrefix string
	// CategorySample is how many category pages are added to the home listing.
	CategorySample int
	// BlockedHosts are host substrings never accepted as a company website.
	BlockedHosts []string
	// Concurrency bounds parallel source fetches.
	Concurrency int
}

// DefaultBlockedHosts are the social networks skipped by website discovery.
var DefaultBlockedHosts = []string{"twitter", "linkedin", "facebook"}

// DefaultConfig returns the layout of startups.gallery.
func DefaultConfig() Config {
	return Config{
		Origin:         "https://startups.gallery",
		HomePath:       "/",
		CategoriesPath: "/categories",
		CompanyPrefix:  "./companies/",
		CategoryPrefix: "./categories/",
		CategorySample: 3,
		BlockedHosts:   DefaultBlockedHosts,
		Concurrency:    4,
	}
}

// HomeURL returns the absolute URL of the home listing.
func (c Config) HomeURL() string {
	return c.Origin + c.HomePath
}

// CategoriesURL returns the absolute URL of the categories index.
func (c Config) CategoriesURL() string {
	return c.Origin + c.CategoriesPath
}

package source

// Config describes one OCDS publisher endpoint, loaded from sources/*.yml.
type Config struct {
	Name     string         // Derived from filename (without .yml extension)
	URL      string         `yaml:"url"`
	APIKey   string         `yaml:"api_key"`
	Settings ConfigSettings `yaml:"settings"`
}

type ConfigSettings struct {
	Enabled         bool `yaml:"enabled"`
	RefreshInterval int  `yaml:"refresh_interval"` // seconds
	PageSize        int  `yaml:"page_size"`
	Timeout         int  `yaml:"timeout"` // seconds
}

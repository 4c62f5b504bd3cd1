package cfg

type Cfg struct {
	// Database configuration
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Application configuration
	SourcesDir        string
	Port              string
	WorkerCount       int
	SchedulerInterval int
	APIAccessKey      string

	// Feed defaults, used when a source config omits them
	FeedPageSize int
	FeedTimeout  int

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string
}

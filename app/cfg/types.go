package cfg

type Cfg struct {
	// File locations
	ConfigFile string
	DBPath     string
	SpoolDir   string

	// Operational HTTP server
	Port string

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string

	// Run modes
	InitDB         bool
	ClearAllCache  bool
	ClearCacheKeys []string
}

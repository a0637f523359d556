package cfg

type Cfg struct {
	// Input / output paths
	FeedsFile string
	DataDir   string

	// Ingestion settings
	WorkerCount   int
	RetentionDays int
	FetchTimeout  int

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string
}

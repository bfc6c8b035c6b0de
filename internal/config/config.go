package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
// These values are chosen for the public IATI registry and the typical
// spread of publisher-hosted files.
const (
	// DefaultAPIRoot is the IATI registry's CKAN API root.
	DefaultAPIRoot = "https://iatiregistry.org/api/3/"

	// DefaultCodelistIndexURL is the canonical codelist download index.
	// The XML downloads are used because the JSON variant has historically
	// dropped attributes such as withdrawal markers.
	DefaultCodelistIndexURL = "http://reference.iatistandard.org/203/codelists/downloads/clv3/xml/"

	// DefaultTimeout bounds each HTTP request. Publisher files are served
	// from everything between CDNs and forgotten VMs; 30 seconds keeps
	// slow hosts in the run without letting dead ones stall it.
	DefaultTimeout = 30 * time.Second

	// DefaultConcurrency is the fetch ceiling for the XML fan-out.
	// 50 keeps a crawl polite while finishing a full registry pass in
	// reasonable time. The registry itself tolerates far more.
	DefaultConcurrency = 50

	// DefaultRows is the package_search page size. It must exceed the
	// resource count of the registry's largest publisher so the search
	// returns everything in one page.
	DefaultRows = 1000

	// DefaultLanguage is the fallback narrative language tag used when a
	// document specifies none.
	DefaultLanguage = "en"

	// DefaultIngestBatch is the number of documents ingested concurrently.
	// Ingestion is bound by the single SQLite writer, so a small number
	// just keeps parsing ahead of the database.
	DefaultIngestBatch = 4

	// AppName is the application name used for XDG directory paths.
	AppName = "iatifetch"
)

// Config holds all configuration options for iatifetch.
// This struct is designed to be populated from CLI flags and passed through
// the application via dependency injection rather than global state.
//
// Design decision: We use a single flat struct instead of nested structs
// (e.g., FetchConfig, IngestConfig) for simplicity. The number of options
// is manageable, and nesting would add complexity without significant benefit.
type Config struct {
	// APIRoot is the registry API root. Overridable for mirrors and tests.
	APIRoot string

	// CodelistIndexURL is the codelist download index location.
	CodelistIndexURL string

	// Timeout is the per-request timeout.
	Timeout time.Duration

	// Concurrency is the fetch ceiling for the XML fan-out.
	Concurrency int

	// Rows is the package_search page size.
	Rows int

	// Delay is an optional pause between request starts, a politeness
	// setting for batches that concentrate on few hosts.
	Delay time.Duration

	// Verbose enables detailed log output using slog.LevelDebug.
	Verbose bool

	// Refresh evicts cached responses before fetching.
	Refresh bool

	// ExcludeCached drops already-cached XML resources from the batch.
	ExcludeCached bool

	// Update makes ingestion overwrite existing rows. This is the default;
	// disabling it lets the stored version win and makes re-ingestion a
	// no-op.
	Update bool

	// IncludeActivities toggles ingestion of iati-activity elements.
	IncludeActivities bool

	// IncludeOrganisations toggles ingestion of iati-organisation elements.
	IncludeOrganisations bool

	// DefaultLanguage is the fallback narrative language tag.
	DefaultLanguage string

	// IngestBatch is the number of documents ingested concurrently.
	IngestBatch int

	// Insecure disables TLS certificate verification. Some publisher
	// hosts serve broken chains; enabling this trades integrity for
	// coverage and must be an explicit operator choice.
	Insecure bool

	// RedisAddr selects the Redis cache backend when non-empty. With it
	// empty the in-memory cache is used, which does not survive between
	// invocations.
	RedisAddr string

	// RedisPassword authenticates against Redis when required.
	RedisPassword string

	// RedisDB selects the Redis database number.
	RedisDB int

	// DBDir is the directory path for storing the SQLite database.
	// Defaults to the XDG data directory.
	DBDir string

	// JSONReport enables JSON report output instead of plain text.
	// Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport enables Markdown report output instead of plain text.
	// Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile is the output file path for the report.
	// When set, the report is written to this file instead of stdout.
	ReportFile string

	// ConfigFilePath is the path to the configuration file.
	// If empty, the tool searches for .iatifetch in the current directory
	// and then in the user's home directory.
	ConfigFilePath string
}

// NewConfig creates a new Config with default values.
// All fields are set to safe, sensible defaults that work against the
// public registry. Users can override specific values after creation.
//
// Design decision: We use a constructor function instead of relying on
// zero values because many defaults are non-zero (e.g., timeout, URLs).
// This also serves as documentation of what the defaults are.
func NewConfig() *Config {
	return &Config{
		APIRoot:              DefaultAPIRoot,
		CodelistIndexURL:     DefaultCodelistIndexURL,
		Timeout:              DefaultTimeout,
		Concurrency:          DefaultConcurrency,
		Rows:                 DefaultRows,
		DefaultLanguage:      DefaultLanguage,
		IngestBatch:          DefaultIngestBatch,
		Update:               true,
		IncludeActivities:    true,
		IncludeOrganisations: true,
		DBDir:                XDGDataDir(),
	}
}

// XDGDataDir returns the XDG data directory for iatifetch.
// On Linux: ~/.local/share/iatifetch
// On macOS: ~/Library/Application Support/iatifetch
// On Windows: %LOCALAPPDATA%\iatifetch
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for iatifetch.
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// XDGCacheDir returns the XDG cache directory for iatifetch.
func XDGCacheDir() string {
	return filepath.Join(xdg.CacheHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns a specific error describing what is invalid.
//
// Design decision: We validate at the config level rather than at each
// point of use to fail fast and provide clear error messages upfront.
// This is called once after CLI parsing, before any crawling begins.
//
// We chose to return the first error found rather than collecting all
// errors because fixing one error often makes others irrelevant.
func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}

	if c.Concurrency < 1 || c.Concurrency > 2000 {
		return ErrInvalidConcurrency
	}

	if c.Rows <= 0 {
		return ErrInvalidRows
	}

	if c.Delay < 0 {
		return ErrInvalidDelay
	}

	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	if !c.IncludeActivities && !c.IncludeOrganisations {
		return ErrNothingToIngest
	}

	return nil
}

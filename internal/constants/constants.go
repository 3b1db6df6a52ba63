package constants

import "time"

// HTTP Transport Constants
const (
	DefaultRequestTimeout = 30 * time.Second
	DefaultRetryCount     = 3
	DefaultRetryWait      = 1 * time.Second
	DefaultRetryMaxWait   = 8 * time.Second

	DefaultContentType = "application/json"
	DefaultAccept      = "application/json"
)

// RetryStatusCodes are the HTTP status codes the transport treats as transient.
var RetryStatusCodes = map[int]bool{
	429: true,
	500: true,
	502: true,
	503: true,
	504: true,
}

// Database Constants
const (
	// Connection pool settings
	DefaultPostgresMaxConnections = 25
	DefaultPostgresMaxIdleConns   = 5
	DefaultSQLiteMaxConnections   = 1 // SQLite allows only one writer
	DefaultSQLiteMaxIdleConns     = 1

	// Default table name
	DefaultRunHistoryTable = "run_history"

	// DefaultHistoryLimit bounds history listings when no limit is given.
	DefaultHistoryLimit = 50
)

// Time and Duration Constants
const (
	// Connection pool lifetimes
	DefaultMaxConnLifetime = 5 * time.Minute
	DefaultMaxIdleTime     = 1 * time.Minute
	DefaultSQLiteLifetime  = 10 * time.Minute
	DefaultSQLiteIdleTime  = 5 * time.Minute
)

// File Location Constants (under the user's home directory)
const (
	DefaultAppDir       = ".restload"
	DefaultRegistryFile = "configs.json"
	DefaultHistoryFile  = "restload.db"
)

// Report Formatting Constants
const (
	ReportBannerWidth  = 80
	ReportBodyTruncate = 2000
)

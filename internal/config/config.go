package config

import (
	"io/fs"
	"time"
)

// -----------------------------------------------------------------------------
// Build Information
// -----------------------------------------------------------------------------

// Build variables are injected via -ldflags.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// UserAgent identifies the HTTP clients (importer and spreadsheet store).
var UserAgent = "Go-Reminders/" + Version

// -----------------------------------------------------------------------------
// Application Constants
// -----------------------------------------------------------------------------

const (
	AppName        = "Go Reminders"
	AppID          = "com.github.tartampluch.go-reminders"
	KeyringService = "com.github.tartampluch.go-reminders"
	LogFileName    = "app.log"
	ConfigFileName = "config.yaml"
)

// -----------------------------------------------------------------------------
// Exit Codes
// -----------------------------------------------------------------------------

const (
	ExitCodeSuccess = 0
	ExitCodeError   = 1
)

// -----------------------------------------------------------------------------
// System & File Permissions
// -----------------------------------------------------------------------------

const (
	// FilePermUserRW represents -rw------- (Read/Write for owner only).
	// Used for logs and the settings file, which may hold credentials.
	FilePermUserRW fs.FileMode = 0600

	// DirPermUserRWX represents drwx------.
	DirPermUserRWX fs.FileMode = 0700

	// ChannelBufferSize defines the standard buffer size for internal signaling channels.
	ChannelBufferSize = 1
)

// -----------------------------------------------------------------------------
// CLI Flags & Descriptions
// -----------------------------------------------------------------------------

const (
	FlagVersion       = "version"
	FlagDebug         = "debug"
	FlagConfig        = "config"
	FlagSetSecret     = "set-secret"
	FlagImport        = "import"
	FlagDescVersion   = "Show application version and exit"
	FlagDescDebug     = "Enable debug logging to stdout"
	FlagDescConfig    = "Path to the YAML settings file"
	FlagDescSetSecret = "Read a secret from stdin and store it in the OS keyring under this account"
	FlagDescImport    = "Import the configured source (or the .vcf/.ics path or URL given as argument), then exit"
	MsgVersionOutput  = "%s version %s (%s/%s)\n"
)

// -----------------------------------------------------------------------------
// Domain: Kinds, Dates & Filters
// -----------------------------------------------------------------------------

const (
	KindBirthday    = "birthday"
	KindAnniversary = "anniversary"
	KindAll         = "all"

	// DefaultImportKind is used for iCalendar events without CATEGORIES.
	DefaultImportKind = KindBirthday

	// DefaultLeapYear is used for dates without a year (vCard --MMDD) and
	// to validate Feb 29 regardless of the stored year.
	DefaultLeapYear = 2000

	// Notifications fire for events today (0) or tomorrow (1).
	NotifyMaxDays = 1

	// MaxFieldLen caps every text field accepted on writes.
	MaxFieldLen = 512

	// Record fields as exchanged with the storage service.
	FieldName      = "name"
	FieldReference = "reference"
	FieldPhone     = "phone"
	FieldDate      = "date"
	FieldType      = "type"

	// DayLength is the length of a calendar day between two UTC midnights.
	DayLength = 24 * time.Hour
)

// -----------------------------------------------------------------------------
// Data Formats
// -----------------------------------------------------------------------------

const (
	// DateFormatCanonical is the internal YYYY-MM-DD representation.
	DateFormatCanonical = "2006-01-02"

	// vCard BDAY / ANNIVERSARY layouts (importer)
	DateFormatFullBasic = "20060102"
	DateFormatRFC3339   = time.RFC3339
	DateFormatFullT     = "2006-01-02T15:04:05Z"
	DateFormatNoYearD   = "--01-02"
	DateFormatNoYearB   = "--0102"

	// iCalendar DATE values are YYYYMMDD, optionally followed by a time.
	ICalDateLen = 8
)

// FallbackDateLayouts are tried by the date normalizer as a last resort.
// Results are always read back through UTC fields.
var FallbackDateLayouts = []string{
	time.RFC1123Z,
	time.RFC1123,
	time.RFC850,
	time.RFC822Z,
	time.RFC822,
	time.ANSIC,
	time.UnixDate,
	"January 2, 2006",
	"January 2 2006",
	"Jan 2, 2006",
	"Jan 2 2006",
	"2 Jan 2006",
	"Mon Jan 2 2006",
	"Mon Jan 02 2006 15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02 15:04:05Z07:00",
	"20060102",
	"2006.1.2",
}

// MonthNames are matched case-insensitively by prefix in textual dates.
var MonthNames = []string{
	"january", "february", "march", "april", "may", "june",
	"july", "august", "september", "october", "november", "december",
}

// -----------------------------------------------------------------------------
// Settings Defaults
// -----------------------------------------------------------------------------

const (
	BackendSheet    = "sheet"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"

	SourceModeWeb   = "web"
	SourceModeLocal = "local"

	DefaultListen          = "127.0.0.1:18080"
	DefaultLanguage        = "en"
	DefaultRefreshCron     = "0 0 * * *"
	DefaultBackend         = BackendMemory
	DefaultRetryAttempts   = 3
	DefaultRetryBackoff    = 500 * time.Millisecond
	DefaultStorageTimeout  = 10 * time.Second
	DefaultReminderTrigger = "-P1D"
	DefaultSheetAccount    = "sheet-token"

	// Environment fallbacks for secrets when no keyring is available.
	EnvSheetToken    = "REMINDERS_SHEET_TOKEN"
	EnvPostgresDSN   = "REMINDERS_POSTGRES_DSN"
	EnvBasicAuthPass = "REMINDERS_BASIC_AUTH_PASSWORD"
	EnvImportPass    = "REMINDERS_IMPORT_PASSWORD"
	EnvTestPostgres  = "REMINDERS_TEST_POSTGRES_DSN"

	// KeyringBasicAuthPrefix namespaces basic-auth passwords in the keyring.
	KeyringBasicAuthPrefix = "basic-auth:"

	ConfigTempPattern = ".go-reminders-config-*.tmp"
)

// SupportedLanguages defines the list of available message languages (ISO 639-1).
var SupportedLanguages = []string{"en", "fr"}

// -----------------------------------------------------------------------------
// Standards: iCalendar & vCard
// -----------------------------------------------------------------------------

const (
	ICalVersion   = "2.0"
	ICalProdid    = "-//Go Reminders//Engine//EN"
	ICalCalName   = "Reminders"
	ICalMethod    = "PUBLISH"
	ICalScale     = "GREGORIAN"
	ICalComponent = "VALARM"
	ICalAction    = "DISPLAY"
	ICalDomain    = "goreminders"

	PropUID         = "UID"
	PropSummary     = "SUMMARY"
	PropDTStart     = "DTSTART"
	PropDTStamp     = "DTSTAMP"
	PropRefresh     = "REFRESH-INTERVAL"
	PropAction      = "ACTION"
	PropDescription = "DESCRIPTION"
	PropCategories  = "CATEGORIES"
	PropTrigger     = "TRIGGER"
	PropVersion     = "VERSION"
	PropProdid      = "PRODID"
	PropXWRCalName  = "X-WR-CALNAME"
	PropCalScale    = "CALSCALE"
	PropMethod      = "METHOD"

	VCardMarker = "BEGIN:VCARD"
	ICalMarker  = "BEGIN:VCALENDAR"

	DefaultICalRefresh = 1 * time.Hour

	FormatUID = "%s@%s"

	// StubVCalendar is the minimal valid iCalendar object used when no events exist.
	StubVCalendar = "BEGIN:VCALENDAR\r\nVERSION:2.0\r\nPRODID:" + ICalProdid + "\r\nEND:VCALENDAR\r\n"
)

// -----------------------------------------------------------------------------
// Messaging Links
// -----------------------------------------------------------------------------

const (
	// MessageLinkFormat expects the phone digits and the escaped text.
	MessageLinkFormat = "https://wa.me/%s?text=%s"
)

// -----------------------------------------------------------------------------
// Network & Timeouts
// -----------------------------------------------------------------------------

const (
	HTTPTimeout         = 30 * time.Second
	ShutdownTimeout     = 5 * time.Second
	ServerReadTimeout   = 10 * time.Second
	ServerWriteTimeout  = 30 * time.Second
	ServerIdleTimeout   = 60 * time.Second
	RetryAfterSeconds   = "10"
	AllowedMethods      = "GET, HEAD"
	MaxHTTPResponseSize = 64 * 1024 * 1024 // 64MB
	MaxBodyBytes        = 1 << 20          // 1MB for JSON writes
	MaxImportBytes      = 16 << 20         // 16MB for vCard/iCalendar uploads
	SchemeHTTP          = "http"
	SchemeHTTPS         = "https"

	// Sheet service protocol
	SheetActionParam  = "action"
	SheetActionList   = "list"
	SheetActionCreate = "create"
	SheetActionUpdate = "update"
	SheetActionDelete = "delete"
	SheetStatusError  = "error"

	BasicAuthRealm = `Basic realm="Go Reminders", charset="UTF-8"`
)

// -----------------------------------------------------------------------------
// HTTP Routes, Headers & MIME Types
// -----------------------------------------------------------------------------

const (
	RouteHealth        = "GET /health"
	RouteCalendar      = "/calendar.ics"
	RouteEvents        = "GET /api/events"
	RouteEventCreate   = "POST /api/events"
	RouteEventUpdate   = "PUT /api/events/{id}"
	RouteEventDelete   = "DELETE /api/events/{id}"
	RouteRefresh       = "POST /api/refresh"
	RouteNotifications = "GET /api/notifications"
	RoutePreferences   = "PUT /api/preferences"
	RouteImport        = "POST /api/import"
	PathHealth         = "/health"
	PathParamID        = "id"

	QueryType   = "type"
	QuerySearch = "q"

	HeaderContentType     = "Content-Type"
	HeaderCacheControl    = "Cache-Control"
	HeaderETag            = "ETag"
	HeaderLastModified    = "Last-Modified"
	HeaderRetryAfter      = "Retry-After"
	HeaderAllow           = "Allow"
	HeaderXContentType    = "X-Content-Type-Options"
	HeaderUserAgent       = "User-Agent"
	HeaderIfNoneMatch     = "If-None-Match"
	HeaderIfModifiedSince = "If-Modified-Since"
	HeaderAuthorization   = "Authorization"
	HeaderWWWAuthenticate = "WWW-Authenticate"

	MimeTextCalendar    = "text/calendar; charset=utf-8"
	MimeTextPlain       = "text/plain; charset=utf-8"
	MimeJSON            = "application/json"
	MimeProblemJSON     = "application/problem+json"
	MimeNoSniff         = "nosniff"
	CacheControlPrivate = "private, no-cache"

	BearerPrefix = "Bearer "

	// FormatETag expects a string argument.
	FormatETag = `"%s"`
)

// -----------------------------------------------------------------------------
// Error Messages (Technical/Logs)
// -----------------------------------------------------------------------------

const (
	ErrLocalPathEmpty   = "configuration error: local path is empty"
	ErrWebURLEmpty      = "configuration error: web URL is empty"
	ErrFetcherMissing   = "internal error: network fetcher is not initialized"
	ErrModeUnsupport    = "configuration error: unsupported source mode"
	ErrBackendUnsupport = "configuration error: unsupported storage backend"
	ErrSheetURLEmpty    = "configuration error: sheet URL is empty"
	ErrPostgresDSNEmpty = "configuration error: postgres DSN is empty"
	ErrPostgresDSN      = "configuration error: invalid postgres DSN"
	ErrPostgresPool     = "failed to open postgres pool"
	ErrPostgresPing     = "postgres is unreachable"
	ErrRefreshCron      = "configuration error: invalid refresh schedule"
	ErrConfigPathEmpty  = "config path is empty"
	ErrConfigNil        = "config is nil"
	ErrConfigRead       = "failed to read settings"
	ErrConfigParse      = "failed to parse settings"
	ErrConfigWrite      = "failed to write settings"
	ErrSecretMissing    = "secret not found in keyring or environment"
	ErrSecretStore      = "failed to store secret"
	ErrServerStartup    = "server startup failed"
	ErrServerShutdown   = "server shutdown failed"
	ErrListenRequired   = "listen address is required"
	ErrInvalidURL       = "invalid URL structure"
	ErrProtocol         = "unsupported protocol scheme (http/https only)"
	ErrFetchRequest     = "failed to create request"
	ErrFetchNetwork     = "network error during fetch"
	ErrFetchStatus      = "server returned unexpected status"
	ErrImportRead       = "failed to read import source"
	ErrImportFormat     = "unrecognized import format (expected vCard or iCalendar)"
	ErrImportTooLarge   = "import source exceeds the size limit"
	ErrInvalidRecord    = "invalid record"
	ErrICalParse        = "failed to parse iCalendar stream"
	ErrICalEncode       = "failed to encode iCalendar data"
	ErrDateParse        = "unable to parse date"
	ErrDateInvalid      = "invalid date"
	ErrNotCollection    = "record payload is not a collection"
	ErrRecordDecode     = "failed to decode record"
	ErrCellType         = "unsupported cell value"
	ErrStoreList        = "failed to list records"
	ErrStoreWrite       = "failed to write record"
	ErrStoreRequest     = "storage request failed"
	ErrStoreStatus      = "storage service returned unexpected status"
	ErrStoreReply       = "storage service returned an error"
	ErrStoreDecode      = "failed to decode storage reply"
	ErrNotFound         = "record not found"
	ErrRefresh          = "refresh failed"
	ErrLogFile          = "failed to open log file"
	ErrCacheDir         = "could not determine user cache dir"
	ErrConfigDir        = "could not determine user config dir"
	ErrCreateDir        = "could not create app cache dir"
	ErrAppFailed        = "application failed unexpectedly"
	ErrWriteResp        = "failed to write response body"
	ErrLocalesAccess    = "failed to access embedded locales"
	ErrLocaleLoad       = "failed to load locale file"
	ErrSecretEmpty      = "secret is empty"
	ErrSecretRead       = "failed to read secret from stdin"
)

// -----------------------------------------------------------------------------
// HTTP Server Responses
// -----------------------------------------------------------------------------

const (
	HTTPMsgInitializing  = "Calendar initializing, please try again shortly."
	HTTPMsgMethodNotAll  = "Method Not Allowed"
	HTTPMsgUnauthorized  = "Unauthorized"
	HTTPTitleInvalidJSON = "invalid json"
	HTTPTitleValidation  = "validation failed"
	HTTPTitleNotFound    = "not found"
	HTTPTitleStorage     = "storage unavailable"
	HTTPTitleMediaType   = "unsupported media type"
	HTTPTitleImport      = "import failed"
	HTTPDetailValidation = "one or more fields are invalid"
	HTTPDetailMediaType  = "expected application/json"
	HTTPBodyHealthy      = "OK"
)

// -----------------------------------------------------------------------------
// Fallbacks & Messages
// -----------------------------------------------------------------------------

const (
	FallbackGreetingBirthday    = "Happy Birthday, %s!"
	FallbackGreetingAnniversary = "Happy Anniversary, %s!"
	FallbackGreetingOther       = "Happy %s, %s!"
	FallbackSummary             = "%s (%s)"
	FallbackNotifyToday         = "%s: %s is today"
	FallbackNotifyTomorrow      = "%s: %s is tomorrow"
	FallbackName                = "Unknown"

	MsgAppStarting     = "Starting application"
	MsgAppStop         = "Application stopped gracefully"
	MsgServerListen    = "HTTP server listening"
	MsgServerStop      = "Shutting down HTTP server..."
	MsgCacheUpdated    = "Calendar cache updated"
	MsgRefreshed       = "Reminder list refreshed"
	MsgRefreshFailed   = "Reminder list refresh failed"
	MsgRefreshReq      = "Refresh requested"
	MsgStaleState      = "Reminder list is from a previous day, recomputing"
	MsgWorkerStart     = "Background worker started"
	MsgWorkerStop      = "Worker stopping due to context cancellation"
	MsgRecordDropped   = "Dropping invalid record"
	MsgRecordSkipped   = "Skipping undecodable record"
	MsgAssembled       = "Records assembled"
	MsgEventToday      = "Occasion found today"
	MsgSkippedCard     = "Skipping malformed vCard"
	MsgSkippedDate     = "Skipping invalid date format"
	MsgImported        = "Import finished"
	MsgImportStart     = "Import started"
	MsgStoreRetry      = "Storage request failed, retrying"
	MsgStoreRequest    = "Storage request"
	MsgNotifyDue       = "Notifications due"
	MsgNotifyToggled   = "Notifications preference changed"
	MsgLocaleSkip      = "Skipping non-locale file"
	MsgLocaleBadName   = "Skipping malformed locale filename"
	MsgLocaleLoaded    = "Locale loaded successfully"
	MsgLocalesReady    = "Message languages ready"
	MsgTransMissing    = "Missing translation key"
	MsgSecretStored    = "Secret stored in keyring"
	MsgSecretFallback  = "Keyring lookup failed, using environment"
	MsgSettingsCreated = "Default settings written"
	MsgLogWarning      = "Warning: %s at %s: %v\n"
	MsgRequest         = "HTTP request"
	MsgDownloadStart   = "Initiating download"
	MsgDownloadStatus  = "Server returned error status"
	MsgDownloading     = "Downloading import source"
	MsgSchemaReady     = "Database schema ready"
	MsgBackendReady    = "Storage backend ready"
	MsgSecretPrompt    = "Enter secret for %s: "
)

// -----------------------------------------------------------------------------
// Translation Keys (I18n)
// -----------------------------------------------------------------------------

const (
	TKeyGreetingBirthday    = "greeting_birthday"    // Requires Name
	TKeyGreetingAnniversary = "greeting_anniversary" // Requires Name
	TKeyGreetingOther       = "greeting_other"       // Requires Name, Kind
	TKeyEvtSummary          = "event_summary"        // Requires Name, Kind
	TKeyNotifyTitleToday    = "notify_title_today"   // Requires Name
	TKeyNotifyTitleTomorrow = "notify_title_tomorrow"
	TKeyNotifyBodyToday     = "notify_body_today" // Requires Name, Kind
	TKeyNotifyBodyTomorrow  = "notify_body_tomorrow"
)

// -----------------------------------------------------------------------------
// Structured Logging Keys (slog)
// -----------------------------------------------------------------------------

const (
	LogKeyComponent = "component"
	LogKeyError     = "error"
	LogKeyURL       = "url"
	LogKeyStatus    = "status_code"
	LogKeyFile      = "file"
	LogKeyLang      = "lang"
	LogKeyLangs     = "languages"
	LogKeyLimit     = "limit_bytes"
	LogKeyKey       = "key"
	LogKeyAddr      = "addr"
	LogKeyMode      = "mode"
	LogKeyBackend   = "backend"
	LogKeySchedule  = "schedule"
	LogKeyAccount   = "account"
	LogKeyRecordID  = "record_id"
	LogKeyField     = "field"
	LogKeyKind      = "kind"
	LogKeyTotal     = "total_records"
	LogKeyKept      = "kept"
	LogKeyDropped   = "dropped"
	LogKeyToday     = "today"
	LogKeyCreated   = "created"
	LogKeySkipped   = "skipped"
	LogKeyCount     = "count"
	LogKeyEnabled   = "enabled"
	LogKeyAttempt   = "attempt"
	LogKeyAction    = "action"
	LogKeySizeBytes = "size_bytes"
	LogKeyETag      = "etag"
	LogKeyValue     = "value"
	LogKeyStats     = "stats"
	LogKeyName      = "name"
	LogKeyMethod    = "method"
	LogKeyPath      = "path"
	LogKeyDuration  = "duration_ms"
	LogKeyConfig    = "config_path"

	// Startup Info Keys
	LogKeyBuild   = "build"
	LogKeyApp     = "app"
	LogKeyVersion = "version"
	LogKeyGoVer   = "go_version"
	LogKeyEnv     = "env"
	LogKeyOS      = "os"
	LogKeyArch    = "arch"
	LogKeyPID     = "pid"
)

// -----------------------------------------------------------------------------
// Log Components
// -----------------------------------------------------------------------------

const (
	CompMain     = "main"
	CompConfig   = "config"
	CompEngine   = "engine"
	CompServer   = "server"
	CompFetcher  = "fetcher"
	CompImporter = "importer"
	CompStore    = "store"
	CompTracker  = "tracker"
	CompWorker   = "worker"
	CompNotify   = "notify"
	CompI18n     = "i18n"
)

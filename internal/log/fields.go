package log

// Common field names for structured logging
const (
	FieldComponent  = "component"
	FieldRequestID  = "request_id"
	FieldClientIP   = "client_ip"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldQuery      = "query"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
	FieldUserAgent  = "user_agent"
	FieldSuccess    = "success"
	FieldError      = "error"
	FieldOperation  = "operation"

	FieldYear      = "year"
	FieldQuarter   = "quarter"
	FieldWarehouse = "warehouse"
	FieldDimension = "dimension"
	FieldImportID  = "import_id"
	FieldFilename  = "filename"
	FieldRowCount  = "row_count"
	FieldWarnings  = "warning_count"
)

// Components defines standard component names
const (
	ComponentApp       = "app"
	ComponentHTTP      = "http"
	ComponentIngest    = "ingest"
	ComponentStorage   = "storage"
	ComponentAMQP      = "amqp"
	ComponentWorker    = "worker"
	ComponentSheets    = "sheets"
	ComponentCache     = "cache"
	ComponentSecurity  = "security"
	ComponentRateLimit = "rate_limit"
)

// Operations defines standard operation names
const (
	OpDashboard  = "dashboard"
	OpComparison = "comparison"
	OpList       = "list"
	OpUpload     = "upload"
	OpImport     = "import"
	OpSweep      = "sweep"
	OpShutdown   = "shutdown"
	OpStartup    = "startup"
)

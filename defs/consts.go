package defs

// Common labels for logging
const (
	LabelComponent = "component"
	LabelName      = "name"
	LabelPart      = "part"

	LabelLogger   = "logger"
	LabelProtocol = "protocol"
	LabelRemote   = "remote"
	LabelPolicy   = "policy"
	LabelAddress  = "address"
)

// Environment variables recognized for centralized logging
const (
	EnvLogHost    = "PCDS_LOG_HOST"
	EnvLogPort    = "PCDS_LOG_PORT"
	EnvLogProto   = "PCDS_LOG_PROTO"
	EnvLogDomains = "PCDS_LOG_DOMAINS"
)

// Defaults used when neither config file nor environment provide a value
const (
	DefaultLogHost        = "ctl-logsrv01.pcdsn"
	DefaultLogPort        = 54320
	DefaultLogProto       = "tcp"
	DefaultAllowedDomains = ".pcdsn .slac.stanford.edu"
	DefaultLevelName      = "DEBUG"
)

// Well-known logger names
const (
	CentralLoggerName           = "pcds-logging"     // logger shipping events to the central collector
	WarningsLoggerName          = "pcdslog.warnings" // logger receiving captured warnings
	CallbackExceptionLoggerName = "ophyd.objects"    // logger of device callback exceptions
)

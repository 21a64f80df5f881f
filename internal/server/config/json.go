package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/eastsecure/internal/flagx"
	"github.com/dmitrijs2005/eastsecure/internal/timex"
)

// JsonConfig is the on-disk shape of the configuration file. Durations use
// timex.Duration so both "10m" and integer nanoseconds are accepted.
//
// parseJson seeds a JsonConfig from the current Config before unmarshalling,
// so keys missing from the file keep their previous value.
type JsonConfig struct {
	HTTPAddr    string `json:"http_addr"`
	GRPCAddr    string `json:"grpc_addr"`
	DatabaseDSN string `json:"database_dsn"`
	LogFormat   string `json:"log_format"`
	LogLevel    string `json:"log_level"`

	PublicURL      string   `json:"public_url"`
	PortalURL      string   `json:"portal_url"`
	AllowedOrigins []string `json:"allowed_origins"`

	SecretKey       string         `json:"secret_key"`
	SessionStrategy string         `json:"session_strategy"`
	SessionTTL      timex.Duration `json:"session_ttl"`
	CookieSecure    bool           `json:"cookie_secure"`

	VerificationCodeLength   int            `json:"verification_code_length"`
	VerificationCodeTTL      timex.Duration `json:"verification_code_ttl"`
	VerificationCodeCooldown timex.Duration `json:"verification_code_cooldown"`
	RequireVerifiedEmail     bool           `json:"require_verified_email"`

	SendGridAPIKey  string `json:"sendgrid_api_key"`
	SendGridSandbox bool   `json:"sendgrid_sandbox"`
	MailFromName    string `json:"mail_from_name"`
	MailFromAddress string `json:"mail_from_address"`
	ContactInbox    string `json:"contact_inbox"`

	ScannerURL       string         `json:"scanner_url"`
	ScannerTimeout   timex.Duration `json:"scanner_timeout"`
	ScanQueueBackend string         `json:"scan_queue_backend"`
	ScanQueueSize    int            `json:"scan_queue_size"`
	ScanWorkers      int            `json:"scan_workers"`
	AMQPURL          string         `json:"amqp_url"`
	AMQPQueue        string         `json:"amqp_queue"`

	S3RootUser     string `json:"s3_root_user"`
	S3RootPassword string `json:"s3_root_password"`
	S3Bucket       string `json:"s3_bucket"`
	S3Region       string `json:"s3_region"`
	S3BaseEndpoint string `json:"s3_base_endpoint"`

	CleanupSchedule string `json:"cleanup_schedule"`

	GitHubClientID     string `json:"github_client_id"`
	GitHubClientSecret string `json:"github_client_secret"`
	GoogleClientID     string `json:"google_client_id"`
	GoogleClientSecret string `json:"google_client_secret"`
}

func newJsonConfig(c *Config) *JsonConfig {
	return &JsonConfig{
		HTTPAddr:                 c.HTTPAddr,
		GRPCAddr:                 c.GRPCAddr,
		DatabaseDSN:              c.DatabaseDSN,
		LogFormat:                c.LogFormat,
		LogLevel:                 c.LogLevel,
		PublicURL:                c.PublicURL,
		PortalURL:                c.PortalURL,
		AllowedOrigins:           c.AllowedOrigins,
		SecretKey:                c.SecretKey,
		SessionStrategy:          c.SessionStrategy,
		SessionTTL:               timex.Duration{Duration: c.SessionTTL},
		CookieSecure:             c.CookieSecure,
		VerificationCodeLength:   c.VerificationCodeLength,
		VerificationCodeTTL:      timex.Duration{Duration: c.VerificationCodeTTL},
		VerificationCodeCooldown: timex.Duration{Duration: c.VerificationCodeCooldown},
		RequireVerifiedEmail:     c.RequireVerifiedEmail,
		SendGridAPIKey:           c.SendGridAPIKey,
		SendGridSandbox:          c.SendGridSandbox,
		MailFromName:             c.MailFromName,
		MailFromAddress:          c.MailFromAddress,
		ContactInbox:             c.ContactInbox,
		ScannerURL:               c.ScannerURL,
		ScannerTimeout:           timex.Duration{Duration: c.ScannerTimeout},
		ScanQueueBackend:         c.ScanQueueBackend,
		ScanQueueSize:            c.ScanQueueSize,
		ScanWorkers:              c.ScanWorkers,
		AMQPURL:                  c.AMQPURL,
		AMQPQueue:                c.AMQPQueue,
		S3RootUser:               c.S3RootUser,
		S3RootPassword:           c.S3RootPassword,
		S3Bucket:                 c.S3Bucket,
		S3Region:                 c.S3Region,
		S3BaseEndpoint:           c.S3BaseEndpoint,
		CleanupSchedule:          c.CleanupSchedule,
		GitHubClientID:           c.GitHubClientID,
		GitHubClientSecret:       c.GitHubClientSecret,
		GoogleClientID:           c.GoogleClientID,
		GoogleClientSecret:       c.GoogleClientSecret,
	}
}

func (j *JsonConfig) apply(c *Config) {
	c.HTTPAddr = j.HTTPAddr
	c.GRPCAddr = j.GRPCAddr
	c.DatabaseDSN = j.DatabaseDSN
	c.LogFormat = j.LogFormat
	c.LogLevel = j.LogLevel
	c.PublicURL = j.PublicURL
	c.PortalURL = j.PortalURL
	c.AllowedOrigins = j.AllowedOrigins
	c.SecretKey = j.SecretKey
	c.SessionStrategy = j.SessionStrategy
	c.SessionTTL = j.SessionTTL.Duration
	c.CookieSecure = j.CookieSecure
	c.VerificationCodeLength = j.VerificationCodeLength
	c.VerificationCodeTTL = j.VerificationCodeTTL.Duration
	c.VerificationCodeCooldown = j.VerificationCodeCooldown.Duration
	c.RequireVerifiedEmail = j.RequireVerifiedEmail
	c.SendGridAPIKey = j.SendGridAPIKey
	c.SendGridSandbox = j.SendGridSandbox
	c.MailFromName = j.MailFromName
	c.MailFromAddress = j.MailFromAddress
	c.ContactInbox = j.ContactInbox
	c.ScannerURL = j.ScannerURL
	c.ScannerTimeout = j.ScannerTimeout.Duration
	c.ScanQueueBackend = j.ScanQueueBackend
	c.ScanQueueSize = j.ScanQueueSize
	c.ScanWorkers = j.ScanWorkers
	c.AMQPURL = j.AMQPURL
	c.AMQPQueue = j.AMQPQueue
	c.S3RootUser = j.S3RootUser
	c.S3RootPassword = j.S3RootPassword
	c.S3Bucket = j.S3Bucket
	c.S3Region = j.S3Region
	c.S3BaseEndpoint = j.S3BaseEndpoint
	c.CleanupSchedule = j.CleanupSchedule
	c.GitHubClientID = j.GitHubClientID
	c.GitHubClientSecret = j.GitHubClientSecret
	c.GoogleClientID = j.GoogleClientID
	c.GoogleClientSecret = j.GoogleClientSecret
}

// parseJson loads the file named by -c / -config (if any) over config.
// An unreadable file or invalid JSON panics: the server must not start on a
// half-applied configuration.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := newJsonConfig(config)
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	c.apply(config)
}

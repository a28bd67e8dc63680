package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
	"github.com/slighter12/go-lib/database/postgres"
)

const (
	defaultPath               = "."
	defaultMaxRequestBodySize = "100KB"

	defaultLinkExpiryWindow  = 30 * 24 * time.Hour
	defaultLinkMaxAttempts   = 10
	defaultLinkLockDuration  = 30 * time.Minute
	defaultIdempotencyWindow = 60 * time.Second
	defaultRateTotal         = 3356
	defaultRateEmployer      = 1186
	defaultRateEmployee      = 2170
	defaultCurrency          = "USD"
	defaultQRCodeSize        = 256
	defaultNotifierTimeout   = 10 * time.Second
)

type Config struct {
	Env struct {
		Env         string `json:"env" yaml:"env"`
		ServiceName string `json:"serviceName" yaml:"serviceName"`
		Debug       bool   `json:"debug" yaml:"debug"`
		Log         Log    `json:"log" yaml:"log"`
	} `json:"env" yaml:"env"`

	HTTP struct {
		Port               int    `json:"port" yaml:"port"`
		MaxRequestBodySize string `json:"maxRequestBodySize" yaml:"maxRequestBodySize"`
		Timeouts           struct {
			ReadTimeout       time.Duration `json:"readTimeout" yaml:"readTimeout"`
			ReadHeaderTimeout time.Duration `json:"readHeaderTimeout" yaml:"readHeaderTimeout"`
			WriteTimeout      time.Duration `json:"writeTimeout" yaml:"writeTimeout"`
			IdleTimeout       time.Duration `json:"idleTimeout" yaml:"idleTimeout"`
		} `json:"timeouts" yaml:"timeouts"`
	} `json:"http" yaml:"http"`

	Postgres *postgres.DBConn `json:"postgres" yaml:"postgres" mapstructure:"postgres"`

	// Migration controls whether the API applies pending schema migrations on start
	Migration *MigrationConfig `json:"migration" yaml:"migration"`

	SecretKey SecretKeyConfig `json:"secretKey" yaml:"secretKey"`

	// Links configuration for shareable report links
	Links *LinksConfig `json:"links" yaml:"links"`

	// Calculation configuration for the savings rates
	Calculation *CalculationConfig `json:"calculation" yaml:"calculation"`

	// Generation configuration for CRM-triggered report generation
	Generation *GenerationConfig `json:"generation" yaml:"generation"`

	// QRCode configuration for link QR codes
	QRCode *QRCodeConfig `json:"qrcode" yaml:"qrcode"`

	// PubSub configuration for event publishing
	PubSub *PubSubConfig `json:"pubsub" yaml:"pubsub"`

	// Notifier configuration for the chat notification worker
	Notifier *NotifierConfig `json:"notifier" yaml:"notifier"`
}

// SecretKeyConfig holds server-side secrets. None of them is ever persisted next to the data they protect.
type SecretKeyConfig struct {
	// Access signs the JWT access tokens of authenticated users
	Access string `json:"access" yaml:"access"`

	// Pepper is mixed into every link token and passcode hash
	Pepper string `json:"pepper" yaml:"pepper"`

	// Webhook is the shared secret CRM webhooks must present
	Webhook string `json:"webhook" yaml:"webhook"`
}

type Log struct {
	Pretty bool   `json:"pretty" yaml:"pretty"`
	Level  string `json:"level" yaml:"level"`
}

// MigrationConfig defines schema migration behaviour
type MigrationConfig struct {
	AutoApply bool `json:"autoApply" yaml:"autoApply"`
}

// LinksConfig defines the lifecycle parameters of issued links
type LinksConfig struct {
	// Public base URL the share links are built on, e.g. https://reports.example.com
	BaseURL string `json:"baseUrl" yaml:"baseUrl"`

	// How long an issued link stays valid
	ExpiryWindow time.Duration `json:"expiryWindow" yaml:"expiryWindow"`

	// Wrong passcodes allowed before the link locks
	MaxAttempts int `json:"maxAttempts" yaml:"maxAttempts"`

	// How long a locked link rejects verification
	LockDuration time.Duration `json:"lockDuration" yaml:"lockDuration"`
}

// CalculationConfig defines the per-employee savings rates
type CalculationConfig struct {
	RateTotal    int64  `json:"rateTotal" yaml:"rateTotal"`
	RateEmployer int64  `json:"rateEmployer" yaml:"rateEmployer"`
	RateEmployee int64  `json:"rateEmployee" yaml:"rateEmployee"`
	Currency     string `json:"currency" yaml:"currency"`
}

// GenerationConfig defines CRM trigger handling
type GenerationConfig struct {
	// Triggers for the same external key inside this window are treated as duplicates
	IdempotencyWindow time.Duration `json:"idempotencyWindow" yaml:"idempotencyWindow"`

	// CRM property names whose change triggers a report generation
	TriggerProperties []string `json:"triggerProperties" yaml:"triggerProperties"`
}

// QRCodeConfig defines QR code generation configuration
type QRCodeConfig struct {
	Enabled              bool   `json:"enabled" yaml:"enabled"`
	Size                 int    `json:"size" yaml:"size"`
	ErrorCorrectionLevel string `json:"errorCorrectionLevel" yaml:"errorCorrectionLevel"`
}

// PubSubConfig defines Pub/Sub configuration for event publishing
type PubSubConfig struct {
	// Provider type: "local" for local HTTP or "google" for Google Pub/Sub
	Provider string `json:"provider" yaml:"provider"`

	// Google Cloud project ID (for google provider)
	ProjectID string `json:"projectId" yaml:"projectId"`

	// Pub/Sub topic ID (for google provider)
	TopicID string `json:"topicId" yaml:"topicId"`

	// Local HTTP endpoint for development (for local provider)
	LocalEndpoint string `json:"localEndpoint" yaml:"localEndpoint"`
}

// NotifierConfig defines where the notifier worker forwards report events
type NotifierConfig struct {
	// Incoming-webhook URL of the chat channel; empty disables forwarding
	WebhookURL string        `json:"webhookUrl" yaml:"webhookUrl"`
	Timeout    time.Duration `json:"timeout" yaml:"timeout"`
}

// LoadWithEnv loads .yaml files through koanf.
func LoadWithEnv[T any](currEnv string, configPath ...string) (*T, error) {
	cfg := new(T)
	koanfInstance := koanf.New(".")

	// Build list of paths to search for config file
	searchPaths := []string{defaultPath}
	if len(configPath) != 0 {
		pwd, err := os.Getwd()
		if err != nil {
			return nil, errors.Wrap(err, "os.Getwd")
		}
		for _, path := range configPath {
			abs := filepath.Join(pwd, path)
			searchPaths = append(searchPaths, abs)
		}
	}

	// Try to find and load the config file
	var configFile string
	var found bool
	for _, path := range searchPaths {
		candidate := filepath.Join(path, currEnv+".yaml")
		if _, err := os.Stat(candidate); err == nil {
			configFile = candidate
			found = true

			break
		}
	}

	if !found {
		return nil, errors.Errorf("config file %s.yaml not found in any search path", currEnv)
	}

	// Load YAML config file
	if err := koanfInstance.Load(file.Provider(configFile), yaml.Parser()); err != nil {
		return nil, errors.Wrapf(err, "read %s config failed", currEnv)
	}

	existingConfigMap := koanfInstance.Raw()

	// Load environment variables
	if err := koanfInstance.Load(env.Provider(".", env.Opt{
		TransformFunc: func(k, v string) (string, any) {
			// Convert ENV_VAR_NAME to path and align each segment with existing YAML keys.
			// Example: POSTGRES_SSLMODE -> postgres.sslMode (not postgres.sslmode)
			key := canonicalizeEnvKey(k, existingConfigMap)

			return key, v
		},
	}), nil); err != nil {
		return nil, errors.Wrap(err, "load env variables failed")
	}

	// Unmarshal into the config struct (case-insensitive to match env vars)
	if err := koanfInstance.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
			),
			MatchName: func(mapKey, fieldName string) bool {
				// Case-insensitive matching for env var overrides
				return strings.EqualFold(mapKey, fieldName)
			},
		},
	}); err != nil {
		return nil, errors.Wrapf(err, "unmarshal %s config failed", currEnv)
	}

	return cfg, nil
}

func New() (*Config, error) {
	cfg, err := LoadWithEnv[Config]("config", "config", "../config", "../../config")
	if err != nil {
		return nil, err
	}

	applyDefaults(cfg)

	// Build replicas from environment variables (POSTGRES_REPLICAS_0_HOST, POSTGRES_REPLICAS_0_PORT, etc.)
	if cfg.Postgres != nil {
		cfg.Postgres.Replicas = buildReplicasFromEnv()
	}

	return cfg, nil
}

// applyDefaults fills every optional section left out of the config file.
func applyDefaults(cfg *Config) {
	if strings.TrimSpace(cfg.HTTP.MaxRequestBodySize) == "" {
		cfg.HTTP.MaxRequestBodySize = defaultMaxRequestBodySize
	}

	if cfg.Migration == nil {
		cfg.Migration = &MigrationConfig{}
	}

	if cfg.Links == nil {
		cfg.Links = &LinksConfig{}
	}
	cfg.Links.BaseURL = strings.TrimRight(cfg.Links.BaseURL, "/")
	if cfg.Links.ExpiryWindow <= 0 {
		cfg.Links.ExpiryWindow = defaultLinkExpiryWindow
	}
	if cfg.Links.MaxAttempts <= 0 {
		cfg.Links.MaxAttempts = defaultLinkMaxAttempts
	}
	if cfg.Links.LockDuration <= 0 {
		cfg.Links.LockDuration = defaultLinkLockDuration
	}

	if cfg.Calculation == nil {
		cfg.Calculation = &CalculationConfig{}
	}
	if cfg.Calculation.RateTotal == 0 && cfg.Calculation.RateEmployer == 0 && cfg.Calculation.RateEmployee == 0 {
		cfg.Calculation.RateTotal = defaultRateTotal
		cfg.Calculation.RateEmployer = defaultRateEmployer
		cfg.Calculation.RateEmployee = defaultRateEmployee
	}
	if cfg.Calculation.Currency == "" {
		cfg.Calculation.Currency = defaultCurrency
	}

	if cfg.Generation == nil {
		cfg.Generation = &GenerationConfig{}
	}
	if cfg.Generation.IdempotencyWindow <= 0 {
		cfg.Generation.IdempotencyWindow = defaultIdempotencyWindow
	}

	if cfg.QRCode == nil {
		cfg.QRCode = &QRCodeConfig{}
	}
	if cfg.QRCode.Size <= 0 {
		cfg.QRCode.Size = defaultQRCodeSize
	}

	if cfg.Notifier == nil {
		cfg.Notifier = &NotifierConfig{}
	}
	if cfg.Notifier.Timeout <= 0 {
		cfg.Notifier.Timeout = defaultNotifierTimeout
	}
}

func canonicalizeEnvKey(rawKey string, existing map[string]any) string {
	segments := strings.Split(strings.ToLower(rawKey), "_")
	canonical := make([]string, 0, len(segments))
	current := existing

	for _, segment := range segments {
		if segment == "" {
			continue
		}

		if matched, next, ok := findExistingSegment(current, segment); ok {
			canonical = append(canonical, matched)
			current = next
		} else {
			canonical = append(canonical, segment)
			current = nil
		}
	}

	return strings.Join(canonical, ".")
}

func findExistingSegment(current map[string]any, segment string) (matched string, next map[string]any, ok bool) {
	if len(current) == 0 {
		return "", nil, false
	}

	needle := normalizeToken(segment)
	for key, value := range current {
		if normalizeToken(key) != needle {
			continue
		}

		child, _ := value.(map[string]any)

		return key, child, true
	}

	return "", nil, false
}

func normalizeToken(s string) string {
	var normalized strings.Builder
	normalized.Grow(len(s))

	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			continue
		}
		normalized.WriteRune(unicode.ToLower(r))
	}

	return normalized.String()
}

// buildReplicasFromEnv builds the replicas slice from environment variables.
// Environment variable format: POSTGRES_REPLICAS_{index}_{field}
// Example: POSTGRES_REPLICAS_0_HOST, POSTGRES_REPLICAS_0_PORT, POSTGRES_REPLICAS_0_USERNAME, POSTGRES_REPLICAS_0_PASSWORD
func buildReplicasFromEnv() []postgres.ConnectionConfig {
	var replicas []postgres.ConnectionConfig

	for i := 0; ; i++ {
		prefix := "POSTGRES_REPLICAS_" + strconv.Itoa(i) + "_"

		host := os.Getenv(prefix + "HOST")
		port := os.Getenv(prefix + "PORT")
		if host == "" || port == "" {
			// No more replicas or incomplete configuration.
			break
		}

		replica := postgres.ConnectionConfig{
			Host:     host,
			Port:     port,
			UserName: os.Getenv(prefix + "USERNAME"),
			Password: os.Getenv(prefix + "PASSWORD"),
		}

		replicas = append(replicas, replica)
	}

	return replicas
}

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// LogCollectionConfig defines the configuration for log collection.
// It includes settings for the collection interval, enabled sources,
// batch size, buffer size, number of sender workers, and maximum
// message size before truncation.
type LogCollectionConfig struct {
	Interval          time.Duration  `yaml:"interval"`
	Sources           []string       `yaml:"sources"`
	BatchSize         int            `yaml:"batch_size"`
	BufferSize        int            `yaml:"buffer_size"`
	Workers           int            `yaml:"workers"`
	MessageMax        int            `yaml:"message_max"`
	Files             []string       `yaml:"files"`
	JournalCursorFile string         `yaml:"journal_cursor_file"`
	EventLog          EventLogConfig `yaml:"eventlog"`
}

// EventLogConfig defines the configuration for the Windows event log
// subscription.
type EventLogConfig struct {
	Logfile     []string      `yaml:"logfile"`      // Log names to watch; defaults to Application, Security, System
	Codec       string        `yaml:"codec"`        // Encoding used by the file/stdout sink: plain or json
	TypeTag     string        `yaml:"type"`         // Type tag attached to every record
	WaitTimeout time.Duration `yaml:"wait_timeout"` // Bounded wait for the next event
	Backoff     time.Duration `yaml:"backoff"`      // Fixed delay after an unexpected runtime failure
}

// KafkaConfig defines the Kafka output settings.
type KafkaConfig struct {
	Brokers      []string      `yaml:"brokers"`
	Topic        string        `yaml:"topic"`
	RequiredAcks string        `yaml:"required_acks"` // none | one | all
	BatchSize    int           `yaml:"batch_size"`
	BatchTimeout time.Duration `yaml:"batch_timeout"`
	Async        bool          `yaml:"async"`
}

// OutputConfig selects where payloads are shipped.
type OutputConfig struct {
	Mode  string      `yaml:"mode"` // otlp | kafka | file | stdout
	File  string      `yaml:"file"` // target path for mode=file
	Kafka KafkaConfig `yaml:"kafka"`
}

// Config holds the configuration for the EvtShip agent.
// It is loaded from a YAML file and can be overridden by EVTSHIP_*
// environment variables and command-line flags.
type Config struct {
	TLS struct {
		Enabled            bool   `yaml:"enabled"`
		CAFile             string `yaml:"ca_file"`   // used by agent to trust the server
		CertFile           string `yaml:"cert_file"` // optional (for mTLS)
		KeyFile            string `yaml:"key_file"`  // optional (for mTLS)
		InsecureSkipVerify bool   `yaml:"insecure_skip_verify"`
	}

	Logs struct {
		AppLogFile   string `yaml:"app_log_file"`
		ErrorLogFile string `yaml:"error_log_file"`
		LogLevel     string `yaml:"log_level"`
	}

	CustomTags map[string]string `yaml:"custom_tags"` // static tags sent with every payload

	Agent struct {
		ServerURL     string        `yaml:"server_url"`
		Interval      time.Duration `yaml:"interval"`
		HostOverride  string        `yaml:"host"`
		Environment   string        `yaml:"environment"`
		TelemetryAddr string        `yaml:"telemetry_addr"` // Prometheus /metrics listen address; empty disables

		LogCollection LogCollectionConfig `yaml:"log_collection"`
		Output        OutputConfig        `yaml:"output"`
	}
}

// LoadConfig loads the configuration from a YAML file.
// It returns a Config struct and an error if any occurred during loading.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// ApplyDefaults fills unset fields with working values. The event log
// name set is never left empty; an empty set silently means the three
// canonical logs.
func ApplyDefaults(cfg *Config) {
	a := &cfg.Agent
	if a.Interval <= 0 {
		a.Interval = 2 * time.Second
	}

	lc := &a.LogCollection
	if lc.Interval <= 0 {
		lc.Interval = a.Interval
	}
	if lc.BatchSize <= 0 {
		lc.BatchSize = 100
	}
	if lc.BufferSize <= 0 {
		lc.BufferSize = 500
	}
	if lc.Workers <= 0 {
		lc.Workers = 2
	}
	if len(lc.Sources) == 0 {
		lc.Sources = []string{"eventlog", "journald"}
	}

	ev := &lc.EventLog
	if len(ev.Logfile) == 0 {
		ev.Logfile = []string{"Application", "Security", "System"}
	}
	if ev.Codec == "" {
		ev.Codec = "plain"
	}
	if ev.TypeTag == "" {
		ev.TypeTag = "eventlog"
	}
	if ev.WaitTimeout <= 0 {
		ev.WaitTimeout = time.Second
	}
	if ev.Backoff <= 0 {
		ev.Backoff = time.Second
	}

	out := &a.Output
	if out.Mode == "" {
		out.Mode = "otlp"
	}
	k := &out.Kafka
	if k.Topic == "" {
		k.Topic = "evtship.events"
	}
	if k.RequiredAcks == "" {
		k.RequiredAcks = "one"
	}
	if k.BatchSize <= 0 {
		k.BatchSize = 100
	}
	if k.BatchTimeout <= 0 {
		k.BatchTimeout = time.Second
	}
}

// ApplyEnvOverrides overrides config fields from EVTSHIP_* environment
// variables. Called after LoadConfig and before flag overrides.
func ApplyEnvOverrides(cfg *Config) {
	if val := os.Getenv("EVTSHIP_SERVER_URL"); val != "" {
		cfg.Agent.ServerURL = val
		fmt.Printf("Env override: EVTSHIP_SERVER_URL = %s\n", val)
	}
	if val := os.Getenv("EVTSHIP_INTERVAL"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Agent.Interval = d
			fmt.Printf("Env override: EVTSHIP_INTERVAL = %s\n", val)
		} else {
			fmt.Printf("Invalid EVTSHIP_INTERVAL format: %s\n", val)
		}
	}
	if val := os.Getenv("EVTSHIP_HOST"); val != "" {
		cfg.Agent.HostOverride = val
		fmt.Printf("Env override: EVTSHIP_HOST = %s\n", val)
	}
	if val := os.Getenv("EVTSHIP_ENVIRONMENT"); val != "" {
		cfg.Agent.Environment = val
		fmt.Printf("Env override: EVTSHIP_ENVIRONMENT = %s\n", val)
	}
	if val := os.Getenv("EVTSHIP_TELEMETRY_ADDR"); val != "" {
		cfg.Agent.TelemetryAddr = val
		fmt.Printf("Env override: EVTSHIP_TELEMETRY_ADDR = %s\n", val)
	}

	// Log paths
	if val := os.Getenv("EVTSHIP_APP_LOG_FILE"); val != "" {
		cfg.Logs.AppLogFile = val
		fmt.Printf("Env override: EVTSHIP_APP_LOG_FILE = %s\n", val)
	}
	if val := os.Getenv("EVTSHIP_ERROR_LOG_FILE"); val != "" {
		cfg.Logs.ErrorLogFile = val
		fmt.Printf("Env override: EVTSHIP_ERROR_LOG_FILE = %s\n", val)
	}
	if val := os.Getenv("EVTSHIP_LOG_LEVEL"); val != "" {
		cfg.Logs.LogLevel = val
		fmt.Printf("Env override: EVTSHIP_LOG_LEVEL = %s\n", val)
	}

	// TLS certs
	if val := os.Getenv("EVTSHIP_TLS_CERT_FILE"); val != "" {
		cfg.TLS.CertFile = val
		fmt.Printf("Env override: EVTSHIP_TLS_CERT_FILE = %s\n", val)
	}
	if val := os.Getenv("EVTSHIP_TLS_KEY_FILE"); val != "" {
		cfg.TLS.KeyFile = val
		fmt.Printf("Env override: EVTSHIP_TLS_KEY_FILE = %s\n", val)
	}
	if val := os.Getenv("EVTSHIP_TLS_CA_FILE"); val != "" {
		cfg.TLS.CAFile = val
		fmt.Printf("Env override: EVTSHIP_TLS_CA_FILE = %s\n", val)
	}

	// Collection surface
	if val := os.Getenv("EVTSHIP_SOURCES"); val != "" {
		cfg.Agent.LogCollection.Sources = SplitCSV(val)
		fmt.Printf("Env override: EVTSHIP_SOURCES = %s\n", val)
	}
	if val := os.Getenv("EVTSHIP_LOGFILES"); val != "" {
		cfg.Agent.LogCollection.EventLog.Logfile = SplitCSV(val)
		fmt.Printf("Env override: EVTSHIP_LOGFILES = %s\n", val)
	}

	// Output
	if val := os.Getenv("EVTSHIP_OUTPUT_MODE"); val != "" {
		cfg.Agent.Output.Mode = val
		fmt.Printf("Env override: EVTSHIP_OUTPUT_MODE = %s\n", val)
	}
	if val := os.Getenv("EVTSHIP_KAFKA_BROKERS"); val != "" {
		cfg.Agent.Output.Kafka.Brokers = SplitCSV(val)
		fmt.Printf("Env override: EVTSHIP_KAFKA_BROKERS = %s\n", val)
	}
	if val := os.Getenv("EVTSHIP_KAFKA_TOPIC"); val != "" {
		cfg.Agent.Output.Kafka.Topic = val
		fmt.Printf("Env override: EVTSHIP_KAFKA_TOPIC = %s\n", val)
	}

	// Custom tags
	if val := os.Getenv("EVTSHIP_CUSTOM_TAGS"); val != "" {
		fmt.Printf("Loading custom tags from EVTSHIP_CUSTOM_TAGS env: %s\n", val)
		if cfg.CustomTags == nil {
			cfg.CustomTags = make(map[string]string)
		}

		for _, tag := range strings.Split(val, ",") {
			tag = strings.TrimSpace(tag)
			if tag == "" {
				continue
			}
			key, value, ok := strings.Cut(tag, "=")
			if !ok {
				fmt.Printf("Invalid custom tag format (skipped): %s\n", tag)
				continue
			}
			key = strings.TrimSpace(key)
			value = strings.TrimSpace(value)
			if key == "" || value == "" {
				fmt.Printf("Empty key or value in custom tag (skipped): %s\n", tag)
				continue
			}
			cfg.CustomTags[key] = value
		}
	}
}

// SplitCSV splits a CSV string into a slice of strings.
// It trims whitespace from each element and ignores empty elements.
func SplitCSV(input string) []string {
	var out []string
	for _, s := range strings.Split(input, ",") {
		if trimmed := strings.TrimSpace(s); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

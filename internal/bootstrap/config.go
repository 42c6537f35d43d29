// evtship/agent/internal/bootstrap/config.go

package bootstrap

import (
	"flag"
	"log"
	"os"
	"path/filepath"

	"github.com/evtship/agent/internal/config"
	"github.com/evtship/agent/internal/logger"
	agentutils "github.com/evtship/agent/internal/utils"
)

// LoadAgentConfig loads the agent configuration, applying overrides in
// ascending priority: config file, EVTSHIP_* environment variables,
// command-line flags. Remaining gaps are filled with defaults.
func LoadAgentConfig() *config.Config {
	configFlag := flag.String("config", "", "Path to agent config file")
	serverURL := flag.String("server-url", "", "Override server URL")
	interval := flag.Duration("interval", 0, "Override collection interval (e.g. 5s)")
	host := flag.String("host", "", "Override hostname")
	environment := flag.String("env", "", "Environment (dev, test, prod)")
	outputMode := flag.String("output", "", "Output mode (otlp, kafka, file, stdout)")

	logLevel := flag.String("log-level", "", "Log level (debug, info, warn, error)")
	appLogFile := flag.String("app-log", "", "Path to app log file")
	errorLogFile := flag.String("error-log", "", "Path to error log file")
	customTags := flag.String("tags", "", "Comma-separated list of custom tags (k=v,...)")

	flag.Parse()

	configPath := resolvePath(*configFlag, "EVTSHIP_AGENT_CONFIG", "evtship.yaml")
	log.Printf("Loading config from: %s", configPath)
	if err := config.EnsureDefaultConfig(configPath); err != nil {
		log.Fatalf("Could not create default config: %v", err)
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	config.ApplyEnvOverrides(cfg)

	// CLI flags win over everything
	if *serverURL != "" {
		cfg.Agent.ServerURL = *serverURL
	}
	if *interval != 0 {
		cfg.Agent.Interval = *interval
	}
	if *host != "" {
		cfg.Agent.HostOverride = *host
	}
	if *environment != "" {
		cfg.Agent.Environment = *environment
	}
	if *outputMode != "" {
		cfg.Agent.Output.Mode = *outputMode
	}
	if *logLevel != "" {
		cfg.Logs.LogLevel = *logLevel
	}
	if *appLogFile != "" {
		cfg.Logs.AppLogFile = *appLogFile
	}
	if *errorLogFile != "" {
		cfg.Logs.ErrorLogFile = *errorLogFile
	}
	if *customTags != "" {
		cfg.CustomTags = agentutils.ParseTagString(*customTags)
	}

	config.ApplyDefaults(cfg)

	return cfg
}

// resolvePath picks the first of flag value, environment variable, and
// fallback, made absolute.
func resolvePath(flagVal, envVar, fallback string) string {
	if flagVal != "" {
		return absPath(flagVal)
	}
	if val := os.Getenv(envVar); val != "" {
		logger.Debug("Using %s from environment: %s", envVar, val)
		return absPath(val)
	}
	return absPath(fallback)
}

func absPath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		log.Fatalf("Failed to resolve path %q: %v", path, err)
	}
	return abs
}

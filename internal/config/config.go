package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store      StoreConfig      `yaml:"store" mapstructure:"store"`
	Fairness   FairnessConfig   `yaml:"fairness" mapstructure:"fairness"`
	Drift      DriftConfig      `yaml:"drift" mapstructure:"drift"`
	Monitoring MonitoringConfig `yaml:"monitoring" mapstructure:"monitoring"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// FairnessConfig configures metric computation.
type FairnessConfig struct {
	// MinGroupSamples is the sample count below which a contributing
	// group makes a metric's estimate unreliable.
	MinGroupSamples int `yaml:"min_group_samples" mapstructure:"min_group_samples"`
}

// DriftConfig configures drift detection.
type DriftConfig struct {
	// WindowSize is the number of history values per comparison window.
	WindowSize int `yaml:"window_size" mapstructure:"window_size"`
	// PValueThreshold flags the statistical method's verdict.
	PValueThreshold float64 `yaml:"p_value_threshold" mapstructure:"p_value_threshold"`
	// ControlLimitSigma is the control-chart limit width in standard
	// deviations around the baseline mean.
	ControlLimitSigma float64 `yaml:"control_limit_sigma" mapstructure:"control_limit_sigma"`
}

// MonitoringConfig configures the background drift checker and alerting.
type MonitoringConfig struct {
	CheckIntervalSecs int    `yaml:"check_interval_secs" mapstructure:"check_interval_secs"`
	PolicyPath        string `yaml:"policy_path" mapstructure:"policy_path"`
	WebhookURL        string `yaml:"webhook_url" mapstructure:"webhook_url"`
	AlertsPerMinute   int    `yaml:"alerts_per_minute" mapstructure:"alerts_per_minute"`
	AlertMinSeverity  string `yaml:"alert_min_severity" mapstructure:"alert_min_severity"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("FAIRWATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "fairwatch.db")
	v.SetDefault("fairness.min_group_samples", 10)
	v.SetDefault("drift.window_size", 5)
	v.SetDefault("drift.p_value_threshold", 0.05)
	v.SetDefault("drift.control_limit_sigma", 2.0)
	v.SetDefault("monitoring.check_interval_secs", 300)
	v.SetDefault("monitoring.policy_path", "policy.yaml")
	v.SetDefault("monitoring.alerts_per_minute", 10)
	v.SetDefault("monitoring.alert_min_severity", "MINOR")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}

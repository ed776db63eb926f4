package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
)

const (
	defaultPath           = "."
	defaultAnalysisWindow = 15 * time.Second
	defaultAlertSentinel  = "yyeess"
	defaultAutoPrompt     = "Describe what is happening in this camera frame. " +
		"If you see anything dangerous or unusual, append the word " + defaultAlertSentinel + " to your answer."
)

// DefaultFrameInterval is the capture polling interval used when the camera
// block omits one.
const DefaultFrameInterval = 33 * time.Millisecond

type Config struct {
	Env struct {
		Env         string `json:"env" yaml:"env"`
		ServiceName string `json:"serviceName" yaml:"serviceName"`
		Debug       bool   `json:"debug" yaml:"debug"`
		Log         Log    `json:"log" yaml:"log"`
	} `json:"env" yaml:"env"`

	HTTP struct {
		Port int `json:"port" yaml:"port"`
	} `json:"http" yaml:"http"`

	Postgres *PostgresConfig `json:"postgres" yaml:"postgres"`

	SecretKey struct {
		Session string `json:"session" yaml:"session"`
	} `json:"secretKey" yaml:"secretKey"`

	GoogleOAuth *GoogleOAuthConfig `json:"googleOAuth" yaml:"googleOAuth"`

	Auth *AuthConfig `json:"auth" yaml:"auth"`

	// Analysis configuration for the external vision service and the
	// automatic-analysis throttle.
	Analysis *AnalysisConfig `json:"analysis" yaml:"analysis"`

	// Camera configuration for the frame relay; nil disables capture.
	Camera *CameraConfig `json:"camera" yaml:"camera"`

	// PubSub configuration for alert event publishing
	PubSub *PubSubConfig `json:"pubsub" yaml:"pubsub"`

	// Firebase configuration for alert push notifications
	Firebase *FirebaseConfig `json:"firebase" yaml:"firebase"`
}

type Log struct {
	Pretty bool   `json:"pretty" yaml:"pretty"`
	Level  string `json:"level" yaml:"level"`
}

// PostgresConfig defines the user store connection.
type PostgresConfig struct {
	Host     string `json:"host" yaml:"host"`
	Port     int    `json:"port" yaml:"port"`
	Username string `json:"username" yaml:"username"`
	Password string `json:"password" yaml:"password"`
	DBName   string `json:"dbName" yaml:"dbName"`
	SSLMode  string `json:"sslMode" yaml:"sslMode"`
}

type GoogleOAuthConfig struct {
	ClientID string `json:"clientId" yaml:"clientId"`
	// ClientSecret and RedirectURI are not needed for ID token verification.
}

// AuthConfig defines authentication-related configuration
type AuthConfig struct {
	BcryptCost int `json:"bcryptCost" yaml:"bcryptCost"`
}

// AnalysisConfig defines the external vision service and throttle window.
type AnalysisConfig struct {
	Endpoint string        `json:"endpoint" yaml:"endpoint"`
	APIKey   string        `json:"apiKey" yaml:"apiKey"`
	Window   time.Duration `json:"window" yaml:"window"`
	Sentinel string        `json:"sentinel" yaml:"sentinel"`
	// AutoPrompt is the prompt used by the automatic-analysis path.
	AutoPrompt string `json:"autoPrompt" yaml:"autoPrompt"`
}

// CameraConfig defines the frame capture source.
type CameraConfig struct {
	// SourceURL serves a single JPEG frame per request (snapshot endpoint).
	SourceURL string `json:"sourceUrl" yaml:"sourceUrl"`
	// FrameInterval is the polling and feed pacing interval.
	FrameInterval time.Duration `json:"frameInterval" yaml:"frameInterval"`
}

// PubSubConfig defines alert event publishing.
type PubSubConfig struct {
	// Provider type: "local" for local HTTP push emulation or "google" for
	// Google Cloud Pub/Sub. Empty disables publishing.
	Provider string `json:"provider" yaml:"provider"`

	ProjectID string `json:"projectId" yaml:"projectId"`
	TopicID   string `json:"topicId" yaml:"topicId"`

	// Local HTTP endpoint for development (for local provider)
	LocalEndpoint string `json:"localEndpoint" yaml:"localEndpoint"`
}

// FirebaseConfig defines the optional FCM alert notification channel.
type FirebaseConfig struct {
	CredentialsPath string `json:"credentialsPath" yaml:"credentialsPath"`
	AlertTopic      string `json:"alertTopic" yaml:"alertTopic"`
}

// LoadWithEnv loads <env>.yaml through koanf, then lets environment
// variables override individual keys (HTTP_PORT -> http.port).
func LoadWithEnv[T any](currEnv string, configPath ...string) (*T, error) {
	cfg := new(T)
	koanfInstance := koanf.New(".")

	searchPaths := []string{defaultPath}
	if len(configPath) != 0 {
		pwd, err := os.Getwd()
		if err != nil {
			return nil, errors.Wrap(err, "os.Getwd")
		}
		for _, path := range configPath {
			searchPaths = append(searchPaths, filepath.Join(pwd, path))
		}
	}

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

	if err := koanfInstance.Load(file.Provider(configFile), yaml.Parser()); err != nil {
		return nil, errors.Wrapf(err, "read %s config failed", currEnv)
	}

	if err := koanfInstance.Load(env.Provider(".", env.Opt{
		TransformFunc: func(k, v string) (string, any) {
			return strings.ReplaceAll(strings.ToLower(k), "_", "."), v
		},
	}), nil); err != nil {
		return nil, errors.Wrap(err, "load env variables failed")
	}

	if err := koanfInstance.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
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
	cfg.ApplyDefaults()

	return cfg, nil
}

// ApplyDefaults fills analysis and camera defaults so callers never have to
// nil-check the throttle window or sentinel.
func (cfg *Config) ApplyDefaults() {
	if cfg.Analysis == nil {
		cfg.Analysis = &AnalysisConfig{}
	}
	if cfg.Analysis.Window <= 0 {
		cfg.Analysis.Window = defaultAnalysisWindow
	}
	if cfg.Analysis.Sentinel == "" {
		cfg.Analysis.Sentinel = defaultAlertSentinel
	}
	if cfg.Analysis.AutoPrompt == "" {
		cfg.Analysis.AutoPrompt = defaultAutoPrompt
	}
	if cfg.Camera != nil && cfg.Camera.FrameInterval <= 0 {
		cfg.Camera.FrameInterval = DefaultFrameInterval
	}
}

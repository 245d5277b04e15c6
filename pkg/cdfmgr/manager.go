package cdfmgr

import (
	"context"
	"net/http"
	"strings"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/cdftools/cdmup/pkg/cdf"
)

// ConfigError means required configuration is missing. No network call has
// been made when this is returned.
type ConfigError struct {
	// Environment variable names that were not set
	Missing []string
}

func (self *ConfigError) Error() string {
	return "missing required configuration: " + strings.Join(self.Missing, ", ")
}

// AuthError means the identity provider or the platform rejected the
// credentials during the verification call.
type AuthError struct {
	Err error
}

func (self *AuthError) Error() string {
	return "authentication failed: " + self.Err.Error()
}

func (self *AuthError) Cause() error {
	return self.Err
}

// The required credentials, as (viper key, environment variable) pairs. The
// cluster is the only optional piece of client configuration.
var requiredCredentials = [][2]string{
	{"project", "COGNITE_PROJECT"},
	{"tenant-id", "COGNITE_TENANT_ID"},
	{"client-id", "COGNITE_CLIENT_ID"},
	{"client-secret", "COGNITE_CLIENT_SECRET"},
}

type CdfManager struct {
	Client *cdf.Client
	Logger logrus.FieldLogger
	Cfg    *viper.Viper
	// Result of the verification call made during initialization
	Token *cdf.TokenInspection

	httpClient *http.Client
}

// NewManager builds a manager from an options bag. Recognized options:
//   "config-file" (string): explicit config file path
//   "logger" (logrus.FieldLogger): custom logger
//   "http-client" (*http.Client): transport override, used by tests
//   "base-url" (string): API URL override, used by tests
// Credentials are validated before any network call; the returned error is a
// *ConfigError when any are missing and a *AuthError when the platform
// rejects them.
func NewManager(userCfg map[string]interface{}) (*CdfManager, error) {
	var err error
	mgr := &CdfManager{}

	if cfgPathRaw, ok := userCfg["config-file"]; ok {
		if cfgPath, ok := cfgPathRaw.(string); ok {
			err = mgr.initConfig(&cfgPath)
		} else {
			return nil, errors.New("option 'config-file' must be of type string")
		}
	} else {
		err = mgr.initConfig(nil)
	}
	if err != nil {
		return nil, err
	}

	if loggerRaw, ok := userCfg["logger"]; ok {
		if logger, ok := loggerRaw.(logrus.FieldLogger); ok {
			mgr.Logger = logger
		} else {
			return nil, errors.New("option 'logger' must satisfy logrus.FieldLogger")
		}
	} else {
		mgr.Logger = logrus.New()
	}

	if clientRaw, ok := userCfg["http-client"]; ok {
		if client, ok := clientRaw.(*http.Client); ok {
			mgr.httpClient = client
		} else {
			return nil, errors.New("option 'http-client' must be of type *http.Client")
		}
	}

	if baseRaw, ok := userCfg["base-url"]; ok {
		if base, ok := baseRaw.(string); ok {
			mgr.Cfg.Set("base-url", base)
		} else {
			return nil, errors.New("option 'base-url' must be of type string")
		}
	}

	if err = mgr.initClient(); err != nil {
		return nil, err
	}

	return mgr, nil
}

func (self *CdfManager) Destroy() {
	if self.Client != nil {
		self.Client.Close()
	}
}

func (self *CdfManager) initConfig(cfgPath *string) error {
	// This is a private viper context just for cdmup (so as not to conflict
	// with the importer's usage).
	self.Cfg = viper.New()

	self.Cfg.SetDefault("app-name", "cdmup")

	// Order of precedence: ENV, cdmup.yaml, "api"
	self.Cfg.SetDefault("cluster", "api")
	self.Cfg.BindEnv("cluster", "CDF_CLUSTER")

	for _, cred := range requiredCredentials {
		self.Cfg.BindEnv(cred[0], cred[1])
	}

	// Defaults for the upload command. Everything here can be overridden by
	// flags or the config file.
	self.Cfg.SetDefault("upload.space", "my_files_space")

	if cfgPath != nil {
		// Use config file from the flag.
		self.Cfg.SetConfigFile(*cfgPath)
	} else {
		// Default search path for config is ./configs/cdmup.* and
		// $HOME/cdmup.* (* can be json, yaml, etc)
		self.Cfg.AddConfigPath("./configs")
		if home, err := homedir.Dir(); err == nil {
			self.Cfg.AddConfigPath(home)
		}
		self.Cfg.SetConfigName("cdmup")
	}

	if err := self.Cfg.ReadInConfig(); err != nil {
		// A missing config file is fine: credentials come from the
		// environment. An explicitly requested or unparseable file is not.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return errors.Wrap(err, "Failed to load config")
		}
	}
	return nil
}

// initClient validates the credentials, builds the CDF client, and runs one
// token introspection to confirm the platform accepts the token.
func (self *CdfManager) initClient() error {
	var missing []string
	for _, cred := range requiredCredentials {
		if self.Cfg.GetString(cred[0]) == "" {
			missing = append(missing, cred[1])
		}
	}
	if len(missing) > 0 {
		return &ConfigError{Missing: missing}
	}

	client, err := cdf.NewClient(self.Logger.WithField("module", "cdf"), cdf.Config{
		Project:      self.Cfg.GetString("project"),
		Cluster:      self.Cfg.GetString("cluster"),
		TenantID:     self.Cfg.GetString("tenant-id"),
		ClientID:     self.Cfg.GetString("client-id"),
		ClientSecret: self.Cfg.GetString("client-secret"),
		AppName:      self.Cfg.GetString("app-name"),
		BaseURL:      self.Cfg.GetString("base-url"),
		HTTPClient:   self.httpClient,
	})
	if err != nil {
		return errors.Wrap(err, "Failed to build CDF client")
	}

	token, err := client.InspectToken(context.Background())
	if err != nil {
		return &AuthError{Err: err}
	}

	self.Client = client
	self.Token = token
	self.Logger.WithFields(logrus.Fields{
		"project": self.Cfg.GetString("project"),
		"subject": token.Subject,
	}).Info("Connected to Cognite Data Fusion")
	return nil
}

package commands

import (
	"github.com/gpec/fieldselector/internal/config"
)

type Flags struct {
	LogLevel   string
	LogFile    string
	LogPretty  bool
	ConfigPath string

	// Config is loaded in the Before hook and available to all commands
	Config *config.Config
}

// DefaultConfigPath returns the default config file path using XDG_CONFIG_HOME.
func DefaultConfigPath() string {
	return config.GetConfigPath()
}

// cfg returns the loaded configuration, or the defaults when no hook ran.
func (f *Flags) cfg() *config.Config {
	if f.Config == nil {
		return config.Default()
	}
	return f.Config
}

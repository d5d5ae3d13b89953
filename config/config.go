package config

import (
	"errors"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/viper"
	"github.com/vidplay/vidplay/constant"
	"github.com/vidplay/vidplay/filesystem"
	"github.com/vidplay/vidplay/where"
)

// EnvKeyReplacer normalizes configuration keys into environment variable naming conventions.
var EnvKeyReplacer = strings.NewReplacer(".", "_")

// Corrected lists the keys Setup reset to their defaults because the
// configured value was not acceptable.
var Corrected []string

// Setup initializes the global configuration state: defaults, environment bindings and the config file.
func Setup() error {
	viper.SetConfigName(constant.App)
	viper.SetConfigType("toml")
	viper.SetFs(filesystem.API())
	viper.AddConfigPath(where.Config())

	viper.SetEnvPrefix(constant.App)
	viper.SetEnvKeyReplacer(EnvKeyReplacer)
	for _, env := range EnvExposed {
		viper.MustBindEnv(env)
	}

	viper.SetTypeByDefaultValue(true)
	for name, field := range Default {
		viper.SetDefault(name, field.Value)
	}

	if err := viper.ReadInConfig(); err != nil && !errors.As(err, &viper.ConfigFileNotFoundError{}) {
		return err
	}

	Corrected = Sanitize()
	return nil
}

// Sanitize resets every key whose value is outside its choices, or a
// negative number, to the default and returns those keys.
func Sanitize() []string {
	var reset []string

	for name, field := range Default {
		valid := true

		switch field.Value.(type) {
		case int:
			valid = viper.GetInt(name) >= 0
		case string:
			if len(field.Choices) > 0 {
				valid = lo.Contains(field.Choices, viper.GetString(name))
			}
		}

		if !valid {
			viper.Set(name, field.Value)
			reset = append(reset, name)
		}
	}

	return reset
}

package config

import (
	"bytes"
	"encoding/base64"
	"errors"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/joho/godotenv"
	"github.com/samber/lo"
	"github.com/spf13/viper"
)

// EnvPrefix namespaces environment overrides, e.g. CYBERSHIELD_STORE_DRIVER
// overrides store.driver.
const EnvPrefix = "CYBERSHIELD"

// Viper is a Config implementation backed by github.com/spf13/viper.
type Viper struct {
	v *viper.Viper
}

// NewViper loads configuration from the given file path, layers environment
// overrides on top and watches the file for changes.
//
// A .env file next to the working directory is loaded first when present, so
// local runs can keep secrets such as the encryption key out of the YAML.
func NewViper(pathFile string) (*Viper, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded", "error", err)
	}

	v := newViper()

	filename := path.Base(pathFile)
	v.AddConfigPath(path.Dir(pathFile))
	v.SetConfigName(strings.TrimSuffix(filename, path.Ext(filename)))

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	v.OnConfigChange(func(_ fsnotify.Event) {
		if err := v.ReadInConfig(); err != nil {
			slog.Error("config reload failed", "path", pathFile, "error", err)
			return
		}
		slog.Info("config reloaded", "path", pathFile)
	})
	v.WatchConfig()

	return &Viper{v: v}, nil
}

// NewViperFromBytes loads configuration from memory.
// configType should be a format supported by Viper (e.g. "yaml", "json").
func NewViperFromBytes(configType string, data []byte) (*Viper, error) {
	if strings.TrimSpace(configType) == "" {
		return nil, errors.New("config type is required")
	}

	v := newViper()
	v.SetConfigType(configType)

	if err := v.ReadConfig(bytes.NewReader(data)); err != nil {
		return nil, err
	}

	return &Viper{v: v}, nil
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

// GetInt returns the value for key as int.
func (vc *Viper) GetInt(key string) int {
	return vc.v.GetInt(key)
}

// GetInt32 returns the value for key as int32.
func (vc *Viper) GetInt32(key string) int32 {
	return vc.v.GetInt32(key)
}

// GetInt64 returns the value for key as int64.
func (vc *Viper) GetInt64(key string) int64 {
	return vc.v.GetInt64(key)
}

// GetUint returns the value for key as uint.
func (vc *Viper) GetUint(key string) uint {
	return vc.v.GetUint(key)
}

// GetFloat64 returns the value for key as float64.
func (vc *Viper) GetFloat64(key string) float64 {
	return vc.v.GetFloat64(key)
}

// GetBool returns the value for key as bool.
func (vc *Viper) GetBool(key string) bool {
	return vc.v.GetBool(key)
}

// GetSecond returns the value for key as seconds.
func (vc *Viper) GetSecond(key string) time.Duration {
	return time.Duration(vc.v.GetInt64(key)) * time.Second
}

// GetMinute returns the value for key as minutes.
func (vc *Viper) GetMinute(key string) time.Duration {
	return time.Duration(vc.v.GetInt64(key)) * time.Minute
}

// GetString returns the value for key as string.
func (vc *Viper) GetString(key string) string {
	return vc.v.GetString(key)
}

// GetBinary returns the value for key decoded from base64.
func (vc *Viper) GetBinary(key string) []byte {
	data, err := base64.StdEncoding.DecodeString(vc.v.GetString(key))
	if err != nil {
		return nil
	}

	return data
}

// GetArray returns the value for key as a list of trimmed, non-empty strings.
func (vc *Viper) GetArray(key string) []string {
	var raw []string
	switch val := vc.v.Get(key).(type) {
	case string:
		raw = strings.Split(val, ",")
	case nil:
		return nil
	default:
		raw = vc.v.GetStringSlice(key)
	}

	return lo.Compact(lo.Map(raw, func(s string, _ int) string {
		return strings.TrimSpace(s)
	}))
}

// Close implements io.Closer.
func (vc *Viper) Close() error {
	return nil
}

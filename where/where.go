// Package where resolves the filesystem locations used by the player.
package where

import (
	"os"
	"path/filepath"

	"github.com/samber/lo"
	"github.com/vidplay/vidplay/constant"
	"github.com/vidplay/vidplay/filesystem"
)

// EnvConfigPath overrides the default configuration directory.
const EnvConfigPath = "VIDPLAY_CONFIG_PATH"

func ensureDir(path string) string {
	lo.Must0(filesystem.API().MkdirAll(path, os.ModePerm))
	return path
}

// Config is the durable configuration directory (XDG_CONFIG_HOME or the platform equivalent).
func Config() string {
	if custom, ok := os.LookupEnv(EnvConfigPath); ok {
		return ensureDir(custom)
	}

	base := lo.Must(os.UserConfigDir())
	return ensureDir(filepath.Join(base, constant.App))
}

// Logs is the directory for daily log files.
func Logs() string {
	return ensureDir(filepath.Join(Config(), "logs"))
}

// Captions is the durable caption style file. It is independent of any source.
func Captions() string {
	return filepath.Join(Config(), "captions.json")
}

// Temp is the volatile application directory.
func Temp() string {
	return ensureDir(filepath.Join(os.TempDir(), constant.App))
}

// Cache is the directory for data that can be fetched again.
func Cache() string {
	base := lo.Must(os.UserCacheDir())
	return ensureDir(filepath.Join(base, constant.App))
}

// Session is the ephemeral playback position file; it does not survive a reboot.
func Session() string {
	return filepath.Join(Temp(), "session.json")
}

// Recent is the file listing recently played sources.
func Recent() string {
	return filepath.Join(Cache(), "recent.json")
}

// Package cache prunes files the player leaves behind between runs.
package cache

import (
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/afero"
	"github.com/vidplay/vidplay/filesystem"
	"github.com/vidplay/vidplay/log"
	"github.com/vidplay/vidplay/where"
)

// TTL is how long cached files and daily logs are kept.
const TTL = 7 * 24 * time.Hour

// Expired returns the regular files under dir last modified before now minus ttl.
func Expired(dir string, ttl time.Duration, now time.Time) []string {
	var expired []string

	_ = afero.Walk(filesystem.API(), dir, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return nil
		}
		if now.Sub(info.ModTime()) > ttl {
			expired = append(expired, path)
		}
		return nil
	})

	return expired
}

// Prune removes expired files from dirs and returns how many were removed.
func Prune(now time.Time, dirs ...string) int {
	var removed int

	for _, dir := range dirs {
		for _, path := range Expired(dir, TTL, now) {
			if err := filesystem.API().Remove(path); err != nil {
				log.Debugf("prune %s: %v", filepath.Base(path), err)
				continue
			}
			removed++
		}
	}

	return removed
}

// CollectGarbage prunes the cache and log directories in the background.
func CollectGarbage() {
	go func() {
		if n := Prune(time.Now(), where.Cache(), where.Logs()); n > 0 {
			log.Infof("removed %d expired files", n)
		}
	}()
}

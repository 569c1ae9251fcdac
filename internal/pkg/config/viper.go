package config

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/samber/lo"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment variables that override file values, so
// jwt.secret can be injected as WATERCAN_JWT_SECRET.
const EnvPrefix = "WATERCAN"

// k8sDataLink is the symlink a mounted ConfigMap swaps on update.
const k8sDataLink = "..data"

func bindEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// Viper is a Config backed by spf13/viper. Reads are safe while a file
// reload is in progress.
type Viper struct {
	mu sync.RWMutex
	v  *viper.Viper

	watcher *fsnotify.Watcher

	subsMu sync.Mutex
	subs   []func()
}

// NewViper reads the file at pathFile, its format taken from the extension,
// and reloads it whenever the file changes on disk.
func NewViper(pathFile string) (*Viper, error) {
	v := viper.New()
	v.SetConfigFile(pathFile)
	bindEnv(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: read %s: %w", pathFile, err)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("config: watcher: %w", err)
	}
	if err := w.Add(filepath.Dir(pathFile)); err != nil {
		return nil, errors.Join(fmt.Errorf("config: watch %s: %w", pathFile, err), w.Close())
	}

	vc := &Viper{v: v, watcher: w}
	go vc.watch(filepath.Clean(pathFile))

	return vc, nil
}

// NewViperFromBytes loads configuration from memory. configType is a format
// viper understands ("yaml", "json", "toml"). The result never reloads.
func NewViperFromBytes(configType string, data []byte) (*Viper, error) {
	if strings.TrimSpace(configType) == "" {
		return nil, errors.New("config type is required")
	}

	v := viper.New()
	v.SetConfigType(configType)
	bindEnv(v)

	if err := v.ReadConfig(bytes.NewReader(data)); err != nil {
		return nil, err
	}

	return &Viper{v: v}, nil
}

func (vc *Viper) watch(file string) {
	for {
		select {
		case ev, ok := <-vc.watcher.Events:
			if !ok {
				return
			}
			name := filepath.Clean(ev.Name)
			if name != file && filepath.Base(name) != k8sDataLink {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			vc.reload(file)

		case err, ok := <-vc.watcher.Errors:
			if !ok {
				return
			}
			slog.Warn("config watcher error", "path", file, "error", err)
		}
	}
}

func (vc *Viper) reload(file string) {
	vc.mu.Lock()
	err := vc.v.ReadInConfig()
	vc.mu.Unlock()

	if err != nil {
		slog.Error("config reload failed, keeping previous values", "path", file, "error", err)
		return
	}
	slog.Info("config reloaded", "path", file)

	vc.subsMu.Lock()
	subs := append([]func(){}, vc.subs...)
	vc.subsMu.Unlock()
	for _, fn := range subs {
		fn()
	}
}

// OnChange registers fn to run after every successful reload.
func (vc *Viper) OnChange(fn func()) {
	vc.subsMu.Lock()
	vc.subs = append(vc.subs, fn)
	vc.subsMu.Unlock()
}

func get[T any](vc *Viper, read func(string) T, key string) T {
	vc.mu.RLock()
	defer vc.mu.RUnlock()
	return read(key)
}

func (vc *Viper) GetInt(key string) int { return get(vc, vc.v.GetInt, key) }
func (vc *Viper) GetInt32(key string) int32 { return get(vc, vc.v.GetInt32, key) }
func (vc *Viper) GetInt64(key string) int64 { return get(vc, vc.v.GetInt64, key) }
func (vc *Viper) GetUint64(key string) uint64 { return get(vc, vc.v.GetUint64, key) }
func (vc *Viper) GetFloat64(key string) float64 { return get(vc, vc.v.GetFloat64, key) }
func (vc *Viper) GetBool(key string) bool { return get(vc, vc.v.GetBool, key) }
func (vc *Viper) GetString(key string) string { return get(vc, vc.v.GetString, key) }

func (vc *Viper) GetUint16(key string) uint16 {
	return uint16(get(vc, vc.v.GetUint, key))
}

func (vc *Viper) GetMillisecond(key string) time.Duration {
	return time.Duration(vc.GetInt64(key)) * time.Millisecond
}

func (vc *Viper) GetSecond(key string) time.Duration {
	return time.Duration(vc.GetInt64(key)) * time.Second
}

func (vc *Viper) GetDay(key string) time.Duration {
	return time.Duration(vc.GetInt64(key)) * 24 * time.Hour
}

func (vc *Viper) GetBinary(key string) []byte {
	data, err := base64.StdEncoding.DecodeString(vc.GetString(key))
	if err != nil {
		return nil
	}
	return data
}

func (vc *Viper) GetArray(key string) []string {
	vc.mu.RLock()
	var parts []string
	switch vc.v.Get(key).(type) {
	case []any, []string:
		parts = vc.v.GetStringSlice(key)
	default:
		parts = strings.Split(vc.v.GetString(key), ",")
	}
	vc.mu.RUnlock()

	return lo.Compact(lo.Map(parts, func(s string, _ int) string {
		return strings.TrimSpace(s)
	}))
}

// Close stops the file watcher.
func (vc *Viper) Close() error {
	if vc.watcher == nil {
		return nil
	}
	return vc.watcher.Close()
}

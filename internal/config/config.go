package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port    int               `yaml:"port"`
		APIKeys map[string]string `yaml:"apiKeys"`
	} `yaml:"server"`

	Database struct {
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		User     string `yaml:"user"`
		Password string `yaml:"password"`
		Name     string `yaml:"name"`
	} `yaml:"database"`

	// Optional reporting mirror; empty DSN disables it.
	Postgres struct {
		DSN string `yaml:"dsn"`
	} `yaml:"postgres"`

	Scheduler struct {
		DailyAt             string `yaml:"dailyAt"` // "HH:MM", local time
		ProbeTimeoutSeconds int    `yaml:"probeTimeoutSeconds"`
	} `yaml:"scheduler"`

	Minio struct {
		Endpoint   string `yaml:"endpoint"`
		AccessKey  string `yaml:"accessKey"`
		SecretKey  string `yaml:"secretKey"`
		BucketName string `yaml:"bucketName"`
		Region     string `yaml:"region"`
		UseSSL     bool   `yaml:"useSSL"`
	} `yaml:"minio"`

	OpenAI struct {
		APIKey string `yaml:"apiKey"`
		Model  string `yaml:"model"`
	} `yaml:"openai"`
}

// Load reads the config.yaml file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// MySQLDSN builds the primary store DSN
func (c *Config) MySQLDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4&loc=UTC",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
	)
}

// ProbeTimeout returns the configured per-probe deadline, defaulting to 30s.
func (c *Config) ProbeTimeout() time.Duration {
	if c.Scheduler.ProbeTimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.Scheduler.ProbeTimeoutSeconds) * time.Second
}

// DailyRunAt parses the daily batch time, defaulting to 02:00.
func (c *Config) DailyRunAt() (hour, minute int) {
	hour, minute = 2, 0
	parts := strings.SplitN(strings.TrimSpace(c.Scheduler.DailyAt), ":", 2)
	if len(parts) != 2 {
		return hour, minute
	}
	h, err1 := strconv.Atoi(parts[0])
	m, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil || h < 0 || h > 23 || m < 0 || m > 59 {
		return hour, minute
	}
	return h, m
}

// Watch re-reads the file whenever it changes and hands the fresh config
// to onChange. Returns a stop function. Editors often replace the file,
// so the path is re-added after rename events.
func Watch(path string, onChange func(*Config)) (func() error, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return nil, err
	}

	go func() {
		for {
			select {
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != filepath.Clean(path) {
					continue
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				cfg, err := Load(path)
				if err != nil {
					continue
				}
				onChange(cfg)
			case _, ok := <-watcher.Errors:
				if !ok {
					return
				}
			}
		}
	}()

	return watcher.Close, nil
}

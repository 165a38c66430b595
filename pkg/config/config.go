package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

const DefaultEnvFile = "./configs/.env"

var (
	once     sync.Once
	instance *Config
)

type Config struct {
}

// New loads the env file once. A missing file is not fatal: variables may come
// from the process environment instead.
func New(envFiles ...string) *Config {
	once.Do(func() {
		path := DefaultEnvFile
		if len(envFiles) > 0 && envFiles[0] != "" {
			path = envFiles[0]
		}
		if err := godotenv.Load(path); err != nil {
			log.Printf("loading envs from %s skipped: %v", path, err)
		}
		instance = &Config{}
	})
	return instance
}

func (c *Config) GetString(key string) string {
	return os.Getenv(key)
}

func (c *Config) GetStringOr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func (c *Config) GetInt(key string, def int) int {
	v, err := strconv.Atoi(strings.TrimSpace(os.Getenv(key)))
	if err != nil {
		return def
	}
	return v
}

func (c *Config) GetDuration(key string, def time.Duration) time.Duration {
	v, err := time.ParseDuration(strings.TrimSpace(os.Getenv(key)))
	if err != nil || v <= 0 {
		return def
	}
	return v
}

// GetList splits a comma separated variable, dropping empty items.
func (c *Config) GetList(key string, def []string) []string {
	raw := os.Getenv(key)
	if strings.TrimSpace(raw) == "" {
		return def
	}
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func (c *Config) GetLocation(key string) *time.Location {
	name := c.GetStringOr(key, "UTC")
	loc, err := time.LoadLocation(name)
	if err != nil {
		log.Printf("unknown time zone %q, falling back to UTC", name)
		return time.UTC
	}
	return loc
}

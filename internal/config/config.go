package config

import (
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/spf13/viper"

	"aria/client/internal/focus"
)

type Config struct {
	Server struct {
		Port     string
		LogLevel string
	}
	Control struct {
		TokenSecret   string
		TokenSkewSecs int
	}
	Focus struct {
		Channels string
	}
	Events struct {
		Max int
	}
}

func Load() Config {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")

	v.SetDefault("control.token_skew_secs", 30)

	// name:priority pairs; lower number = higher priority.
	v.SetDefault("focus.channels", "dialog:100,alerts:200,content:300")

	v.SetDefault("events.max", 512)

	// Map envs
	v.BindEnv("server.port", "PORT")
	v.BindEnv("server.log_level", "LOG_LEVEL")

	v.BindEnv("control.token_secret", "CONTROL_TOKEN_SECRET")
	v.BindEnv("control.token_skew_secs", "CONTROL_TOKEN_SKEW_SECS")

	v.BindEnv("focus.channels", "FOCUS_CHANNELS")

	v.BindEnv("events.max", "EVENTS_MAX")

	var c Config
	c.Server.Port = toString(v.Get("server.port"))
	c.Server.LogLevel = v.GetString("server.log_level")

	c.Control.TokenSecret = v.GetString("control.token_secret")
	c.Control.TokenSkewSecs = v.GetInt("control.token_skew_secs")

	c.Focus.Channels = v.GetString("focus.channels")

	c.Events.Max = v.GetInt("events.max")

	log.Printf("config loaded: port=%s channels=%s", c.Server.Port, c.Focus.Channels)
	return c
}

// ChannelSpecs parses the channel table. Each entry is "name:priority";
// malformed entries are skipped with a log line, duplicate handling is left
// to the focus manager.
func (c Config) ChannelSpecs() []focus.ChannelSpec {
	var specs []focus.ChannelSpec
	for _, entry := range strings.Split(c.Focus.Channels, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		name, prioStr, ok := strings.Cut(entry, ":")
		name = strings.TrimSpace(name)
		prio, err := strconv.ParseUint(strings.TrimSpace(prioStr), 10, 32)
		if !ok || name == "" || err != nil {
			log.Printf("[config] skipping malformed channel entry %q", entry)
			continue
		}
		specs = append(specs, focus.ChannelSpec{Name: name, Priority: uint(prio)})
	}
	return specs
}

func toString(v any) string { return fmt.Sprint(v) }

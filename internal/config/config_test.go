package config

import (
	"os"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	os.Unsetenv("PORT")
	os.Unsetenv("LOG_LEVEL")
	os.Unsetenv("FOCUS_CHANNELS")
	os.Unsetenv("EVENTS_MAX")

	c := Load()

	if c.Server.Port != "8080" {
		t.Fatalf("expected default port 8080, got %q", c.Server.Port)
	}
	if c.Server.LogLevel != "info" {
		t.Fatalf("expected default log level info, got %q", c.Server.LogLevel)
	}
	if c.Events.Max != 512 {
		t.Fatalf("expected default events max 512, got %d", c.Events.Max)
	}

	specs := c.ChannelSpecs()
	if len(specs) != 3 {
		t.Fatalf("expected 3 default channels, got %d", len(specs))
	}
	if specs[0].Name != "dialog" || specs[0].Priority != 100 {
		t.Fatalf("expected dialog:100 first, got %+v", specs[0])
	}
	if specs[2].Name != "content" || specs[2].Priority != 300 {
		t.Fatalf("expected content:300 last, got %+v", specs[2])
	}
}

func TestChannelSpecsFromEnv(t *testing.T) {
	os.Setenv("FOCUS_CHANNELS", "voice:10, media:20")
	defer os.Unsetenv("FOCUS_CHANNELS")

	specs := Load().ChannelSpecs()
	if len(specs) != 2 {
		t.Fatalf("expected 2 channels, got %+v", specs)
	}
	if specs[1].Name != "media" || specs[1].Priority != 20 {
		t.Fatalf("expected media:20, got %+v", specs[1])
	}
}

func TestChannelSpecsSkipsMalformed(t *testing.T) {
	var c Config
	c.Focus.Channels = "dialog:100,broken,:5,alerts:abc,,content:300"

	specs := c.ChannelSpecs()
	if len(specs) != 2 {
		t.Fatalf("expected only well-formed entries, got %+v", specs)
	}
	if specs[0].Name != "dialog" || specs[1].Name != "content" {
		t.Fatalf("unexpected survivors: %+v", specs)
	}
}

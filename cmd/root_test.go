package cmd

import (
	"bytes"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestRootCmd_JSONFlagExists(t *testing.T) {
	jsonOutput = false

	flag := rootCmd.PersistentFlags().Lookup("json")

	assert.NotNil(t, flag, "--json flag should exist")
	assert.Equal(t, "false", flag.DefValue)
	assert.Equal(t, "Output in JSON format", flag.Usage)
}

func TestRootCmd_JSONFlagShorthand(t *testing.T) {
	flag := rootCmd.PersistentFlags().ShorthandLookup("j")

	assert.NotNil(t, flag, "-j shorthand should exist")
	assert.Equal(t, "json", flag.Name)
}

func TestRootCmd_PersistentFlags(t *testing.T) {
	assert.NotNil(t, rootCmd.PersistentFlags().Lookup("env-file"))
	assert.NotNil(t, rootCmd.PersistentFlags().Lookup("log-level"))
}

func TestRootCmd_GetJSONMode(t *testing.T) {
	jsonOutput = false
	assert.False(t, GetJSONMode())

	jsonOutput = true
	assert.True(t, GetJSONMode())

	jsonOutput = false
}

func TestRootCmd_Subcommands(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}

	for _, want := range []string{"ticket", "chain", "quote", "login", "logout", "configure"} {
		assert.True(t, names[want], "missing %s command", want)
	}
}

func TestRootCmd_Version(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"--version"})
	defer rootCmd.SetOut(nil)

	_ = rootCmd.Execute()

	assert.Contains(t, out.String(), "backspread version")
}

func TestSetupLogging(t *testing.T) {
	defer log.SetLevel(log.InfoLevel)

	tests := []struct {
		name  string
		flag  string
		env   string
		level log.Level
	}{
		{name: "flag wins", flag: "debug", env: "error", level: log.DebugLevel},
		{name: "env fallback", env: "warn", level: log.WarnLevel},
		{name: "invalid falls back to info", flag: "loud", level: log.InfoLevel},
		{name: "default info", level: log.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("LOG_LEVEL", tt.env)
			setupLogging(tt.flag)
			assert.Equal(t, tt.level, log.GetLevel())
		})
	}
}

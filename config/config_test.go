// SPDX-License-Identifier: ice License 1.0

package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvPrefix(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "SELF", EnvPrefix("self"))
	assert.Equal(t, "VERO_RELAY", EnvPrefix("vero-relay"))
	assert.Equal(t, "ANALYTICS_VERO", EnvPrefix("analytics/vero"))
}

func TestEnv(t *testing.T) { //nolint:paralleltest // It mutates the process environment.
	t.Setenv("CONFIG_TEST_SOME_KEY", "")
	t.Setenv("SOME_KEY", "global")
	assert.Equal(t, "global", Env("config-test", "SOME_KEY"))
	t.Setenv("CONFIG_TEST_SOME_KEY", "scoped")
	assert.Equal(t, "scoped", Env("config-test", "SOME_KEY"))
}

func TestMustLoadFromKey(t *testing.T) {
	t.Parallel()
	var cfg struct {
		Level string `yaml:"level" mapstructure:"level"`
	}
	MustLoadFromKey("logger", &cfg)
	require.NotEmpty(t, cfg.Level)
}

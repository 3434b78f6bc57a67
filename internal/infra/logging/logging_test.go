package logging

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetup(t *testing.T) {
	defer logrus.SetLevel(logrus.InfoLevel)

	require.NoError(t, Setup("debug", "json"))
	assert.Equal(t, logrus.DebugLevel, logrus.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, logrus.StandardLogger().Formatter)

	require.NoError(t, Setup("warn", ""))
	assert.IsType(t, &logrus.TextFormatter{}, logrus.StandardLogger().Formatter)

	assert.Error(t, Setup("loud", "text"))
	assert.Error(t, Setup("info", "xml"))
}

func TestEntryRoundTrip(t *testing.T) {
	e := ForEvent("reaction_add")
	assert.Equal(t, "reaction_add", e.Data["event"])
	assert.NotEmpty(t, e.Data["event_id"])
	assert.NotEqual(t, e.Data["event_id"], ForEvent("reaction_add").Data["event_id"])

	ctx := WithEntry(context.Background(), e)
	assert.Same(t, e, From(ctx))
	assert.NotNil(t, From(context.Background()))
}

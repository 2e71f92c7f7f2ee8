package bot

import (
	"os"
	"testing"
	"time"

	coreconfig "github.com/pnjanonbot/PNJHelper/core/config"
	"github.com/pnjanonbot/PNJHelper/core/logger"
	"github.com/pnjanonbot/PNJHelper/relay"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	if err := logger.InitLogger(nil); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func testConfig() *coreconfig.Config {
	return &coreconfig.Config{
		Telegram: coreconfig.TelegramConfig{
			Token:   "123:abc",
			AdminID: 9000,
			RunMode: coreconfig.RunModeLongpoll,
		},
		Chat: coreconfig.ChatConfig{
			MaxQueueSize:          3,
			SessionTimeoutSeconds: 300,
		},
	}
}

func TestTelegramRunOptionsWiring(t *testing.T) {
	a, err := New(testConfig())
	require.NoError(t, err)

	opts, err := a.TelegramRunOptions()
	require.NoError(t, err)
	require.NotNil(t, opts.Registry)

	for _, cmd := range []string{"/start", "/chat", "/queue", "/stop", "/status"} {
		_, _, ok := opts.Registry.LookupCommand(cmd)
		assert.True(t, ok, "command %s not registered", cmd)
	}

	_, ok := opts.Registry.GetCallback(stopChatAction)
	assert.True(t, ok)
	assert.NotNil(t, opts.Registry.TextFallback())

	// 5 commands, text, 7 media endpoints, callbacks
	assert.Len(t, opts.Routes, 14)
	assert.NotEmpty(t, opts.Middlewares)
}

func TestStatusCommandIsAdminOnly(t *testing.T) {
	a, err := New(testConfig())
	require.NoError(t, err)

	opts, err := a.TelegramRunOptions()
	require.NoError(t, err)

	_, def, ok := opts.Registry.LookupCommand("/status")
	require.True(t, ok)
	assert.True(t, def.AdminOnly)
	assert.True(t, def.Hidden)
}

func TestAppCoordinatorUsesChatConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Chat.MaxQueueSize = 1
	cfg.Chat.SessionTimeoutSeconds = 60

	a, err := New(cfg)
	require.NoError(t, err)
	co := a.Coordinator()
	defer co.Stop()

	assert.Equal(t, cfg.Telegram.AdminID, co.Admin())

	require.NoError(t, co.StartSession(1))
	assert.True(t, a.InSession(1))

	adm := co.RequestAdmission(2)
	require.Equal(t, relay.StatusQueued, adm.Status)
	assert.Equal(t, relay.StatusQueueFull, co.RequestAdmission(3).Status)
}

func TestSessionTimeoutFromConfig(t *testing.T) {
	cfg := testConfig()
	assert.Equal(t, 5*time.Minute, cfg.Chat.SessionTimeout())
}

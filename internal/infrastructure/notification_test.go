package infrastructure

import (
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/yourusername/kaggle-sync/internal/domain"
)

type recordedCommand struct {
	name string
	args []string
}

func newTestNotifier(config *domain.NotificationConfig, runErr error) (*NotificationService, *[]recordedCommand) {
	var calls []recordedCommand
	n := NewNotificationService(config, zap.NewNop())
	n.run = func(name string, args ...string) error {
		calls = append(calls, recordedCommand{name: name, args: args})
		return runErr
	}
	return n, &calls
}

func TestNotificationService_Disabled(t *testing.T) {
	n, calls := newTestNotifier(&domain.NotificationConfig{Enabled: false, Method: "notify-send"}, nil)

	require.NoError(t, n.Send("title", "message"))
	assert.Empty(t, *calls)
}

func TestNotificationService_NotifySend(t *testing.T) {
	n, calls := newTestNotifier(&domain.NotificationConfig{Enabled: true, Method: "notify-send"}, nil)

	n.NotifyRunCompleted("diabetes health", 1, 2)

	require.Len(t, *calls, 1)
	assert.Equal(t, "notify-send", (*calls)[0].name)
	assert.Equal(t, "Kaggle Sync Completed", (*calls)[0].args[0])
	assert.Contains(t, (*calls)[0].args[1], "1 of 2")
}

func TestNotificationService_OSAScriptEscapesQuotes(t *testing.T) {
	n, calls := newTestNotifier(&domain.NotificationConfig{Enabled: true, Method: "osascript", Sound: true}, nil)

	n.NotifyUpToDate(`say "hi"`)

	require.Len(t, *calls, 1)
	script := (*calls)[0].args[1]
	assert.Contains(t, script, `display notification "No new datasets for \"say \"hi\"\""`)
	assert.NotContains(t, script, `\\`)
	assert.Contains(t, script, `sound name "default"`)
}

func TestNotificationService_MessagesKeepNonASCII(t *testing.T) {
	n, calls := newTestNotifier(&domain.NotificationConfig{Enabled: true, Method: "osascript"}, nil)

	n.NotifyRunFailed("saúde pública", errors.New("boom"))

	require.Len(t, *calls, 1)
	script := (*calls)[0].args[1]
	assert.Contains(t, script, `\"saúde pública\": boom`)
	assert.NotContains(t, script, `\u`)
}

func TestNotificationService_NotifyNothingFound(t *testing.T) {
	n, calls := newTestNotifier(&domain.NotificationConfig{Enabled: true, Method: "notify-send"}, nil)

	n.NotifyNothingFound("no such thing")

	require.Len(t, *calls, 1)
	assert.Equal(t, "Kaggle Sync Found Nothing", (*calls)[0].args[0])
	assert.Equal(t, `No datasets match "no such thing"`, (*calls)[0].args[1])
}

func TestTruncateString_CutsOnRuneBoundaries(t *testing.T) {
	query := strings.Repeat("é", 29) + "ção"

	got := truncateString(query, 30)

	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, strings.Repeat("é", 29)+"ç...", got)
	assert.Equal(t, "short", truncateString("short", 30))
}

func TestNotificationService_UnknownMethod(t *testing.T) {
	n, calls := newTestNotifier(&domain.NotificationConfig{Enabled: true, Method: "carrier-pigeon"}, nil)

	require.NoError(t, n.Send("title", "message"))
	assert.Empty(t, *calls)
}

func TestNotificationService_CommandFailure(t *testing.T) {
	n, _ := newTestNotifier(&domain.NotificationConfig{Enabled: true, Method: "notify-send"}, errors.New("no display"))

	assert.Error(t, n.Send("title", "message"))
}

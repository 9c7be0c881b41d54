package v1

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/parleychat/parley/plugin/gemini"
	"github.com/parleychat/parley/store"
)

func TestFormatHistoryRestoresChronologicalOrder(t *testing.T) {
	// Newest first, as the store returns recent turns.
	recent := []*store.ChatTurn{
		{ID: 4, Role: store.RoleAssistant, Content: "fourth"},
		{ID: 3, Role: store.RoleUser, Content: "third"},
		{ID: 2, Role: store.RoleAssistant, Content: "second"},
		{ID: 1, Role: store.RoleUser, Content: "first"},
	}
	require.Equal(t, []gemini.Exchange{
		{Speaker: gemini.SpeakerUser, Text: "first"},
		{Speaker: gemini.SpeakerModel, Text: "second"},
		{Speaker: gemini.SpeakerUser, Text: "third"},
		{Speaker: gemini.SpeakerModel, Text: "fourth"},
	}, formatHistory(recent))
}

func TestFormatHistoryMapsRoles(t *testing.T) {
	recent := []*store.ChatTurn{
		{Role: store.RoleAssistant, Content: "hello"},
		{Role: store.RoleUser, Content: "hi"},
	}
	require.Equal(t, []gemini.Exchange{
		{Speaker: gemini.SpeakerUser, Text: "hi"},
		{Speaker: gemini.SpeakerModel, Text: "hello"},
	}, formatHistory(recent))
}

func TestFormatHistoryDropsUnknownRoles(t *testing.T) {
	recent := []*store.ChatTurn{
		{Role: store.RoleUser, Content: "b"},
		{Role: store.Role("system"), Content: "ignored"},
		{Role: store.RoleUser, Content: "a"},
	}
	history := formatHistory(recent)
	require.Len(t, history, 2)
	require.Equal(t, "a", history[0].Text)
	require.Equal(t, "b", history[1].Text)
}

func TestFormatHistoryEmpty(t *testing.T) {
	require.Empty(t, formatHistory(nil))
}

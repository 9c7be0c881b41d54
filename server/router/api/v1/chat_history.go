package v1

import (
	"github.com/parleychat/parley/plugin/gemini"
	"github.com/parleychat/parley/store"
)

// formatHistory turns recent turns, newest first, into model exchanges in
// chronological order. Turns with an unknown role are dropped.
func formatHistory(recent []*store.ChatTurn) []gemini.Exchange {
	history := make([]gemini.Exchange, 0, len(recent))
	for i := len(recent) - 1; i >= 0; i-- {
		turn := recent[i]
		switch turn.Role {
		case store.RoleUser:
			history = append(history, gemini.Exchange{Speaker: gemini.SpeakerUser, Text: turn.Content})
		case store.RoleAssistant:
			history = append(history, gemini.Exchange{Speaker: gemini.SpeakerModel, Text: turn.Content})
		default:
		}
	}
	return history
}

package v1

import (
	"log/slog"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/labstack/echo/v5"

	"github.com/parleychat/parley/store"
)

const (
	// historyWindow is how many recent turns are handed to the model.
	historyWindow = 10
	// maxMessageLength is counted in characters after trimming.
	maxMessageLength = 10000
)

type chatRequest struct {
	Message *string `json:"message"`
}

type chatTurnResponse struct {
	ID        int32  `json:"id"`
	Role      string `json:"role"`
	Content   string `json:"content"`
	CreatedAt string `json:"created_at"`
}

type chatExchangeResponse struct {
	UserMessage chatTurnResponse `json:"user_message"`
	AIResponse  chatTurnResponse `json:"ai_response"`
}

type clearChatResponse struct {
	Message string `json:"message"`
	Deleted int64  `json:"deleted"`
}

func (s *APIV1Service) listChatTurns(c *echo.Context) error {
	user, err := s.requireAuth(c)
	if err != nil {
		return err
	}
	turns, err := s.Store.ListChatTurns(c.Request().Context(), user.ID)
	if err != nil {
		slog.Error("failed to list chat turns", slog.Int("user", int(user.ID)), slog.String("error", err.Error()))
		return echo.NewHTTPError(http.StatusInternalServerError, "Error loading chat history")
	}
	resp := make([]chatTurnResponse, 0, len(turns))
	for _, turn := range turns {
		resp = append(resp, toChatTurnResponse(turn))
	}
	return c.JSON(http.StatusOK, resp)
}

// sendChatMessage stores the user turn, asks the model with the recent
// history and stores the reply. A model failure still yields 200 with the
// apology as the assistant turn.
func (s *APIV1Service) sendChatMessage(c *echo.Context) error {
	user, err := s.requireAuth(c)
	if err != nil {
		return err
	}
	var req chatRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	message, err := validateMessage(req.Message)
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	userTurn, err := s.Store.CreateChatTurn(ctx, &store.CreateChatTurn{
		OwnerID: user.ID,
		Role:    store.RoleUser,
		Content: message,
	})
	if err != nil {
		return s.chatFailed(user, err)
	}

	recent, err := s.Store.ListRecentChatTurns(ctx, user.ID, historyWindow)
	if err != nil {
		return s.chatFailed(user, err)
	}
	reply := s.Model.Generate(ctx, message, formatHistory(recent))

	assistantTurn, err := s.Store.CreateChatTurn(ctx, &store.CreateChatTurn{
		OwnerID: user.ID,
		Role:    store.RoleAssistant,
		Content: reply,
	})
	if err != nil {
		return s.chatFailed(user, err)
	}

	return c.JSON(http.StatusOK, chatExchangeResponse{
		UserMessage: toChatTurnResponse(userTurn),
		AIResponse:  toChatTurnResponse(assistantTurn),
	})
}

func (s *APIV1Service) clearChatTurns(c *echo.Context) error {
	user, err := s.requireAuth(c)
	if err != nil {
		return err
	}
	deleted, err := s.Store.DeleteChatTurns(c.Request().Context(), user.ID)
	if err != nil {
		slog.Error("failed to clear chat turns", slog.Int("user", int(user.ID)), slog.String("error", err.Error()))
		return echo.NewHTTPError(http.StatusInternalServerError, "Error clearing chat history")
	}
	return c.JSON(http.StatusOK, clearChatResponse{Message: "Chat history cleared", Deleted: deleted})
}

func (*APIV1Service) chatFailed(user *store.User, err error) error {
	slog.Error("failed to process chat message", slog.Int("user", int(user.ID)), slog.String("error", err.Error()))
	return echo.NewHTTPError(http.StatusInternalServerError, "Error processing your message")
}

func validateMessage(raw *string) (string, error) {
	if raw == nil {
		return "", echo.NewHTTPError(http.StatusBadRequest, "This field is required.")
	}
	message := strings.TrimSpace(*raw)
	if message == "" {
		return "", echo.NewHTTPError(http.StatusBadRequest, "This field may not be blank.")
	}
	if utf8.RuneCountInString(message) > maxMessageLength {
		return "", echo.NewHTTPError(http.StatusBadRequest, "Ensure this field has no more than 10000 characters.")
	}
	return message, nil
}

func toChatTurnResponse(turn *store.ChatTurn) chatTurnResponse {
	return chatTurnResponse{
		ID:        turn.ID,
		Role:      string(turn.Role),
		Content:   turn.Content,
		CreatedAt: time.Unix(turn.CreatedTs, 0).UTC().Format(time.RFC3339),
	}
}

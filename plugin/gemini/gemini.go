package gemini

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/pkg/errors"
	"google.golang.org/genai"
)

const (
	// DefaultModel is used when Config.Model is empty.
	DefaultModel = "gemini-1.5-flash"

	apologyPrefix = "I apologize, but I'm having trouble processing your request right now. Error: "
)

// ErrMissingAPIKey is returned by NewClient when no credential is configured.
// The server treats it as fatal at startup.
var ErrMissingAPIKey = errors.New("gemini api key is not set")

// Speaker is the author of one exchange as the model API names it.
type Speaker string

const (
	SpeakerUser  Speaker = "user"
	SpeakerModel Speaker = "model"
)

// Exchange is one prior message handed to the model as context.
type Exchange struct {
	Speaker Speaker
	Text    string
}

// Config holds the credential and endpoint of the hosted model.
type Config struct {
	APIKey string
	Model  string
	// BaseURL overrides the public endpoint. Empty uses the SDK default.
	BaseURL string
}

// UpstreamError wraps any failure of the hosted model call.
type UpstreamError struct {
	Model string
	Err   error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("gemini %s: %v", e.Model, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// Client is a synchronous adapter over the Gemini API.
// It is safe for concurrent use and meant to be created once per process.
type Client struct {
	client *genai.Client
	model  string
}

// NewClient creates a client for the configured model.
func NewClient(ctx context.Context, config Config) (*Client, error) {
	if strings.TrimSpace(config.APIKey) == "" {
		return nil, ErrMissingAPIKey
	}
	model := config.Model
	if model == "" {
		model = DefaultModel
	}

	clientConfig := &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if config.BaseURL != "" {
		clientConfig.HTTPOptions = genai.HTTPOptions{BaseURL: config.BaseURL}
	}
	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create genai client")
	}

	return &Client{
		client: client,
		model:  model,
	}, nil
}

// Model returns the model name used for generation.
func (c *Client) Model() string {
	return c.model
}

// Generate sends message to the model, seeded with history when there is any,
// and returns the reply text. It never fails: an upstream error is logged and
// turned into an apology that embeds the error detail.
func (c *Client) Generate(ctx context.Context, message string, history []Exchange) string {
	text, err := c.generate(ctx, message, history)
	if err != nil {
		slog.Error("failed to generate model reply", slog.String("model", c.model), slog.String("error", err.Error()))
		return Apology(err)
	}
	return text
}

func (c *Client) generate(ctx context.Context, message string, history []Exchange) (string, error) {
	var (
		res *genai.GenerateContentResponse
		err error
	)
	if len(history) > 0 {
		chat, chatErr := c.client.Chats.Create(ctx, c.model, nil, toContents(history))
		if chatErr != nil {
			return "", &UpstreamError{Model: c.model, Err: chatErr}
		}
		res, err = chat.SendMessage(ctx, genai.Part{Text: message})
	} else {
		res, err = c.client.Models.GenerateContent(ctx, c.model, genai.Text(message), nil)
	}
	if err != nil {
		return "", &UpstreamError{Model: c.model, Err: err}
	}

	text := res.Text()
	if text == "" {
		return "", &UpstreamError{Model: c.model, Err: errors.New("empty response")}
	}
	return text, nil
}

// Apology renders the reply stored in place of a failed generation.
func Apology(err error) string {
	return apologyPrefix + err.Error()
}

// IsApology reports whether text was produced by Apology.
func IsApology(text string) bool {
	return strings.HasPrefix(text, apologyPrefix)
}

func toContents(history []Exchange) []*genai.Content {
	contents := make([]*genai.Content, 0, len(history))
	for _, exchange := range history {
		var role genai.Role
		switch exchange.Speaker {
		case SpeakerUser:
			role = genai.RoleUser
		case SpeakerModel:
			role = genai.RoleModel
		default:
			continue
		}
		contents = append(contents, genai.NewContentFromText(exchange.Text, role))
	}
	return contents
}

package summary

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/cloudwego/hertz/pkg/common/hlog"
)

type Config struct {
	Enabled    bool   `yaml:"enabled"`
	Model      string `yaml:"model"`
	APIKey     string `yaml:"api_key"`
	BaseURL    string `yaml:"base_url"`
	ByAzure    bool   `yaml:"by_azure"`
	APIVersion string `yaml:"api_version"`
	TimeoutMs  int    `yaml:"timeout_ms"`
}

type generator interface {
	Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error)
}

// Composer phrases the market summary with an LLM when one is configured.
type Composer struct {
	enabled        bool
	model          generator
	modelName      string
	disabledReason string
}

type Input struct {
	Gainers []string `json:"top_gainers"`
	Losers  []string `json:"top_losers"`
}

func New(cfg Config) *Composer {
	if !cfg.Enabled {
		return &Composer{enabled: false, disabledReason: "disabled by config"}
	}
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if cfg.Model == "" {
		cfg.Model = os.Getenv("OPENAI_MODEL")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = os.Getenv("OPENAI_BASE_URL")
	}
	if cfg.APIKey == "" || cfg.Model == "" {
		hlog.Warnf("summary composer disabled: missing api key or model")
		return &Composer{enabled: false, disabledReason: "api_key or model missing"}
	}

	timeout := time.Duration(cfg.TimeoutMs) * time.Millisecond
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	m, err := openai.NewChatModel(context.Background(), &openai.ChatModelConfig{
		APIKey:     cfg.APIKey,
		Model:      cfg.Model,
		BaseURL:    cfg.BaseURL,
		ByAzure:    cfg.ByAzure,
		APIVersion: cfg.APIVersion,
		Timeout:    timeout,
	})
	if err != nil {
		hlog.Errorf("summary composer init error: %v", err)
		return &Composer{enabled: false, disabledReason: "init failed"}
	}
	return &Composer{enabled: true, model: m, modelName: cfg.Model}
}

const systemPrompt = `You write the "Market Summary Today" box of an Indian equities dashboard.
Use only the company names given in the input. Plain text, at most four short sentences.
Mention the strongest gainers and the weakest losers. If a list is empty say nothing was reported for it.
No investment advice, no prices, no markdown headings.`

// Compose returns the LLM summary, or Fallback and the error that forced it.
func (c *Composer) Compose(ctx context.Context, in Input) (string, error) {
	if c == nil || !c.enabled || c.model == nil {
		return Fallback(in.Gainers, in.Losers), nil
	}
	if len(in.Gainers) == 0 && len(in.Losers) == 0 {
		return Fallback(in.Gainers, in.Losers), nil
	}

	payload, _ := json.Marshal(in)
	resp, err := c.model.Generate(ctx, []*schema.Message{
		schema.SystemMessage(systemPrompt),
		schema.UserMessage(fmt.Sprintf("Input: %s", string(payload))),
	})
	if err != nil {
		logLLMError(err)
		return Fallback(in.Gainers, in.Losers), err
	}
	text := ""
	if resp != nil {
		text = strings.TrimSpace(resp.Content)
	}
	if text == "" {
		return Fallback(in.Gainers, in.Losers), errors.New("empty completion")
	}
	return "📊 Market Summary Today:\n\n" + text, nil
}

// Summarize is Compose without the error, for callers that always need text.
func (c *Composer) Summarize(ctx context.Context, gainers, losers []string) string {
	text, _ := c.Compose(ctx, Input{Gainers: gainers, Losers: losers})
	return text
}

func Ping(c *Composer, ctx context.Context) (map[string]any, error) {
	if c == nil || !c.enabled || c.model == nil {
		reason := "not configured"
		if c != nil && c.disabledReason != "" {
			reason = c.disabledReason
		}
		return map[string]any{"ok": true, "mode": "fallback", "reason": reason}, nil
	}
	start := time.Now()
	_, err := c.model.Generate(ctx, []*schema.Message{
		schema.SystemMessage("Reply with the single word: ok"),
		schema.UserMessage("ping"),
	})
	latency := time.Since(start).Milliseconds()
	if err != nil {
		logLLMError(err)
		return map[string]any{"ok": true, "mode": "fallback", "reason": "llm error"}, err
	}
	return map[string]any{"ok": true, "mode": "llm", "model": c.modelName, "latency_ms": latency}, nil
}

// Fallback lists both halves, each with its own empty-result line.
func Fallback(gainers, losers []string) string {
	var b strings.Builder
	b.WriteString("📊 Market Summary Today:\n\n")
	if len(gainers) > 0 {
		b.WriteString("Top Gainers:\n")
		for _, g := range gainers {
			b.WriteString("- " + g + "\n")
		}
	} else {
		b.WriteString("No gainers reported.\n")
	}
	b.WriteString("\n")
	if len(losers) > 0 {
		b.WriteString("Top Losers:\n")
		for _, l := range losers {
			b.WriteString("- " + l + "\n")
		}
	} else {
		b.WriteString("No losers reported.\n")
	}
	return b.String()
}

func logLLMError(err error) {
	apiErr := &openai.APIError{}
	if errors.As(err, &apiErr) {
		msg := apiErr.Message
		if len(msg) > 300 {
			msg = msg[:300] + "..."
		}
		hlog.Errorf("summary api error: status=%d message=%s", apiErr.HTTPStatusCode, msg)
		return
	}
	hlog.Errorf("summary error: %v", err)
}

package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/awano27/fin-news-site/internal/config"
)

// Result holds the output from an LLM summarization call.
type Result struct {
	Summary string
	Tags    []string
}

// Headline is the minimal item data used for theme detection.
type Headline struct {
	Title string
	Type  string
}

// Summarizer condenses article text and finds themes across headlines.
type Summarizer interface {
	Summarize(ctx context.Context, title, text string) (Result, error)
	Themes(ctx context.Context, headlines []Headline) ([]string, error)
}

const (
	claudeEndpoint = "https://api.anthropic.com/v1/messages"
	openaiEndpoint = "https://api.openai.com/v1/chat/completions"
)

// New creates a Summarizer from the given AI config.
func New(cfg *config.AIConfig, apiKey string) (Summarizer, error) {
	return newWithEndpoint(cfg, apiKey, "")
}

func newWithEndpoint(cfg *config.AIConfig, apiKey, endpoint string) (Summarizer, error) {
	if cfg == nil || apiKey == "" {
		return nil, fmt.Errorf("AI not configured")
	}

	client := &http.Client{Timeout: 30 * time.Second}

	switch cfg.Provider {
	case "claude":
		p := &provider{name: "claude", apiKey: apiKey, model: cfg.Model, endpoint: endpoint, client: client, call: callClaude}
		if p.model == "" {
			p.model = "claude-haiku-4-5-20251001"
		}
		if p.endpoint == "" {
			p.endpoint = claudeEndpoint
		}
		return p, nil
	case "openai":
		p := &provider{name: "openai", apiKey: apiKey, model: cfg.Model, endpoint: endpoint, client: client, call: callOpenAI}
		if p.model == "" {
			p.model = "gpt-4o-mini"
		}
		if p.endpoint == "" {
			p.endpoint = openaiEndpoint
		}
		return p, nil
	default:
		return nil, fmt.Errorf("unknown AI provider: %q (valid: claude, openai)", cfg.Provider)
	}
}

const summarizePrompt = `次の金融ニュース記事を日本語で1文(120文字以内)に要約し、最大3つのトピックタグ(例: 決算, 為替, 金利, 半導体, 指数, 開示)を付けてください。

必ず次の形式で回答してください:
SUMMARY: <要約>
TAGS: タグ1, タグ2, タグ3

Title: %s
Text: %s`

const themesPrompt = `以下の金融ニュースの見出しから、市場全体のテーマを2〜4個挙げてください。各テーマは30文字以内。

Headlines:
%s

1行に1テーマで回答し、箇条書き記号や番号は付けないでください。`

func parseSummaryResponse(text string) Result {
	var r Result
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "SUMMARY:") {
			r.Summary = strings.TrimSpace(strings.TrimPrefix(line, "SUMMARY:"))
		} else if strings.HasPrefix(line, "TAGS:") {
			tagStr := strings.TrimSpace(strings.TrimPrefix(line, "TAGS:"))
			for _, t := range strings.FieldsFunc(tagStr, func(r rune) bool { return r == ',' || r == '、' }) {
				t = strings.TrimSpace(strings.ToLower(t))
				if t != "" {
					r.Tags = append(r.Tags, t)
				}
			}
			if len(r.Tags) > 3 {
				r.Tags = r.Tags[:3]
			}
		}
	}
	return r
}

func parseThemes(text string) []string {
	var themes []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		// Strip bullets and numbering
		line = strings.TrimLeft(line, "•-*・")
		line = strings.TrimSpace(line)
		if len(line) > 2 && line[0] >= '0' && line[0] <= '9' {
			for i, c := range line {
				if c == '.' || c == ')' {
					line = strings.TrimSpace(line[i+1:])
					break
				}
				if c < '0' || c > '9' {
					break
				}
			}
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if r := []rune(line); len(r) > 60 {
			line = string(r[:60])
		}
		themes = append(themes, line)
		if len(themes) >= 4 {
			break
		}
	}
	return themes
}

func formatHeadlines(headlines []Headline) string {
	var sb strings.Builder
	for _, h := range headlines {
		sb.WriteString("- ")
		sb.WriteString(h.Title)
		if h.Type != "" {
			sb.WriteString(" [")
			sb.WriteString(h.Type)
			sb.WriteString("]")
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

type provider struct {
	name     string
	apiKey   string
	model    string
	endpoint string
	client   *http.Client
	call     func(ctx context.Context, p *provider, prompt string) (string, error)
}

func (p *provider) Summarize(ctx context.Context, title, text string) (Result, error) {
	if r := []rune(text); len(r) > 4000 {
		text = string(r[:4000])
	}
	out, err := p.call(ctx, p, fmt.Sprintf(summarizePrompt, title, text))
	if err != nil {
		return Result{}, err
	}
	return parseSummaryResponse(out), nil
}

func (p *provider) Themes(ctx context.Context, headlines []Headline) ([]string, error) {
	out, err := p.call(ctx, p, fmt.Sprintf(themesPrompt, formatHeadlines(headlines)))
	if err != nil {
		return nil, err
	}
	return parseThemes(out), nil
}

// post sends body as JSON and decodes a 200 response into out.
func (p *provider) post(ctx context.Context, body any, headers map[string]string, out any) error {
	data, _ := json.Marshal(body)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s API error: %w", p.name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("%s API %d: %s", p.name, resp.StatusCode, string(b))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// --- Claude ---

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type claudeRequest struct {
	Model     string        `json:"model"`
	MaxTokens int           `json:"max_tokens"`
	Messages  []chatMessage `json:"messages"`
}

type claudeResponse struct {
	Content []struct {
		Text string `json:"text"`
	} `json:"content"`
}

func callClaude(ctx context.Context, p *provider, prompt string) (string, error) {
	var cr claudeResponse
	err := p.post(ctx, claudeRequest{
		Model:     p.model,
		MaxTokens: 256,
		Messages:  []chatMessage{{Role: "user", Content: prompt}},
	}, map[string]string{
		"x-api-key":         p.apiKey,
		"anthropic-version": "2023-06-01",
	}, &cr)
	if err != nil {
		return "", err
	}
	if len(cr.Content) == 0 {
		return "", fmt.Errorf("empty claude response")
	}
	return cr.Content[0].Text, nil
}

// --- OpenAI ---

type openaiRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type openaiResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func callOpenAI(ctx context.Context, p *provider, prompt string) (string, error) {
	var or openaiResponse
	err := p.post(ctx, openaiRequest{
		Model:    p.model,
		Messages: []chatMessage{{Role: "user", Content: prompt}},
	}, map[string]string{
		"Authorization": "Bearer " + p.apiKey,
	}, &or)
	if err != nil {
		return "", err
	}
	if len(or.Choices) == 0 {
		return "", fmt.Errorf("empty openai response")
	}
	return or.Choices[0].Message.Content, nil
}

package vocab

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/poiesic/lexis/ai"
	"github.com/poiesic/lexis/core"
)

const (
	// DefaultMinChars is the shortest input, in runes, worth a model call.
	DefaultMinChars = 20

	// DefaultMaxChars is where input is cut before it is sent, in runes.
	DefaultMaxChars = 5000

	defaultMinerTemperature = 0.3
)

const minerSystemPrompt = `你是一名英语词汇教练。用户会给你一段英文文本。
请从中挑出值得学习的词汇，每一项包含：
- headword：原文中的单词或短语
- category：只能是 "word"、"phrase" 或 "contextual-meaning" 之一
- gloss：简明的中文释义；contextual-meaning 要解释它在这段文字里的特别含义
- example：原文中包含该词的句子

挑选标准：
%s

只输出 JSON，格式为 {"items": [{"headword": "...", "category": "...", "gloss": "...", "example": "..."}]}，不要输出任何其他内容。`

// firstList matches the outermost bracketed list in a response.
var firstList = regexp.MustCompile(`(?s)\[.*\]`)

// Miner extracts study items from user text with a chat model.
type Miner struct {
	chat        ai.ChatModel
	minChars    int
	maxChars    int
	temperature float64
	logger      *slog.Logger
}

// MinerOption configures a Miner.
type MinerOption func(*Miner) error

// WithMinChars sets the minimum input length in runes.
func WithMinChars(n int) MinerOption {
	return func(m *Miner) error {
		if n < 1 {
			return fmt.Errorf("min chars must be positive, got %d", n)
		}
		m.minChars = n
		return nil
	}
}

// WithMaxChars sets the truncation length in runes.
func WithMaxChars(n int) MinerOption {
	return func(m *Miner) error {
		if n < 1 {
			return fmt.Errorf("max chars must be positive, got %d", n)
		}
		m.maxChars = n
		return nil
	}
}

// WithMinerTemperature sets the sampling temperature.
func WithMinerTemperature(temperature float64) MinerOption {
	return func(m *Miner) error {
		if temperature < 0 || temperature > 2 {
			return fmt.Errorf("temperature %v outside [0, 2]", temperature)
		}
		m.temperature = temperature
		return nil
	}
}

// NewMiner creates a miner over chat.
func NewMiner(chat ai.ChatModel, opts ...MinerOption) (*Miner, error) {
	if chat == nil {
		return nil, ErrChatModelRequired
	}
	m := &Miner{
		chat:        chat,
		minChars:    DefaultMinChars,
		maxChars:    DefaultMaxChars,
		temperature: defaultMinerTemperature,
		logger:      slog.Default().With("component", "miner"),
	}
	for _, opt := range opts {
		if err := opt(m); err != nil {
			return nil, err
		}
	}
	if m.minChars > m.maxChars {
		return nil, fmt.Errorf("min chars %d exceeds max chars %d", m.minChars, m.maxChars)
	}
	return m, nil
}

// Prepare trims text, enforces the minimum length and truncates it to the
// maximum length. The bool reports truncation.
func (m *Miner) Prepare(text string) (string, bool, error) {
	text = strings.TrimSpace(text)
	if n := utf8.RuneCountInString(text); n < m.minChars {
		return "", false, fmt.Errorf("%w: %d characters, need at least %d", ErrInputTooShort, n, m.minChars)
	}
	runes := []rune(text)
	if len(runes) <= m.maxChars {
		return text, false, nil
	}
	return string(runes[:m.maxChars]), true, nil
}

// Mine asks the model for study items in text, biased by instruction.
// An empty instruction means DefaultInstruction. Mine never fails: errors
// come back in the result with no items.
func (m *Miner) Mine(ctx context.Context, text, instruction string) core.MineResult {
	prepared, truncated, err := m.Prepare(text)
	if err != nil {
		return core.MineResult{Items: []core.MinedItem{}, Err: err}
	}
	if strings.TrimSpace(instruction) == "" {
		instruction = DefaultInstruction()
	}

	raw, err := m.complete(ctx, prepared, instruction)
	if err != nil {
		m.logger.Error("mining request failed", "err", err)
		return core.MineResult{Items: []core.MinedItem{}, Err: err, Truncated: truncated}
	}

	items, err := ParseItems(raw)
	if err != nil {
		m.logger.Warn("unusable mining response", "err", err, "chars", len(raw))
		return core.MineResult{Items: []core.MinedItem{}, Err: err, Truncated: truncated}
	}

	m.logger.Debug("mining complete", "items", len(items), "truncated", truncated)
	return core.MineResult{Items: items, Truncated: truncated}
}

func (m *Miner) complete(ctx context.Context, text, instruction string) (raw string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("chat model panic: %v", r)
		}
	}()
	return m.chat.Complete(ctx, ai.ChatRequest{
		System:      fmt.Sprintf(minerSystemPrompt, instruction),
		User:        text,
		Temperature: m.temperature,
		JSON:        true,
	})
}

// wireItem is the JSON shape requested from the model.
type wireItem struct {
	Headword string `json:"headword"`
	Category string `json:"category"`
	Gloss    string `json:"gloss"`
	Example  string `json:"example"`
}

type envelope struct {
	Items []wireItem `json:"items"`
}

// ParseItems turns a model response into validated items.
//
// The response may be {"items": [...]} or a bare list, optionally inside a
// Markdown code fence. When a strict decode fails the first bracketed list
// found in the text is tried instead. Every item must pass
// core.ValidateMinedItem. Failures are *ParseError.
func ParseItems(raw string) ([]core.MinedItem, error) {
	body := stripFences(raw)
	if body == "" {
		return nil, &ParseError{Stage: "decode", Item: -1, Reason: errors.New("empty response")}
	}

	wire, err := decodeStrict(body)
	if err != nil {
		list := firstList.FindString(body)
		if list == "" {
			return nil, &ParseError{Stage: "decode", Item: -1, Reason: err}
		}
		if lerr := json.Unmarshal([]byte(list), &wire); lerr != nil {
			return nil, &ParseError{Stage: "decode", Item: -1, Reason: lerr}
		}
	}

	items := make([]core.MinedItem, 0, len(wire))
	for i, w := range wire {
		item := core.MinedItem{
			Headword: strings.TrimSpace(w.Headword),
			Category: core.Category(strings.ToLower(strings.TrimSpace(w.Category))),
			Gloss:    strings.TrimSpace(w.Gloss),
			Example:  strings.TrimSpace(w.Example),
		}
		if err := core.ValidateMinedItem(item); err != nil {
			return nil, &ParseError{Stage: "validate", Item: i, Reason: err}
		}
		items = append(items, item)
	}
	return items, nil
}

func decodeStrict(body string) ([]wireItem, error) {
	dec := json.NewDecoder(bytes.NewBufferString(body))
	dec.DisallowUnknownFields()

	if strings.HasPrefix(body, "[") {
		var list []wireItem
		if err := dec.Decode(&list); err != nil {
			return nil, err
		}
		return list, trailing(dec)
	}

	var env envelope
	if err := dec.Decode(&env); err != nil {
		return nil, err
	}
	if env.Items == nil {
		return nil, errors.New(`missing "items" list`)
	}
	return env.Items, trailing(dec)
}

// trailing rejects anything after the first JSON value.
func trailing(dec *json.Decoder) error {
	if dec.More() {
		return errors.New("unexpected data after JSON value")
	}
	return nil
}

// stripFences removes a surrounding Markdown code fence.
func stripFences(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	} else {
		s = strings.TrimPrefix(s, "```")
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// ABOUTME: Token budget that keeps the context section under a configured size
// ABOUTME: Counts with tiktoken cl100k_base, falling back to a 4-chars-per-token estimate
package interpreter

import (
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/pkoukk/tiktoken-go"
)

const encodingName = "cl100k_base"

// The first load fetches the BPE file over HTTP unless TIKTOKEN_CACHE_DIR
// already holds it.
var (
	getEncoding         = tiktoken.GetEncoding
	encodingLoadTimeout = 5 * time.Second
)

// Counter returns the token count of a string
type Counter func(string) int

// EstimateTokens approximates tokens as one per four characters
func EstimateTokens(s string) int {
	return (len(s) + 3) / 4
}

// Budget trims prompt context to MaxTokens
type Budget struct {
	MaxTokens int

	once  sync.Once
	count Counter
}

// NewBudget creates a budget that counts with tiktoken once the encoding loads
func NewBudget(maxTokens int) *Budget {
	return &Budget{MaxTokens: maxTokens}
}

// NewBudgetWithCounter creates a budget with an explicit counter
func NewBudgetWithCounter(maxTokens int, count Counter) *Budget {
	b := &Budget{MaxTokens: maxTokens, count: count}
	b.once.Do(func() {})
	return b
}

// Preload loads the encoding now instead of on the first Count
func (b *Budget) Preload() {
	if b != nil {
		b.once.Do(b.loadEncoding)
	}
}

// Count returns the token count of s
func (b *Budget) Count(s string) int {
	b.once.Do(b.loadEncoding)
	return b.count(s)
}

type encodingResult struct {
	enc *tiktoken.Tiktoken
	err error
}

func (b *Budget) loadEncoding() {
	load := getEncoding
	done := make(chan encodingResult, 1)
	go func() {
		enc, err := load(encodingName)
		done <- encodingResult{enc: enc, err: err}
	}()

	var enc *tiktoken.Tiktoken
	var err error
	select {
	case res := <-done:
		enc, err = res.enc, res.err
	case <-time.After(encodingLoadTimeout):
		err = errors.New("timed out loading encoding")
	}
	if err != nil {
		slog.Warn("tiktoken encoding unavailable, estimating tokens", "encoding", encodingName, "error", err)
		b.count = EstimateTokens
		return
	}
	b.count = func(s string) int {
		return len(enc.Encode(s, nil, nil))
	}
}

// Fit returns context trimmed to the budget. Sections (separated by blank
// lines) are kept in order; the first section that does not fit is cut
// line by line and everything after it is dropped.
func (b *Budget) Fit(context string) string {
	if b == nil || b.MaxTokens <= 0 || b.Count(context) <= b.MaxTokens {
		return context
	}

	var kept []string
	used := 0
	for _, section := range strings.Split(context, "\n\n") {
		cost := b.Count(section)
		if used+cost <= b.MaxTokens {
			kept = append(kept, section)
			used += cost
			continue
		}

		lines := strings.Split(section, "\n")
		var partial []string
		for _, line := range lines {
			c := b.Count(line)
			if used+c > b.MaxTokens {
				break
			}
			partial = append(partial, line)
			used += c
		}
		// A header with no items is noise
		if len(partial) > 1 {
			kept = append(kept, strings.Join(partial, "\n"))
		}
		break
	}

	if len(kept) == 0 {
		return NoHistory
	}
	slog.Debug("context trimmed to budget", "max_tokens", b.MaxTokens, "used", used)
	return strings.Join(kept, "\n\n")
}

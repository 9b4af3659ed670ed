// ABOUTME: Runner replays a conversation set through the session service
// ABOUTME: Failed messages are recorded and the run continues with the next one
package demo

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/harper/confidant/internal/models"
	"github.com/harper/confidant/internal/session"
)

// Result is the outcome of one replayed message
type Result struct {
	Index          int                  `json:"index"`
	Message        string               `json:"message"`
	Response       string               `json:"response,omitempty"`
	MemoriesStored int                  `json:"memories_stored"`
	Unlocked       []models.Achievement `json:"unlocked,omitempty"`
	Error          string               `json:"error,omitempty"`
}

// Report summarises a whole run
type Report struct {
	SetID     string    `json:"set_id"`
	UserKey   string    `json:"user_key"`
	StartedAt time.Time `json:"started_at"`
	Duration  string    `json:"duration"`
	Succeeded int       `json:"succeeded"`
	Failed    int       `json:"failed"`
	Results   []Result  `json:"results"`
}

// Runner executes conversation sets
type Runner struct {
	sessions *session.Service
	// Progress is called after every message when set
	Progress func(total int, r Result)
	sleep    func(context.Context, time.Duration) error
}

// NewRunner creates a runner over sessions
func NewRunner(sessions *session.Service) *Runner {
	return &Runner{sessions: sessions, sleep: sleepContext}
}

// Run replays set for userKey. An empty userKey uses the set's default, or
// a generated key when the set has none. Only context cancellation aborts
// the run; message failures are reported per result.
func (r *Runner) Run(ctx context.Context, set ConversationSet, userKey string) (*Report, error) {
	start := time.Now()
	if userKey == "" {
		userKey = set.UserKey
	}
	if userKey == "" {
		userKey = NewUserKey(set.ID, start)
	}

	report := &Report{
		SetID:     set.ID,
		UserKey:   userKey,
		StartedAt: start,
		Results:   make([]Result, 0, len(set.Messages)),
	}
	log := slog.With("set", set.ID, "user", userKey)

	for i, message := range set.Messages {
		if i > 0 && set.Delay > 0 {
			if err := r.sleep(ctx, set.Delay); err != nil {
				return report, err
			}
		}

		res := Result{Index: i + 1, Message: message}
		turn, err := r.sessions.ProcessInput(ctx, userKey, message)
		if err != nil {
			if ctx.Err() != nil {
				return report, ctx.Err()
			}
			log.Warn("demo message failed", "index", res.Index, "error", err)
			res.Error = err.Error()
			report.Failed++
		} else {
			res.Response = turn.Response
			res.MemoriesStored = turn.MemoriesStored
			res.Unlocked = turn.Unlocked
			report.Succeeded++
		}

		report.Results = append(report.Results, res)
		if r.Progress != nil {
			r.Progress(len(set.Messages), res)
		}
	}

	report.Duration = time.Since(start).Round(time.Millisecond).String()
	log.Info("demo set replayed", "succeeded", report.Succeeded, "failed", report.Failed)
	return report, nil
}

// WriteReport writes report as indented JSON
func WriteReport(path string, report *Report) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write report file: %w", err)
	}
	return nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

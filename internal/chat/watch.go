package chat

import (
	"context"
	"strconv"
	"time"

	"staging-pro-backend/internal/models"
)

// Update is one emission of Watch. Err is set when a poll failed; the
// watch keeps polling after an error.
type Update struct {
	Messages []models.Message
	Err      error
}

// Watch polls the thread every interval and emits it whenever it changed
// since the last emission. The first poll always emits. The channel is
// closed when ctx is done.
func (s *Service) Watch(ctx context.Context, submissionID string, interval time.Duration) <-chan Update {
	out := make(chan Update)

	go func() {
		defer close(out)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		var last string
		first := true
		for {
			msgs, err := s.List(ctx, submissionID)
			switch {
			case err != nil:
				if !send(ctx, out, Update{Err: err}) {
					return
				}
			case first || fingerprint(msgs) != last:
				first = false
				last = fingerprint(msgs)
				if !send(ctx, out, Update{Messages: msgs}) {
					return
				}
			}

			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()

	return out
}

func send(ctx context.Context, out chan<- Update, u Update) bool {
	select {
	case out <- u:
		return true
	case <-ctx.Done():
		return false
	}
}

// fingerprint identifies a thread state. The log is append-only, so the
// count and newest id are enough.
func fingerprint(msgs []models.Message) string {
	if len(msgs) == 0 {
		return "0"
	}
	return strconv.Itoa(len(msgs)) + "/" + msgs[len(msgs)-1].ID
}

package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/enyard/portal/internal/client/api"
	"github.com/enyard/portal/internal/client/storage"
)

// ErrLoginRequired is returned by SubmitWaitingList when no session exists.
// The form has been saved; after login, ResubmitPendingWaitingList sends it
// automatically.
var ErrLoginRequired = errors.New("please login or register first")

// SubmitWaitingList signs the user up for the product waiting list. Without
// an authenticated session the form is persisted across the login redirect
// instead of being sent.
func (p *Pipeline) SubmitWaitingList(ctx context.Context, req api.WaitingListRequest) error {
	if !p.store.IsAuthenticated() {
		raw, err := json.Marshal(req)
		if err != nil {
			return fmt.Errorf("failed to encode form: %w", err)
		}
		if err := p.repo.Set(ctx, storage.KeyWaitingListForm, raw); err != nil {
			return fmt.Errorf("failed to save form: %w", err)
		}
		return ErrLoginRequired
	}

	if err := p.api.JoinWaitingList(ctx, req); err != nil {
		p.tracker.TrackFormSubmit(ctx, "waiting_list", "/penquin", false, nil)
		return err
	}
	p.tracker.TrackFormSubmit(ctx, "waiting_list", "/penquin", true, nil)

	// A stale saved copy must not resubmit later.
	if err := p.repo.Delete(ctx, storage.KeyWaitingListForm); err != nil {
		p.log.Warn(ctx, "failed to clear saved waiting-list form", "error", err)
	}
	return nil
}

// ResubmitPendingWaitingList sends a form saved before an auth redirect.
// The saved copy is cleared only on success, so a failed resubmission can be
// retried; returns whether a pending form was found and submitted.
func (p *Pipeline) ResubmitPendingWaitingList(ctx context.Context) (bool, error) {
	raw, err := p.repo.Get(ctx, storage.KeyWaitingListForm)
	if err != nil {
		return false, err
	}
	if len(raw) == 0 {
		return false, nil
	}

	var req api.WaitingListRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		// An unreadable saved form can never resubmit; drop it.
		_ = p.repo.Delete(ctx, storage.KeyWaitingListForm)
		return false, fmt.Errorf("failed to decode saved form: %w", err)
	}

	if err := p.api.JoinWaitingList(ctx, req); err != nil {
		return false, err
	}
	p.tracker.TrackFormSubmit(ctx, "waiting_list", "/penquin", true, map[string]any{"resubmitted": true})

	if err := p.repo.Delete(ctx, storage.KeyWaitingListForm); err != nil {
		p.log.Warn(ctx, "failed to clear saved waiting-list form", "error", err)
	}
	return true, nil
}

// CancelPendingWaitingList discards a saved form without sending it.
func (p *Pipeline) CancelPendingWaitingList(ctx context.Context) error {
	return p.repo.Delete(ctx, storage.KeyWaitingListForm)
}

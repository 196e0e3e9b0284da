package session

import (
	"context"

	"github.com/ukaji3/sheetchart-go/pkg/sheetchart/models"
	"github.com/ukaji3/sheetchart-go/pkg/sheetchart/series"
)

// ReplayRequest asks a session to reload a stored upload.
type ReplayRequest struct {
	Base64 string `json:"base64"`
	Name   string `json:"name"`
}

// Entry converts the request to a history entry suitable for Replay.
func (r ReplayRequest) Entry() models.HistoryEntry {
	return models.HistoryEntry{Name: r.Name, Payload: r.Base64}
}

// Handoff is a single-slot mailbox carrying a replay request from the
// history view to the upload view. A request is consumed at most once.
type Handoff struct {
	slot chan ReplayRequest
}

// NewHandoff creates an empty Handoff.
func NewHandoff() *Handoff {
	return &Handoff{slot: make(chan ReplayRequest, 1)}
}

// Offer places req in the slot, replacing any request not yet taken.
func (h *Handoff) Offer(req ReplayRequest) {
	for {
		select {
		case h.slot <- req:
			return
		default:
		}
		select {
		case <-h.slot:
		default:
		}
	}
}

// Take removes and returns the pending request, if any.
func (h *Handoff) Take() (ReplayRequest, bool) {
	select {
	case req := <-h.slot:
		return req, true
	default:
		return ReplayRequest{}, false
	}
}

// ConsumeHandoff replays the pending request in h, if there is one.
// ok is false when the slot was empty.
func (c *Controller) ConsumeHandoff(ctx context.Context, h *Handoff) (res series.Result, ok bool, err error) {
	req, ok := h.Take()
	if !ok {
		return series.Result{}, false, nil
	}
	res, err = c.Replay(ctx, req.Entry())
	return res, true, err
}

package httpx

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/ariefcatur/go-storefront/internal/auth"
)

// streamOrders pushes orders-changed events as server-sent events until the
// client goes away. Views refetch whatever they display when one arrives.
// Customers only hear about their own orders.
func (h *Handlers) streamOrders(w http.ResponseWriter, r *http.Request) {
	id := auth.FromContext(r.Context())
	fl, ok := w.(http.Flusher)
	if !ok {
		writeProblem(w, r, Problem{Status: http.StatusInternalServerError, Detail: "streaming unsupported"})
		return
	}
	ch, cancel := h.Bus.Subscribe()
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "retry: 3000\n: version %d\n\n", h.Bus.Version())
	fl.Flush()

	every := h.Heartbeat
	if every <= 0 {
		every = 25 * time.Second
	}
	tick := time.NewTicker(every)
	defer tick.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-tick.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
			fl.Flush()
		case e, ok := <-ch:
			if !ok {
				return
			}
			if !e.VisibleTo(id.Subject, id.IsAdmin()) {
				continue
			}
			b, err := json.Marshal(e)
			if err != nil {
				h.log().Warn("encode event", "event_id", e.ID, "err", err)
				continue
			}
			if _, err := fmt.Fprintf(w, "id: %d\nevent: %s\ndata: %s\n\n", e.Version, e.Kind, b); err != nil {
				return
			}
			fl.Flush()
		}
	}
}

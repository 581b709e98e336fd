package web

import (
	"fmt"
	"net/http"
	"time"

	"github.com/starfederation/datastar-go/datastar"
)

const streamKeepAlive = 25 * time.Second

// handleBoardStream pushes the caller's board as Datastar signals, once on connect and
// again after every write by the same user.
func (s *Server) handleBoardStream(w http.ResponseWriter, r *http.Request, user string) {
	if _, err := listParamsFromQuery(r); err != nil {
		s.writeError(w, r, err)
		return
	}

	ch, cancel := s.hubs.hubFor(user).subscribe()
	defer cancel()

	sse := datastar.NewSSE(w, r)
	send := func() {
		b, err := s.loadBoard(r, user)
		if err != nil {
			_ = sse.ExecuteScript(fmt.Sprintf(`console.error(%q)`, err.Error()))
			return
		}
		_ = sse.MarshalAndPatchSignals(map[string]any{
			"board": b,
			"count": b.Count(),
		})
	}
	send()

	keepAlive := time.NewTicker(streamKeepAlive)
	defer keepAlive.Stop()

	for {
		select {
		case <-sse.Context().Done():
			return
		case <-keepAlive.C:
			_ = sse.PatchSignals([]byte(`{}`))
		case <-ch:
			send()
		}
	}
}

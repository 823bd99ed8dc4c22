package server

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/sidequests/questd/internal/model"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The feed is read-only public data, any origin may subscribe.
	CheckOrigin: func(r *http.Request) bool { return true },
}

const writeTimeout = 10 * time.Second

type eventMessage struct {
	ID              string `json:"id"`
	Type            string `json:"type"`
	At              string `json:"at"`
	TaskID          uint64 `json:"task_id,omitempty"`
	User            string `json:"user,omitempty"`
	Metadata        string `json:"metadata,omitempty"`
	AchievementType uint64 `json:"achievement_type,omitempty"`
	AssetID         uint64 `json:"asset_id,omitempty"`
}

// handleEvents upgrades the connection and streams committed marketplace
// events until the client disconnects.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warningf("could not upgrade event feed connection: %v", err)
		return
	}

	events, cancel := s.cfg.Notifier.Subscribe()
	defer cancel()

	// Drain client messages so pings and close frames are processed.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
	defer conn.Close()

	for {
		select {
		case <-done:
			return
		case e, ok := <-events:
			if !ok {
				return
			}

			if err := conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
				return
			}
			if err := conn.WriteJSON(newEventMessage(e)); err != nil {
				return
			}
		}
	}
}

func newEventMessage(e model.Event) eventMessage {
	return eventMessage{
		ID:              e.ID,
		Type:            string(e.Type),
		At:              e.At.UTC().Format(time.RFC3339Nano),
		TaskID:          e.TaskID,
		User:            e.User,
		Metadata:        e.Metadata,
		AchievementType: uint64(e.AchievementType),
		AssetID:         e.AssetID,
	}
}

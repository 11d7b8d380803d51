package snapshot

import (
	"errors"
	"net/http"
	"time"

	"github.com/Shariar-hash/WheellWise/internal/config"
	"github.com/Shariar-hash/WheellWise/internal/http-server/model"
	resp "github.com/Shariar-hash/WheellWise/internal/lib/api/response"
	"github.com/Shariar-hash/WheellWise/internal/lib/logger/sl"
	"github.com/Shariar-hash/WheellWise/internal/repository"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/patrickmn/go-cache"
	"golang.org/x/exp/slog"
)

type Response struct {
	resp.Response
	Room     *model.Room         `json:"room,omitempty"`
	Messages []model.ChatMessage `json:"messages,omitempty"`
}

type RoomGetter interface {
	GetRoomByCode(code string) (*model.Room, error)
}

type ChatGetter interface {
	GetRecentMessages(roomCode string, limit int) ([]model.ChatMessage, error)
}

const chatHistoryLimit = 50

// Snapshot serves the poll-mode read path. Snapshots are cached for
// half a poll interval so a room full of pollers costs one query per
// tick, not one per client.
type Snapshot struct {
	log   *slog.Logger
	rooms RoomGetter
	chats ChatGetter
	cache *cache.Cache
}

func New(log *slog.Logger, rooms RoomGetter, chats ChatGetter, feedCfg config.Feed) *Snapshot {
	return &Snapshot{
		log:   log,
		rooms: rooms,
		chats: chats,
		cache: cache.New(feedCfg.RoomPollInterval/2, time.Minute),
	}
}

func (s *Snapshot) New() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.room.snapshot.New"

		log := s.log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		code := chi.URLParam(r, "code")

		if cached, found := s.cache.Get(code); found {
			render.JSON(w, r, cached.(Response))

			return
		}

		current, err := s.rooms.GetRoomByCode(code)
		if err != nil {
			if errors.Is(err, repository.ErrRoomNotFound) {
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, resp.Error("room not found", http.StatusNotFound))

				return
			}

			log.Error("failed to get room", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error("failed to load room", http.StatusInternalServerError))

			return
		}

		messages, err := s.chats.GetRecentMessages(code, chatHistoryLimit)
		if err != nil {
			log.Error("failed to load chat history", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error("failed to load room", http.StatusInternalServerError))

			return
		}

		response := Response{
			Response: resp.OK(),
			Room:     current,
			Messages: messages,
		}

		s.cache.Set(code, response, cache.DefaultExpiration)

		render.JSON(w, r, response)
	}
}

package send

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/Shariar-hash/WheellWise/internal/feed"
	"github.com/Shariar-hash/WheellWise/internal/http-server/model"
	resp "github.com/Shariar-hash/WheellWise/internal/lib/api/response"
	"github.com/Shariar-hash/WheellWise/internal/lib/logger/sl"
	"github.com/Shariar-hash/WheellWise/internal/repository"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
	"golang.org/x/exp/slog"
)

type Request struct {
	Name    string `json:"name" validate:"required,min=1,max=32"`
	Email   string `json:"email,omitempty" validate:"omitempty,email"`
	Image   string `json:"image,omitempty"`
	Message string `json:"message" validate:"required,max=500"`
}

type Response struct {
	resp.Response
}

type MessageSaver interface {
	SaveMessage(message model.ChatMessage) (int64, error)
}

type RoomGetter interface {
	GetRoomByCode(code string) (*model.Room, error)
}

type Send struct {
	log       *slog.Logger
	validator *validator.Validate
	rooms     RoomGetter
	chats     MessageSaver
	publisher feed.Publisher
}

func New(log *slog.Logger, rooms RoomGetter, chats MessageSaver, publisher feed.Publisher) *Send {
	return &Send{
		log:       log,
		validator: validator.New(),
		rooms:     rooms,
		chats:     chats,
		publisher: publisher,
	}
}

func (s *Send) New() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.chat.send.New"

		log := s.log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		code := chi.URLParam(r, "code")

		var req Request

		err := render.DecodeJSON(r.Body, &req)
		if err != nil {
			log.Error("failed to decode request body", sl.Err(err))

			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.Error("failed to decode request body", http.StatusBadRequest))

			return
		}

		if err = s.validator.Struct(req); err != nil {
			validateErr := err.(validator.ValidationErrors)

			log.Error("invalid request", sl.Err(err))

			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.ValidationError(validateErr))

			return
		}

		text := strings.TrimSpace(req.Message)
		if text == "" {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.Error("message is empty", http.StatusBadRequest))

			return
		}

		if _, err = s.rooms.GetRoomByCode(code); err != nil {
			if errors.Is(err, repository.ErrRoomNotFound) {
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, resp.Error("room not found", http.StatusNotFound))

				return
			}

			log.Error("failed to get room", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error("failed to send message", http.StatusInternalServerError))

			return
		}

		message := model.ChatMessage{
			RoomCode:    code,
			SenderName:  req.Name,
			SenderEmail: req.Email,
			SenderImage: req.Image,
			Message:     text,
			CreatedAt:   time.Now(),
		}

		id, err := s.chats.SaveMessage(message)
		if err != nil {
			log.Error("failed to save message", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error("failed to send message", http.StatusInternalServerError))

			return
		}

		message.ID = id

		if s.publisher != nil {
			s.publisher.Publish(code, feed.Event{Type: feed.ChatAppended, Message: &message})
		}

		render.JSON(w, r, Response{Response: resp.OK()})
	}
}

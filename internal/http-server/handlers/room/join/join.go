package join

import (
	"errors"
	"net/http"

	"github.com/Shariar-hash/WheellWise/internal/http-server/model"
	resp "github.com/Shariar-hash/WheellWise/internal/lib/api/response"
	"github.com/Shariar-hash/WheellWise/internal/lib/logger/sl"
	"github.com/Shariar-hash/WheellWise/internal/repository"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
	"golang.org/x/exp/slog"
)

type Request struct {
	RoomCode string `json:"room_code" validate:"required,len=6"`
	Name     string `json:"name" validate:"required,min=1,max=32"`
}

type Response struct {
	resp.Response
	RoomCode string `json:"room_code,omitempty"`
	Name     string `json:"name,omitempty"`
}

type RoomGetter interface {
	GetRoomByCode(code string) (*model.Room, error)
}

// Join is a lightweight existence check. The participant list is
// mutated by the realtime session flow, not here.
type Join struct {
	log       *slog.Logger
	validator *validator.Validate
	rooms     RoomGetter
}

func New(log *slog.Logger, rooms RoomGetter) *Join {
	return &Join{
		log:       log,
		validator: validator.New(),
		rooms:     rooms,
	}
}

func (j *Join) New() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.room.join.New"

		log := j.log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var req Request

		err := render.DecodeJSON(r.Body, &req)
		if err != nil {
			log.Error("failed to decode request body", sl.Err(err))

			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.Error("failed to decode request body", http.StatusBadRequest))

			return
		}

		if err = j.validator.Struct(req); err != nil {
			validateErr := err.(validator.ValidationErrors)

			log.Error("invalid request", sl.Err(err))

			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.ValidationError(validateErr))

			return
		}

		if _, err = j.rooms.GetRoomByCode(req.RoomCode); err != nil {
			if errors.Is(err, repository.ErrRoomNotFound) {
				log.Info("room not found", slog.String("room_code", req.RoomCode))

				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, resp.Error("room not found", http.StatusNotFound))

				return
			}

			log.Error("failed to get room", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error("failed to join room", http.StatusInternalServerError))

			return
		}

		log.Info("join acknowledged",
			slog.String("room_code", req.RoomCode),
			slog.String("name", req.Name))

		render.JSON(w, r, Response{
			Response: resp.OK(),
			RoomCode: req.RoomCode,
			Name:     req.Name,
		})
	}
}

package create

import (
	"errors"
	"net/http"

	"github.com/Shariar-hash/WheellWise/internal/http-server/model"
	resp "github.com/Shariar-hash/WheellWise/internal/lib/api/response"
	"github.com/Shariar-hash/WheellWise/internal/lib/logger/sl"
	"github.com/Shariar-hash/WheellWise/internal/lib/random"
	"github.com/Shariar-hash/WheellWise/internal/room"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
	"golang.org/x/exp/slog"
)

var ErrCodeGenerationExhausted = errors.New("failed to generate a unique room code")

const maxCodeAttempts = 10

type Request struct {
	HostName  string `json:"host_name" validate:"required,min=1,max=32"`
	HostEmail string `json:"host_email,omitempty" validate:"omitempty,email"`
}

type Response struct {
	resp.Response
	RoomCode string `json:"room_code,omitempty"`
	HostName string `json:"host_name,omitempty"`
}

type RoomSaver interface {
	CodeExists(code string) (bool, error)
	SaveRoom(room model.Room) (int64, error)
}

type Create struct {
	log       *slog.Logger
	validator *validator.Validate
	rooms     RoomSaver
}

func New(log *slog.Logger, rooms RoomSaver) *Create {
	return &Create{
		log:       log,
		validator: validator.New(),
		rooms:     rooms,
	}
}

func (c *Create) New() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.room.create.New"

		log := c.log.With(
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

		if err = c.validator.Struct(req); err != nil {
			validateErr := err.(validator.ValidationErrors)

			log.Error("invalid request", sl.Err(err))

			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.ValidationError(validateErr))

			return
		}

		code, err := c.generateUniqueCode()
		if err != nil {
			log.Error("failed to generate room code", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error("failed to generate room code", http.StatusInternalServerError))

			return
		}

		newRoom := model.Room{
			Code:         code,
			OwnerName:    req.HostName,
			OwnerEmail:   req.HostEmail,
			Participants: []string{req.HostName},
			Options:      room.DefaultOptions(),
		}

		if _, err = c.rooms.SaveRoom(newRoom); err != nil {
			log.Error("failed to save room", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error("failed to create room", http.StatusInternalServerError))

			return
		}

		log.Info("room created", slog.String("room_code", code))

		render.JSON(w, r, Response{
			Response: resp.OK(),
			RoomCode: code,
			HostName: req.HostName,
		})
	}
}

func (c *Create) generateUniqueCode() (string, error) {
	const op = "handlers.room.create.generateUniqueCode"

	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code := random.NewRoomCode()

		exists, err := c.rooms.CodeExists(code)
		if err != nil {
			return "", err
		}

		if !exists {
			return code, nil
		}

		c.log.Debug("room code collision, retrying",
			slog.String("op", op),
			slog.String("room_code", code),
			slog.Int("attempt", attempt+1))
	}

	return "", ErrCodeGenerationExhausted
}

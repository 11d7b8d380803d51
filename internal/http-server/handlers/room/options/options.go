package options

import (
	"errors"
	"net/http"
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
	"github.com/google/uuid"
	"golang.org/x/exp/slog"
)

type Request struct {
	Name    string          `json:"name" validate:"required,min=1,max=32"`
	Email   string          `json:"email,omitempty" validate:"omitempty,email"`
	Options []OptionRequest `json:"options" validate:"required,min=1,max=50,dive"`
}

type OptionRequest struct {
	ID     string  `json:"id,omitempty"`
	Label  string  `json:"label" validate:"required,min=1,max=64"`
	Color  string  `json:"color" validate:"required"`
	Weight float64 `json:"weight" validate:"omitempty,min=0,max=10"`
	Count  int     `json:"count" validate:"omitempty,min=0,max=5"`
}

type Response struct {
	resp.Response
}

type OptionsUpdater interface {
	GetRoomByCode(code string) (*model.Room, error)
	UpdateOptions(code string, options []model.WheelOption) error
}

type Options struct {
	log       *slog.Logger
	validator *validator.Validate
	rooms     OptionsUpdater
	publisher feed.Publisher
}

func New(log *slog.Logger, rooms OptionsUpdater, publisher feed.Publisher) *Options {
	return &Options{
		log:       log,
		validator: validator.New(),
		rooms:     rooms,
		publisher: publisher,
	}
}

func (o *Options) New() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.room.options.New"

		log := o.log.With(
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

		if err = o.validator.Struct(req); err != nil {
			validateErr := err.(validator.ValidationErrors)

			log.Error("invalid request", sl.Err(err))

			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.ValidationError(validateErr))

			return
		}

		current, err := o.rooms.GetRoomByCode(code)
		if err != nil {
			if errors.Is(err, repository.ErrRoomNotFound) {
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, resp.Error("room not found", http.StatusNotFound))

				return
			}

			log.Error("failed to get room", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error("failed to update options", http.StatusInternalServerError))

			return
		}

		if !isOwner(current, req.Name, req.Email) {
			render.Status(r, http.StatusForbidden)
			render.JSON(w, r, resp.Error("only the room owner can edit options", http.StatusForbidden))

			return
		}

		updated := make([]model.WheelOption, 0, len(req.Options))
		for _, option := range req.Options {
			id := option.ID
			if id == "" {
				id = uuid.New().String()
			}

			updated = append(updated, model.WheelOption{
				ID:     id,
				Label:  option.Label,
				Color:  option.Color,
				Weight: option.Weight,
				Count:  option.Count,
			})
		}

		if err = o.rooms.UpdateOptions(code, updated); err != nil {
			log.Error("failed to update options", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error("failed to update options", http.StatusInternalServerError))

			return
		}

		log.Info("wheel options updated",
			slog.String("room_code", code),
			slog.Int("options", len(updated)))

		if o.publisher != nil {
			snapshot := *current
			snapshot.Options = updated
			snapshot.UpdatedAt = time.Now()

			o.publisher.Publish(code, feed.Event{Type: feed.RoomUpdated, Room: &snapshot})
		}

		render.JSON(w, r, Response{Response: resp.OK()})
	}
}

func isOwner(current *model.Room, name string, email string) bool {
	if email != "" && email == current.OwnerEmail {
		return true
	}

	return name == current.OwnerName
}

package spin

import (
	"errors"
	"net/http"

	"github.com/Shariar-hash/WheellWise/internal/http-server/model"
	resp "github.com/Shariar-hash/WheellWise/internal/lib/api/response"
	"github.com/Shariar-hash/WheellWise/internal/lib/logger/sl"
	"github.com/Shariar-hash/WheellWise/internal/repository"
	"github.com/Shariar-hash/WheellWise/internal/room"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
	"golang.org/x/exp/slog"
)

type Request struct {
	Name  string `json:"name" validate:"required,min=1,max=32"`
	Email string `json:"email,omitempty" validate:"omitempty,email"`
}

type Response struct {
	resp.Response
	Result string `json:"result,omitempty"`
}

type RoomGetter interface {
	GetRoomByCode(code string) (*model.Room, error)
}

type Spinner interface {
	Spin(code string, actor string) (*model.SpinEvent, error)
}

type Spin struct {
	log         *slog.Logger
	validator   *validator.Validate
	rooms       RoomGetter
	coordinator Spinner
}

func New(log *slog.Logger, rooms RoomGetter, coordinator Spinner) *Spin {
	return &Spin{
		log:         log,
		validator:   validator.New(),
		rooms:       rooms,
		coordinator: coordinator,
	}
}

func (s *Spin) New() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.room.spin.New"

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

		current, err := s.rooms.GetRoomByCode(code)
		if err != nil {
			if errors.Is(err, repository.ErrRoomNotFound) {
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, resp.Error("room not found", http.StatusNotFound))

				return
			}

			log.Error("failed to get room", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error("failed to spin", http.StatusInternalServerError))

			return
		}

		// advisory owner check, same precedence the session applies
		if !isOwner(current, req.Name, req.Email) {
			log.Info("non-owner spin rejected",
				slog.String("room_code", code),
				slog.String("name", req.Name))

			render.Status(r, http.StatusForbidden)
			render.JSON(w, r, resp.Error("only the room owner can spin", http.StatusForbidden))

			return
		}

		spinEvent, err := s.coordinator.Spin(code, req.Name)
		if err != nil {
			switch {
			case errors.Is(err, room.ErrAlreadySpinning):
				render.Status(r, http.StatusConflict)
				render.JSON(w, r, resp.Error("a spin is already running", http.StatusConflict))
			case errors.Is(err, room.ErrNoOptions):
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, resp.Error("the wheel has no options to spin", http.StatusBadRequest))
			default:
				log.Error("spin failed", sl.Err(err))

				render.Status(r, http.StatusInternalServerError)
				render.JSON(w, r, resp.Error("failed to spin", http.StatusInternalServerError))
			}

			return
		}

		render.JSON(w, r, Response{
			Response: resp.OK(),
			Result:   spinEvent.Result,
		})
	}
}

func isOwner(current *model.Room, name string, email string) bool {
	if email != "" && email == current.OwnerEmail {
		return true
	}

	return name == current.OwnerName
}

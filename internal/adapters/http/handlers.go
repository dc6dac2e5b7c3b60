package http

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/lottery-system/backend/internal/domain/entities"
	"github.com/lottery-system/backend/internal/infrastructure/logger"
	"github.com/lottery-system/backend/internal/ports"
)

// OptionsHandler exposes the options store to the UI
type OptionsHandler struct {
	optionsService ports.OptionsService
	logger         *logger.Logger
}

// NewOptionsHandler creates a new options handler
func NewOptionsHandler(optionsService ports.OptionsService, logger *logger.Logger) *OptionsHandler {
	return &OptionsHandler{
		optionsService: optionsService,
		logger:         logger,
	}
}

// Invoke dispatches a named command the way the desktop shell routes UI calls
// @Summary Invoke a command
// @Tags Commands
// @Param command path string true "save_options or get_options"
// @Router /invoke/{command} [post]
func (h *OptionsHandler) Invoke(c echo.Context) error {
	switch name := c.Param("command"); name {
	case ports.CommandSaveOptions:
		return h.SaveOptions(c)
	case ports.CommandGetOptions:
		return h.GetOptions(c)
	default:
		return echo.NewHTTPError(http.StatusNotFound, fmt.Errorf("%w: %s", entities.ErrUnknownCommand, name).Error())
	}
}

// SaveOptions handles the save_options command: {"options": {"groups": ...}}
func (h *OptionsHandler) SaveOptions(c echo.Context) error {
	var req ports.SaveOptionsRequest
	if err := c.Bind(&req); err != nil {
		return bindError(err)
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "missing required argument `options`")
	}

	if err := h.save(c, req.Options); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, nil)
}

// GetOptions handles the get_options command and the REST read
// @Summary Get stored options
// @Tags Options
// @Produce json
// @Router /options [get]
func (h *OptionsHandler) GetOptions(c echo.Context) error {
	options, _ := h.optionsService.Get(c.Request().Context())
	return c.JSON(http.StatusOK, options)
}

// PutOptions replaces the stored options with the request body
// @Summary Replace stored options
// @Tags Options
// @Accept json
// @Router /options [put]
func (h *OptionsHandler) PutOptions(c echo.Context) error {
	if c.Request().ContentLength == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "request body is required")
	}

	options := new(entities.LotteryOptions)
	if err := c.Bind(options); err != nil {
		return bindError(err)
	}

	if err := h.save(c, options); err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}

func (h *OptionsHandler) save(c echo.Context, options *entities.LotteryOptions) error {
	err := h.optionsService.Save(c.Request().Context(), options)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, entities.ErrOptionsRequired):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	default:
		h.logger.Errorw("Save options failed", "error", err, "path", h.optionsService.Path())
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error()).SetInternal(err)
	}
}

// bindError turns a binder failure into a 400 carrying the decoder's reason
func bindError(err error) error {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		if he.Internal != nil && errors.Is(he.Internal, entities.ErrMissingGroups) {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid options: "+entities.ErrMissingGroups.Error())
		}
		if he.Code == http.StatusUnsupportedMediaType {
			return he
		}
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("invalid request: %v", he.Message))
	}
	return echo.NewHTTPError(http.StatusBadRequest, "invalid request: "+err.Error())
}

package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"github.com/gocomet/rider-roster/internal/persistence"
	"github.com/gocomet/rider-roster/internal/service/roster"
	apperrors "github.com/gocomet/rider-roster/pkg/errors"
	"github.com/gocomet/rider-roster/pkg/logger"
)

// StoreStatus exposes the persistence selection state to the health check
type StoreStatus interface {
	State() persistence.State
	StoreName() string
}

// Handlers holds all handler dependencies
type Handlers struct {
	Riders    *roster.Service
	Store     StoreStatus
	Logger    *logger.Logger
	Env       string
	startedAt time.Time
}

// NewHandlers creates a new Handlers instance
func NewHandlers(riders *roster.Service, store StoreStatus, log *logger.Logger, env string) *Handlers {
	return &Handlers{
		Riders:    riders,
		Store:     store,
		Logger:    log,
		Env:       env,
		startedAt: time.Now(),
	}
}

// respondError writes err in the {error, details} shape. Causes of server
// side failures are logged and never echoed to the client.
func (h *Handlers) respondError(c *gin.Context, err error) {
	appErr := apperrors.GetAppError(err)
	if appErr.Status >= http.StatusInternalServerError && appErr.Err != nil {
		h.Logger.Error("Request failed",
			logger.String("path", c.Request.URL.Path),
			logger.String("code", appErr.Code),
			logger.Err(appErr.Err),
		)
	}
	c.AbortWithStatusJSON(appErr.Status, appErr)
}

var errMalformedJSON = errors.New("request body is not a single valid JSON value")

// bindJSON decodes the request body into obj. Unlike ShouldBindJSON it
// rejects bodies with anything but whitespace after the first JSON value.
func bindJSON(c *gin.Context, obj any) error {
	if c.Request.Body == nil {
		return io.EOF
	}
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return err
	}
	if !json.Valid(body) {
		if len(body) == 0 {
			return io.EOF
		}
		return errMalformedJSON
	}
	return binding.JSON.BindBody(body, obj)
}

// bindError classifies a body decoding failure
func bindError(err error) *apperrors.AppError {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return apperrors.PayloadTooLarge(err)
	}
	return apperrors.InvalidJSON(err)
}

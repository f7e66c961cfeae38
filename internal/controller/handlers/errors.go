package handlers

import (
	"errors"
	"net/http"

	"github.com/Freeeeeet/streamer_booking/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type errorResponse struct {
	Error string `json:"error"`
	Step  string `json:"step,omitempty"`
}

var kindStatus = map[service.ErrorKind]int{
	service.KindValidation:     http.StatusBadRequest,
	service.KindForbidden:      http.StatusForbidden,
	service.KindNotFound:       http.StatusNotFound,
	service.KindConflict:       http.StatusConflict,
	service.KindGateway:        http.StatusBadGateway,
	service.KindInfrastructure: http.StatusInternalServerError,
}

func statusFor(err error) int {
	if status, ok := kindStatus[service.Kind(err)]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// respondError отвечает статусом по классу ошибки; детали инфраструктурных ошибок только в лог
func (h *Handlers) respondError(c *gin.Context, err error) {
	status := statusFor(err)
	resp := errorResponse{Error: err.Error(), Step: service.FailedStep(err)}

	if status == http.StatusInternalServerError {
		h.logger.Error("Request failed",
			zap.String("path", c.FullPath()),
			zap.String("step", resp.Step),
			zap.Error(err),
		)
		if resp.Step == "" {
			resp.Error = "internal error"
		} else {
			resp.Error = "payment processing failed"
		}
	}

	_ = c.Error(err)
	c.JSON(status, resp)
}

func (h *Handlers) badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
}

// userOrAbort достаёт пользователя; при ошибке уже ответил 401
func (h *Handlers) userOrAbort(c *gin.Context) (uuid.UUID, bool) {
	userID, err := requireUser(c)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse{Error: "unauthorized"})
		return uuid.Nil, false
	}
	return userID, true
}

// pathID разбирает uuid из параметра пути
func (h *Handlers) pathID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		h.badRequest(c, errors.New("invalid "+name))
		return uuid.Nil, false
	}
	return id, true
}

package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/polkiloo/routeshop/internal/domain/errors"
	pkgAuth "github.com/polkiloo/routeshop/internal/pkg/auth"
	"github.com/polkiloo/routeshop/internal/server/http/dto"
	"github.com/polkiloo/routeshop/internal/server/http/middleware"
)

// CurrentActorID extracts authenticated actor identifier from context.
func CurrentActorID(c *gin.Context) int64 {
	claims, ok := middleware.CurrentClaims(c)
	if !ok {
		return 0
	}
	return claims.ActorID
}

// statusFor maps domain errors onto HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domainErrors.ErrValidation), errors.Is(err, domainErrors.ErrBelowThreshold):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domainErrors.ErrConflict), errors.Is(err, domainErrors.ErrStaleAction):
		return http.StatusConflict
	case errors.Is(err, domainErrors.ErrNotFound), errors.Is(err, domainErrors.ErrNoDraft):
		return http.StatusNotFound
	case errors.Is(err, pkgAuth.ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, domainErrors.ErrDelivery), errors.Is(err, domainErrors.ErrExternalService):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	_ = c.Error(err)

	msg := err.Error()
	switch {
	case errors.Is(err, domainErrors.ErrStaleAction):
		msg = "already handled"
	case status == http.StatusInternalServerError:
		msg = http.StatusText(status)
	}
	c.AbortWithStatusJSON(status, dto.ErrorResponse{Error: msg})
}

func bindError(c *gin.Context, err error) {
	_ = c.Error(err)
	c.AbortWithStatusJSON(http.StatusBadRequest, dto.ErrorResponse{Error: "malformed request"})
}

func int64Param(c *gin.Context, name string) (int64, bool) {
	v, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || v <= 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid " + name})
		return 0, false
	}
	return v, true
}

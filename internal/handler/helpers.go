package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"tradegoal/internal/apperr"
	"tradegoal/internal/middleware"
)

const dateLayout = "2006-01-02"

// fail maps the service error taxonomy onto HTTP statuses.
func fail(c *gin.Context, err error) {
	switch apperr.KindOf(err) {
	case apperr.KindNotFound:
		Error(c, http.StatusNotFound, err.Error(), nil)
	case apperr.KindValidation:
		Error(c, http.StatusBadRequest, err.Error(), nil)
	case apperr.KindConflict:
		Error(c, http.StatusConflict, err.Error(), nil)
	case apperr.KindAuthorization:
		Error(c, http.StatusForbidden, err.Error(), nil)
	default:
		Error(c, http.StatusInternalServerError, err.Error(), nil)
	}
}

func currentUser(c *gin.Context) (uint64, string, bool) {
	id, ok := middleware.UserID(c)
	if !ok {
		Error(c, http.StatusUnauthorized, "not authenticated", nil)
		return 0, "", false
	}
	return id, middleware.Email(c), true
}

func intQuery(c *gin.Context, key string, def int) int {
	v := strings.TrimSpace(c.Query(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func uint64Param(c *gin.Context, key string) uint64 {
	v, err := strconv.ParseUint(strings.TrimSpace(c.Param(key)), 10, 64)
	if err != nil {
		return 0
	}
	return v
}

func uint64QueryPtr(c *gin.Context, key string) *uint64 {
	v := strings.TrimSpace(c.Query(key))
	if v == "" {
		return nil
	}
	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return nil
	}
	return &n
}

func dateQueryPtr(c *gin.Context, key string) *time.Time {
	v := strings.TrimSpace(c.Query(key))
	if v == "" {
		return nil
	}
	t, err := time.Parse(dateLayout, v)
	if err != nil {
		return nil
	}
	t = t.UTC()
	return &t
}

func parseDate(v string) (time.Time, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(v))
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

func intQueryPtr(c *gin.Context, key string) *int {
	v := strings.TrimSpace(c.Query(key))
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return nil
	}
	return &n
}

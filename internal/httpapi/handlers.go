package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"adminboard/internal/activity"
	"adminboard/internal/auth"
	"adminboard/internal/session"
	"adminboard/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Handlers groups HTTP handlers for dependency injection.
// Keep these thin: parse/validate input, call internal services, return JSON.

// Sessions is the subset of session.Manager the HTTP layer drives.
type Sessions interface {
	Current() session.State
	Login(ctx context.Context, email, password string) error
	Register(ctx context.Context, email, password, name string) error
	Logout(ctx context.Context)
	UpdateUser(ctx context.Context, patch session.UserPatch)
}

type Handlers struct {
	Session  Sessions
	Activity *activity.Service
	Filters  *activity.SavedFilters
}

// --- Session ---

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

func (h Handlers) GetSession(c *gin.Context) {
	c.JSON(http.StatusOK, h.Session.Current())
}

// Login signs in with mock credentials: any non-empty pair is accepted.
func (h Handlers) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if err := h.Session.Login(c.Request.Context(), req.Email, req.Password); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.Session.Current())
}

func (h Handlers) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if err := h.Session.Register(c.Request.Context(), req.Email, req.Password, req.Name); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, h.Session.Current())
}

func (h Handlers) Logout(c *gin.Context) {
	h.Session.Logout(c.Request.Context())
	c.JSON(http.StatusOK, h.Session.Current())
}

// UpdateUser applies a partial update to the signed-in user. id is not patchable.
func (h Handlers) UpdateUser(c *gin.Context) {
	var patch session.UserPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if field := patch.Problem(); field != "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid " + field, "field": field})
		return
	}
	h.Session.UpdateUser(c.Request.Context(), patch)
	c.JSON(http.StatusOK, h.Session.Current())
}

// --- Activity ---

// AppendRecord stores one activity record. id and timestamp are assigned server-side
// when missing; ip defaults to the resolved client address and the signed-in user id
// is stamped into metadata as submitted_by.
func (h Handlers) AppendRecord(c *gin.Context) {
	var rec activity.Record
	if err := c.ShouldBindJSON(&rec); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if rec.IP == "" {
		rec.IP = c.ClientIP()
	}
	if uid, err := auth.UserID(c.Request.Context()); err == nil {
		if rec.Metadata == nil {
			rec.Metadata = map[string]any{}
		}
		rec.Metadata["submitted_by"] = uid
	}
	saved, err := h.Activity.Append(c.Request.Context(), rec)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, saved)
}

func (h Handlers) QueryActivity(c *gin.Context) {
	crit, ok := bindCriteria(c)
	if !ok {
		return
	}
	res, err := h.Activity.Query(c.Request.Context(), crit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// ExportActivity streams the filtered result. format=json (default) includes stats;
// format=csv carries the records only.
func (h Handlers) ExportActivity(c *gin.Context) {
	format := strings.ToLower(c.DefaultQuery("format", "json"))
	if format != "json" && format != "csv" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "format must be json or csv"})
		return
	}
	crit, ok := bindCriteria(c)
	if !ok {
		return
	}
	res, err := h.Activity.Query(c.Request.Context(), crit)
	if err != nil {
		writeError(c, err)
		return
	}

	if format == "csv" {
		c.Header("Content-Type", "text/csv; charset=utf-8")
		c.Header("Content-Disposition", `attachment; filename="activity.csv"`)
		c.Status(http.StatusOK)
		if err := activity.WriteCSV(c.Writer, res.Filtered); err != nil {
			_ = c.Error(err)
		}
		return
	}

	c.Header("Content-Type", "application/json; charset=utf-8")
	c.Header("Content-Disposition", `attachment; filename="activity.json"`)
	c.Status(http.StatusOK)
	if err := activity.WriteJSON(c.Writer, res); err != nil {
		_ = c.Error(err)
	}
}

// --- Saved filters ---

func (h Handlers) ListFilters(c *gin.Context) {
	list, err := h.Filters.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"filters": list})
}

func (h Handlers) SaveFilter(c *gin.Context) {
	crit, ok := bindCriteria(c)
	if !ok {
		return
	}
	f, err := h.Filters.Save(c.Request.Context(), c.Param("name"), crit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, f)
}

func (h Handlers) GetFilter(c *gin.Context) {
	f, err := h.Filters.Load(c.Request.Context(), c.Param("name"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, f)
}

func (h Handlers) DeleteFilter(c *gin.Context) {
	if err := h.Filters.Delete(c.Request.Context(), c.Param("name")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// bindCriteria reads optional JSON criteria. An empty body means no filters.
func bindCriteria(c *gin.Context) (activity.Criteria, bool) {
	var crit activity.Criteria
	if c.Request.ContentLength == 0 {
		return crit, true
	}
	if err := c.ShouldBindJSON(&crit); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return crit, false
	}
	return crit, true
}

// writeError maps domain errors to status codes. Unknown errors are logged and hidden.
func writeError(c *gin.Context, err error) {
	var ve *session.ValidationError
	var ae *session.AuthError
	switch {
	case errors.As(err, &ve):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": ve.Message, "field": ve.Field})
	case errors.As(err, &ae):
		logger.FromGin(c).Warn("sign-in failed", "err", ae.Err)
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": ae.Message})
	case errors.Is(err, session.ErrBusy):
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, activity.ErrInvalidRecord), errors.Is(err, activity.ErrInvalidFilterName):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, activity.ErrFilterNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		_ = c.Error(err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

package api

import (
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/google/uuid"

	"github.com/pageza/forkful/backend/internal/logging"
	"github.com/pageza/forkful/backend/internal/middleware"
	"github.com/pageza/forkful/backend/internal/service"
	"github.com/pageza/forkful/backend/internal/types"
	"github.com/pageza/forkful/backend/internal/validation"
)

// respondError maps service errors onto HTTP statuses
func respondError(c *gin.Context, err error) {
	var verr *service.ValidationError
	if errors.As(err, &verr) {
		body := gin.H{"error": verr.Error()}
		if len(verr.Fields) > 0 {
			body["fields"] = verr.Fields
		}
		c.JSON(http.StatusBadRequest, body)
		return
	}

	status, fallback := http.StatusInternalServerError, "Internal Server Error"
	switch {
	case errors.Is(err, service.ErrAuth):
		status, fallback = http.StatusUnauthorized, "Authentication failed."
	case errors.Is(err, service.ErrPermission):
		status, fallback = http.StatusForbidden, "You do not have permission to perform this action."
	case errors.Is(err, service.ErrNotFound):
		status, fallback = http.StatusNotFound, "Not found."
	case errors.Is(err, service.ErrStorage):
		status, fallback = http.StatusServiceUnavailable, "Image storage is unavailable."
	}

	if status >= http.StatusInternalServerError {
		logging.Ctx(c.Request.Context()).Error().Err(err).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Msg("request failed")
		_ = c.Error(err)
		c.JSON(status, gin.H{"error": fallback})
		return
	}

	msg := fallback
	var serr *service.StatusError
	if errors.As(err, &serr) && serr.Message != "" {
		msg = serr.Message
	}
	c.JSON(status, gin.H{"error": msg})
}

func respondNotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"error": "Not found."})
}

// bindJSON decodes the body into dst. An empty body counts as an empty object.
func bindJSON(c *gin.Context, dst interface{}) bool {
	err := c.ShouldBindJSON(dst)
	if errors.Is(err, io.EOF) {
		err = binding.Validator.ValidateStruct(dst)
	}
	if err != nil {
		respondError(c, &service.ValidationError{Fields: validation.FieldErrors(err)})
		return false
	}
	return true
}

// pathID parses a UUID route parameter. Malformed ids are answered with 404.
func pathID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		respondNotFound(c)
		return uuid.Nil, false
	}
	return id, true
}

// actor returns the authenticated user. Routes using it sit behind RequireAuth.
func actor(c *gin.Context) (uuid.UUID, bool) {
	id, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication credentials were not provided."})
	}
	return id, ok
}

func pageRequest(c *gin.Context) (types.PageRequest, bool) {
	var page types.PageRequest
	if v := c.Query("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			c.JSON(http.StatusNotFound, gin.H{"error": "Invalid page."})
			return page, false
		}
		page.Page = n
	}
	if n, err := strconv.Atoi(c.Query("page_size")); err == nil {
		page.PageSize = n
	}
	return page.Normalize(), true
}

// respondPage fills in absolute next/previous links and writes the page
func respondPage[T any](c *gin.Context, page *types.Page[T]) {
	if page.HasNext() {
		next := pageURL(c, page.Request.Page+1)
		page.Next = &next
	}
	if page.HasPrevious() {
		prev := pageURL(c, page.Request.Page-1)
		page.Previous = &prev
	}
	if page.Results == nil {
		page.Results = []T{}
	}
	c.JSON(http.StatusOK, page)
}

func pageURL(c *gin.Context, n int) string {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if proto := c.GetHeader("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}

	q := c.Request.URL.Query()
	if n <= 1 {
		q.Del("page")
	} else {
		q.Set("page", strconv.Itoa(n))
	}

	u := url.URL{Scheme: scheme, Host: c.Request.Host, Path: c.Request.URL.Path, RawQuery: q.Encode()}
	return u.String()
}

// formUpload reads an image part of a multipart form. A missing part yields nil
// so the service reports it against the field.
func formUpload(c *gin.Context, field string) (*service.Upload, func(), error) {
	fh, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, func() {}, nil
		}
		return nil, func() {}, err
	}

	f, err := fh.Open()
	if err != nil {
		return nil, func() {}, err
	}
	closer := func() { _ = f.Close() }

	// trust the bytes, not the client's Content-Type
	mtype, err := mimetype.DetectReader(f)
	if err != nil {
		closer()
		return nil, func() {}, err
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		closer()
		return nil, func() {}, err
	}

	return &service.Upload{
		Filename:    fh.Filename,
		ContentType: mtype.String(),
		Size:        fh.Size,
		Body:        f,
	}, closer, nil
}

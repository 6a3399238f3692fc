package httpapi

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-scholarship-catalog/catalog"
	"github.com/goliatone/go-scholarship-catalog/internal/logctx"
)

type handlers struct {
	svc *catalog.Service
}

type single struct {
	Data any `json:"data"`
}

func (h *handlers) list(entity string) gin.HandlerFunc {
	return func(c *gin.Context) {
		env, err := h.svc.List(c.Request.Context(), entity, c.Request.URL.Query())
		if err != nil {
			respondError(c, err)
			return
		}
		if env.Degraded {
			noStore(c)
		}
		fallback := catalog.EmptyEnvelope(env.Pagination.Page, env.Pagination.Limit)
		writeJSON(c, http.StatusOK, env, fallback)
	}
}

func (h *handlers) featured(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	col := h.svc.Featured(c.Request.Context(), limit)
	if col.Degraded {
		noStore(c)
	}
	writeJSON(c, http.StatusOK, col, catalog.Collection{Data: []any{}})
}

func (h *handlers) filterOptions(c *gin.Context) {
	opts := h.svc.FilterOptions(c.Request.Context())
	writeJSON(c, http.StatusOK, single{Data: opts}, single{Data: catalog.FilterOptions{
		Categories: []catalog.Category{},
		Countries:  []catalog.Country{},
		Levels:     []catalog.Level{},
	}})
}

func (h *handlers) detail(entity string) gin.HandlerFunc {
	return func(c *gin.Context) {
		item, err := h.svc.Get(c.Request.Context(), entity, c.Param("slug"))
		if err != nil {
			respondError(c, err)
			return
		}
		writeJSON(c, http.StatusOK, single{Data: item}, nil)
	}
}

// countView runs ahead of the response cache so cached detail reads are
// counted too.
func (h *handlers) countView(entity string) gin.HandlerFunc {
	return func(c *gin.Context) {
		const op = "httpapi.countView"

		c.Next()
		if c.Writer.Status() != http.StatusOK {
			return
		}
		ctx := c.Request.Context()
		if err := h.svc.RecordView(ctx, entity, c.Param("slug")); err != nil {
			logctx.From(ctx).Warn("view not counted",
				slog.String("op", op),
				slog.String("entity", entity),
				slog.Any("error", err),
			)
		}
	}
}

func (h *handlers) create(entity string) gin.HandlerFunc {
	return func(c *gin.Context) {
		payload, ok := bindPayload(c)
		if !ok {
			return
		}
		item, err := h.svc.Create(c.Request.Context(), entity, payload)
		if err != nil {
			respondError(c, err)
			return
		}
		writeJSON(c, http.StatusCreated, single{Data: item}, nil)
	}
}

func (h *handlers) update(entity string) gin.HandlerFunc {
	return func(c *gin.Context) {
		payload, ok := bindPayload(c)
		if !ok {
			return
		}
		item, err := h.svc.Update(c.Request.Context(), entity, c.Param("id"), payload)
		if err != nil {
			respondError(c, err)
			return
		}
		writeJSON(c, http.StatusOK, single{Data: item}, nil)
	}
}

func (h *handlers) remove(entity string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := h.svc.Delete(c.Request.Context(), entity, c.Param("id")); err != nil {
			respondError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func bindPayload(c *gin.Context) (map[string]any, bool) {
	var payload map[string]any
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, goerrors.Wrap(err, goerrors.CategoryBadInput, "request body must be a JSON object"))
		return nil, false
	}
	if payload == nil {
		respondError(c, goerrors.New("request body must be a JSON object", goerrors.CategoryBadInput))
		return nil, false
	}
	return payload, true
}

// writeJSON encodes v. When encoding fails the fallback is sent with the same
// status instead; a nil fallback turns the failure into a 500.
func writeJSON(c *gin.Context, status int, v, fallback any) {
	const op = "httpapi.writeJSON"

	payload, err := json.Marshal(v)
	if err == nil {
		c.Data(status, contentTypeJSON, payload)
		return
	}

	log := logctx.From(c.Request.Context())
	log.Warn("response encoding failed",
		slog.String("op", op),
		slog.String("path", c.Request.URL.Path),
		slog.Any("error", err),
	)
	noStore(c)
	if fallback == nil {
		respondError(c, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to encode response"))
		return
	}
	payload, err = json.Marshal(fallback)
	if err != nil {
		log.Error("fallback encoding failed", slog.String("op", op), slog.Any("error", err))
		c.Status(http.StatusInternalServerError)
		return
	}
	c.Data(status, contentTypeJSON, payload)
}

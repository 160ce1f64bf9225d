package http

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/eldos/workmarket/internal/codec"
	"github.com/eldos/workmarket/internal/resource"
	"github.com/eldos/workmarket/internal/schema"
)

const jsonContentType = "application/json; charset=utf-8"

// CollectionExporter renders a whole collection into a downloadable document.
type CollectionExporter interface {
	Generate(kind schema.Kind, records []map[string]any) ([]byte, error)
}

type Handler struct {
	resources *resource.Mapper
	excel     CollectionExporter
	pdf       CollectionExporter
	log       zerolog.Logger
}

func NewHandler(resources *resource.Mapper, excel, pdf CollectionExporter, log zerolog.Logger) *Handler {
	return &Handler{resources: resources, excel: excel, pdf: pdf, log: log}
}

func (h *Handler) Register(router *gin.Engine) {
	router.POST("/export", h.exportExcel)
	router.POST("/export/pdf", h.exportPDF)

	router.GET("/:kind", h.list)
	router.POST("/:kind", h.create)
	router.GET("/:kind/:id", h.getByID)
	router.PUT("/:kind/:id", h.replaceByID)
	router.DELETE("/:kind/:id", h.deleteByID)
}

func (h *Handler) list(c *gin.Context) {
	payload, err := h.resources.List(c.Request.Context(), c.Param("kind"))
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.Data(http.StatusOK, jsonContentType, payload)
}

func (h *Handler) create(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot read body"})
		return
	}
	if _, err := h.resources.Create(c.Request.Context(), c.Param("kind"), body); err != nil {
		h.handleError(c, err)
		return
	}
	c.Status(http.StatusCreated)
}

func (h *Handler) getByID(c *gin.Context) {
	id, ok := h.recordID(c)
	if !ok {
		return
	}
	payload, err := h.resources.Get(c.Request.Context(), c.Param("kind"), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.Data(http.StatusOK, jsonContentType, payload)
}

func (h *Handler) replaceByID(c *gin.Context) {
	id, ok := h.recordID(c)
	if !ok {
		return
	}
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot read body"})
		return
	}
	if err := h.resources.Replace(c.Request.Context(), c.Param("kind"), id, body); err != nil {
		h.handleError(c, err)
		return
	}
	c.Status(http.StatusCreated)
}

func (h *Handler) deleteByID(c *gin.Context) {
	id, ok := h.recordID(c)
	if !ok {
		return
	}
	if err := h.resources.Delete(c.Request.Context(), c.Param("kind"), id); err != nil {
		h.handleError(c, err)
		return
	}
	c.Status(http.StatusCreated)
}

type exportRequest struct {
	Kind string `json:"kind" binding:"required"`
}

func (h *Handler) exportExcel(c *gin.Context) {
	h.export(c, h.excel, "xlsx", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
}

func (h *Handler) exportPDF(c *gin.Context) {
	h.export(c, h.pdf, "pdf", "application/pdf")
}

func (h *Handler) export(c *gin.Context, generator CollectionExporter, extension, contentType string) {
	var req exportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	kind, records, err := h.resources.Collection(c.Request.Context(), req.Kind)
	if err != nil {
		h.handleError(c, err)
		return
	}

	content, err := generator.Generate(kind, records)
	if err != nil {
		h.handleError(c, err)
		return
	}

	fileName := fmt.Sprintf("%s-%s.%s", kind.Name, time.Now().Format("20060102"), extension)
	c.Header("Content-Disposition", "attachment; filename=\""+fileName+"\"")
	c.Data(http.StatusOK, contentType, content)
}

// recordID parses the id path segment. A non-numeric id never names a
// record, so it fails the same way an unknown kind does.
func (h *Handler) recordID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.String(http.StatusNotFound, "Page not Found")
		return 0, false
	}
	return id, true
}

func (h *Handler) handleError(c *gin.Context, err error) {
	var fieldErr *codec.FieldError
	switch {
	case errors.Is(err, schema.ErrUnknownKind):
		c.String(http.StatusNotFound, "Page not Found")
	case errors.Is(err, resource.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, codec.ErrMalformedBody):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.As(err, &fieldErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": fieldErr.Error(), "field": fieldErr.Field})
	default:
		h.log.Error().Err(err).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

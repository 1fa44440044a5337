package handlers

import (
	"context"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"numbersapi/internal/models"
	"numbersapi/internal/services"
)

type NumberHandler struct {
	service services.NumberService
}

func NewNumberHandler(service services.NumberService) *NumberHandler {
	return &NumberHandler{service: service}
}

// @Summary      Сохранить новое число
// @Description  Draws a random 8-digit value, stamps it with the next serial and stores it
// @Tags         Numbers
// @Produce      json
// @Success      201  {object}  models.NumberRecord
// @Failure      409  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/numbers [post]
func (h *NumberHandler) Create(c *gin.Context) {
	rec, err := h.service.CreateRandom(c.Request.Context())
	if err != nil {
		respondError(c, "[numbers][create]", err, "Failed to save number")
		return
	}
	log.Printf("[numbers][create] id=%d serial=%d", rec.ID, rec.Serial)
	c.JSON(http.StatusCreated, rec)
}

// @Summary      Последнее значение
// @Tags         Numbers
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "value or null"
// @Failure      500  {object}  map[string]string
// @Router       /api/numbers/last [get]
func (h *NumberHandler) LastValue(c *gin.Context) {
	h.respondNth(c, h.service.Latest, "value", "Failed to fetch last number")
}

// @Summary      Время последнего значения
// @Tags         Numbers
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "savedAt or null"
// @Failure      500  {object}  map[string]string
// @Router       /api/numbers/last/datetime [get]
func (h *NumberHandler) LastDatetime(c *gin.Context) {
	h.respondNth(c, h.service.Latest, "savedAt", "Failed to fetch last datetime")
}

// @Summary      Предпоследнее значение
// @Tags         Numbers
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "value or null"
// @Failure      500  {object}  map[string]string
// @Router       /api/numbers/second [get]
func (h *NumberHandler) SecondValue(c *gin.Context) {
	h.respondNth(c, h.service.SecondLatest, "value", "Failed to fetch second-most-recent number")
}

// @Summary      Время предпоследнего значения
// @Tags         Numbers
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "savedAt or null"
// @Failure      500  {object}  map[string]string
// @Router       /api/numbers/second/datetime [get]
func (h *NumberHandler) SecondDatetime(c *gin.Context) {
	h.respondNth(c, h.service.SecondLatest, "savedAt", "Failed to fetch second-most-recent datetime")
}

// @Summary      Все значения
// @Description  All records, newest first
// @Tags         Numbers
// @Produce      json
// @Success      200  {array}   models.NumberRecord
// @Failure      500  {object}  map[string]string
// @Router       /api/numbers/all [get]
func (h *NumberHandler) All(c *gin.Context) {
	recs, err := h.service.All(c.Request.Context())
	if err != nil {
		respondError(c, "[numbers][all]", err, "Failed to fetch all numbers")
		return
	}
	c.JSON(http.StatusOK, recs)
}

// respondNth writes {field: <value>} or {field: null} when there is no record.
func (h *NumberHandler) respondNth(c *gin.Context, lookup func(context.Context) (*models.NumberRecord, error), field, fallback string) {
	rec, err := lookup(c.Request.Context())
	if err != nil {
		respondError(c, "[numbers]["+field+"]", err, fallback)
		return
	}
	if rec == nil {
		c.JSON(http.StatusOK, gin.H{field: nil})
		return
	}
	switch field {
	case "savedAt":
		c.JSON(http.StatusOK, gin.H{field: rec.SavedAt})
	default:
		c.JSON(http.StatusOK, gin.H{field: rec.Value})
	}
}

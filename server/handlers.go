package server

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rustyeddy/papertrader/indicators"
	"github.com/rustyeddy/papertrader/ledger"
	"github.com/rustyeddy/papertrader/market"
	"github.com/rustyeddy/papertrader/risk"
	"github.com/shopspring/decimal"
)

// OrderRequest is the body of POST /orders.
type OrderRequest struct {
	Side     string `json:"side" binding:"required"`
	Symbol   string `json:"symbol" binding:"required"`
	Quantity int64  `json:"quantity"`
}

// TickRequest is the body of POST /ticks.
type TickRequest struct {
	Symbol string          `json:"symbol" binding:"required"`
	Price  decimal.Decimal `json:"price"`
}

// Rejection is the 422 body for a refused order.
type Rejection struct {
	Code  string `json:"code"`
	Error string `json:"error"`
}

func (h *Handler) getSession(c *gin.Context) {
	c.JSON(http.StatusOK, h.session.Status())
}

func (h *Handler) startSession(c *gin.Context) {
	h.session.Start(h.base)
	c.JSON(http.StatusOK, h.session.Status())
}

func (h *Handler) pauseSession(c *gin.Context) {
	h.session.Pause()
	c.JSON(http.StatusOK, h.session.Status())
}

func (h *Handler) resetSession(c *gin.Context) {
	h.session.Reset()
	c.JSON(http.StatusOK, h.session.Status())
}

func (h *Handler) submitOrder(c *gin.Context) {
	if h.orders != nil && !h.orders.Allow() {
		writeError(c, http.StatusTooManyRequests, errRateLimited)
		return
	}

	var req OrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, err)
		return
	}

	side, err := ledger.ParseSide(req.Side)
	if err != nil {
		writeRejection(c, fmt.Errorf("%v: %w", err, risk.ErrInvalidOrder))
		return
	}

	t, err := h.session.SubmitOrder(c.Request.Context(), side, strings.ToUpper(req.Symbol), req.Quantity)
	if err != nil {
		if risk.IsRejection(err) {
			writeRejection(c, err)
			return
		}
		writeError(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusCreated, t)
}

func writeRejection(c *gin.Context, err error) {
	c.JSON(http.StatusUnprocessableEntity, Rejection{Code: risk.Code(err), Error: err.Error()})
}

func (h *Handler) postTick(c *gin.Context) {
	var req TickRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, err)
		return
	}
	if !req.Price.IsPositive() {
		writeError(c, http.StatusBadRequest, errBadPrice)
		return
	}
	if !h.session.Tick(strings.ToUpper(req.Symbol), req.Price) {
		writeError(c, http.StatusConflict, errTickIgnored)
		return
	}
	c.Status(http.StatusAccepted)
}

func (h *Handler) getPositions(c *gin.Context) {
	c.JSON(http.StatusOK, h.session.Positions())
}

// getTrades lists newest first unless ?order=asc.
func (h *Handler) getTrades(c *gin.Context) {
	if c.Query("order") == "asc" {
		c.JSON(http.StatusOK, h.session.Trades())
		return
	}
	c.JSON(http.StatusOK, h.session.TradesNewestFirst())
}

func (h *Handler) getQuotes(c *gin.Context) {
	c.JSON(http.StatusOK, h.session.Quotes())
}

func (h *Handler) getQuote(c *gin.Context) {
	q, err := h.session.Quote(strings.ToUpper(c.Param("symbol")))
	if err != nil {
		if errors.Is(err, market.ErrNoQuote) {
			writeError(c, http.StatusNotFound, err)
			return
		}
		writeError(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, q)
}

func (h *Handler) getHistory(c *gin.Context) {
	c.JSON(http.StatusOK, h.session.History(strings.ToUpper(c.Param("symbol"))))
}

const defaultIndicatorPeriod = 10

// IndicatorsResponse is the body of GET /indicators/:symbol.
type IndicatorsResponse struct {
	Symbol   string               `json:"symbol"`
	Points   int                  `json:"points"`
	Readings []indicators.Reading `json:"readings"`
}

// getIndicators reports moving averages over the symbol's price history.
// ?period=N sets the window, default 10.
func (h *Handler) getIndicators(c *gin.Context) {
	period := defaultIndicatorPeriod
	if p := c.Query("period"); p != "" {
		n, err := strconv.Atoi(p)
		if err != nil || n <= 0 {
			writeError(c, http.StatusBadRequest, fmt.Errorf("period must be a positive integer, got %q", p))
			return
		}
		period = n
	}

	symbol := strings.ToUpper(c.Param("symbol"))
	hist := h.session.History(symbol)
	c.JSON(http.StatusOK, IndicatorsResponse{
		Symbol:   symbol,
		Points:   len(hist),
		Readings: indicators.Compute(hist, indicators.NewMA(period), indicators.NewEMA(period)),
	})
}

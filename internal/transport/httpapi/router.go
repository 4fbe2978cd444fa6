// Package httpapi exposes the game lifecycle over HTTP.
package httpapi

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	apperrors "github.com/xtding233/farkle-backend/internal/errors"
	"github.com/xtding233/farkle-backend/internal/farkle"
	"github.com/xtding233/farkle-backend/internal/pricing"
	"github.com/xtding233/farkle-backend/internal/service"
)

// Games is the slice of the service the router drives.
type Games interface {
	Start(ctx context.Context, req service.StartRequest) (service.Result, error)
	Roll(ctx context.Context, req service.RollRequest) (service.Result, error)
	Stop(ctx context.Context, req service.StopRequest) (service.Result, error)
	Unfarkle(ctx context.Context, req service.UnfarkleRequest) (service.Result, error)
	BuyBoosts(ctx context.Context, req service.BuyBoostsRequest) (service.Result, error)
	Session(ctx context.Context, sessionID, playerID string) (*farkle.GameState, error)
	Quote(tokens int) (pricing.Plan, error)
}

type startBody struct {
	Session  string `json:"session"`
	PlayerID string `json:"playerId"`
	Bet      int64  `json:"bet"`
	Mode     string `json:"mode"`
}

type rollBody struct {
	PlayerID string `json:"playerId"`
	Hold     []int  `json:"hold"`
	Extra    bool   `json:"extra"`
}

type stopBody struct {
	PlayerID string `json:"playerId"`
	Hold     []int  `json:"hold"`
	Double   bool   `json:"double"`
}

type playerBody struct {
	PlayerID string `json:"playerId"`
}

type boostsBody struct {
	PlayerID string `json:"playerId"`
	Gems     int64  `json:"gems"`
}

type response struct {
	Success bool              `json:"success"`
	Message string            `json:"message,omitempty"`
	Code    string            `json:"code,omitempty"`
	Game    *farkle.GameState `json:"game,omitempty"`
}

type handler struct {
	games  Games
	logger *log.Logger
}

// SetupRouter registers every route on a fresh engine.
func SetupRouter(games Games, logger *log.Logger) *gin.Engine {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	h := &handler{games: games, logger: logger}

	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.POST("/sessions", h.start)
	s := r.Group("/sessions/:session")
	{
		s.GET("", h.session)
		s.POST("/roll", h.roll)
		s.POST("/stop", h.stop)
		s.POST("/unfarkle", h.unfarkle)
		s.POST("/boosts", h.boosts)
	}
	r.GET("/boosts/quote", h.quote)
	return r
}

// bind tolerates an empty body; every field has a default.
func bind(c *gin.Context, dst any) bool {
	if c.Request.ContentLength == 0 {
		return true
	}
	if err := c.ShouldBindJSON(dst); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, response{Message: "invalid body: " + err.Error(), Code: string(apperrors.CodeInvalidRequest)})
		return false
	}
	return true
}

func (h *handler) start(c *gin.Context) {
	var body startBody
	if !bind(c, &body) {
		return
	}
	res, err := h.games.Start(c.Request.Context(), service.StartRequest{
		SessionID: body.Session,
		PlayerID:  body.PlayerID,
		Bet:       body.Bet,
		Mode:      body.Mode,
	})
	h.reply(c, "start", res, err)
}

func (h *handler) roll(c *gin.Context) {
	var body rollBody
	if !bind(c, &body) {
		return
	}
	res, err := h.games.Roll(c.Request.Context(), service.RollRequest{
		SessionID: c.Param("session"),
		PlayerID:  body.PlayerID,
		Hold:      body.Hold,
		Extra:     body.Extra,
	})
	h.reply(c, "roll", res, err)
}

func (h *handler) stop(c *gin.Context) {
	var body stopBody
	if !bind(c, &body) {
		return
	}
	res, err := h.games.Stop(c.Request.Context(), service.StopRequest{
		SessionID: c.Param("session"),
		PlayerID:  body.PlayerID,
		Hold:      body.Hold,
		Double:    body.Double,
	})
	h.reply(c, "stop", res, err)
}

func (h *handler) unfarkle(c *gin.Context) {
	var body playerBody
	if !bind(c, &body) {
		return
	}
	res, err := h.games.Unfarkle(c.Request.Context(), service.UnfarkleRequest{
		SessionID: c.Param("session"),
		PlayerID:  body.PlayerID,
	})
	h.reply(c, "unfarkle", res, err)
}

func (h *handler) boosts(c *gin.Context) {
	var body boostsBody
	if !bind(c, &body) {
		return
	}
	res, err := h.games.BuyBoosts(c.Request.Context(), service.BuyBoostsRequest{
		SessionID: c.Param("session"),
		PlayerID:  body.PlayerID,
		Gems:      body.Gems,
	})
	h.reply(c, "boosts", res, err)
}

func (h *handler) session(c *gin.Context) {
	g, err := h.games.Session(c.Request.Context(), c.Param("session"), c.Query("playerId"))
	if err != nil {
		h.fail(c, "session", nil, err)
		return
	}
	c.JSON(http.StatusOK, response{Success: true, Game: g})
}

func (h *handler) quote(c *gin.Context) {
	tokens, err := strconv.Atoi(c.Query("tokens"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response{Message: "invalid tokens", Code: string(apperrors.CodeInvalidRequest)})
		return
	}
	plan, err := h.games.Quote(tokens)
	if err != nil {
		h.fail(c, "quote", nil, err)
		return
	}
	c.JSON(http.StatusOK, plan)
}

func (h *handler) reply(c *gin.Context, op string, res service.Result, err error) {
	if err != nil {
		h.fail(c, op, res.State, err)
		return
	}
	c.JSON(http.StatusOK, response{Success: true, Message: res.Message, Game: res.State})
}

// fail answers with the domain status, or 500 for anything else.
func (h *handler) fail(c *gin.Context, op string, g *farkle.GameState, err error) {
	de, ok := apperrors.As(err)
	if !ok {
		h.logger.Printf("%s %s: %v", op, c.Param("session"), err)
		c.JSON(http.StatusInternalServerError, response{Message: "internal error", Code: string(apperrors.CodeUnknown)})
		return
	}
	h.logger.Printf("%s %s refused: %s", op, c.Param("session"), de.Code)
	c.JSON(de.Code.HTTPStatus(), response{Message: de.Message, Code: string(de.Code), Game: g})
}

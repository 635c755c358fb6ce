package controllerImp

import (
	"context"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"mlimi/pkg/apperr"
	"mlimi/pkg/consultation/controller"
	"mlimi/pkg/consultation/service"
	"mlimi/pkg/middleware"
	"mlimi/pkg/realtime"
)

const (
	table        = "consultations"
	writeTimeout = 5 * time.Second
)

type consultationCtrl struct {
	s   service.ConsultationService
	hub *realtime.Hub
	log *zap.Logger
}

func New(s service.ConsultationService, hub *realtime.Hub, log *zap.Logger) controller.ConsultationController {
	if log == nil {
		log = zap.NewNop()
	}
	return &consultationCtrl{s: s, hub: hub, log: log}
}

func (h *consultationCtrl) Create(c echo.Context) error {
	var in service.CreateInput
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "bad json"})
	}
	v, err := h.s.Create(c.Request().Context(), middleware.UID(c), in)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(http.StatusCreated, v)
}

func filterFrom(c echo.Context) service.ListFilter {
	return service.ListFilter{Status: c.QueryParam("status"), Query: c.QueryParam("q")}
}

func (h *consultationCtrl) List(c echo.Context) error {
	res, err := h.s.List(c.Request().Context(), middleware.Profile(c), filterFrom(c))
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *consultationCtrl) Get(c echo.Context) error {
	v, err := h.s.Get(c.Request().Context(), middleware.Profile(c), c.Param("id"))
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(http.StatusOK, v)
}

func (h *consultationCtrl) Queue(c echo.Context) error {
	out, err := h.s.Queue(c.Request().Context(), middleware.Profile(c))
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *consultationCtrl) MarkActive(c echo.Context) error {
	v, err := h.s.MarkActive(c.Request().Context(), middleware.Profile(c), c.Param("id"))
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(http.StatusOK, v)
}

func (h *consultationCtrl) AddRecommendation(c echo.Context) error {
	var body struct {
		Recommendation string `json:"recommendation"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "bad json"})
	}
	v, err := h.s.AddRecommendation(c.Request().Context(), middleware.Profile(c), c.Param("id"), body.Recommendation)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(http.StatusOK, v)
}

// Stream pushes the caller's full consultation list on connect and again
// after every change to the table, until the socket closes.
func (h *consultationCtrl) Stream(c echo.Context) error {
	viewer := middleware.Profile(c)
	filter := filterFrom(c)

	conn, err := websocket.Accept(c.Response(), c.Request(), nil)
	if err != nil {
		h.log.Warn("websocket accept failed", zap.Error(err))
		return nil
	}
	defer conn.CloseNow()
	ctx := conn.CloseRead(c.Request().Context())

	changed := make(chan struct{}, 1)
	bridge := realtime.NewBridge(h.hub, table, func(context.Context) error {
		select {
		case changed <- struct{}{}:
		default:
		}
		return nil
	}, h.log)
	bridge.Start(ctx)
	defer bridge.Close()

	send := func() error {
		wctx, cancel := context.WithTimeout(ctx, writeTimeout)
		defer cancel()
		res, err := h.s.List(ctx, viewer, filter)
		if err != nil {
			return wsjson.Write(wctx, conn, map[string]string{"error": err.Error()})
		}
		return wsjson.Write(wctx, conn, res)
	}

	if err := send(); err != nil {
		return nil
	}
	for {
		select {
		case <-ctx.Done():
			conn.Close(websocket.StatusNormalClosure, "")
			return nil
		case <-changed:
			if err := send(); err != nil {
				h.log.Debug("stream closed", zap.Error(err))
				return nil
			}
		}
	}
}

package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/Kjarrigan/base-builder/internal/build"
	"github.com/Kjarrigan/base-builder/internal/game"
	"github.com/Kjarrigan/base-builder/internal/logging"
	"github.com/Kjarrigan/base-builder/internal/middleware"
	"github.com/Kjarrigan/base-builder/internal/render"
	"github.com/Kjarrigan/base-builder/internal/world"
	"github.com/Kjarrigan/base-builder/internal/world/block"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// Version задаёт версию сервера в /api/server
const Version = "v0.1.0"

// RestServer представляет REST API сервер поверх игровой сессии.
// Обработчики не трогают сетки напрямую: всё выполняется через Session.Do.
type RestServer struct {
	router  *gin.Engine
	server  *http.Server
	session *game.Session
	port    string
	metrics *ServerMetrics
	log     *logging.Logger
	timeout time.Duration
}

// Config содержит конфигурацию для REST сервера
type Config struct {
	Port     string               // порт для запуска сервера
	Session  *game.Session        // игровая сессия с запущенным Run
	Registry *prometheus.Registry // nil — дефолтный регистр Prometheus
	Timeout  time.Duration        // ожидание игрового цикла на запрос
	Logger   *logging.Logger      // nil — логгер компонента "api"
	Mode     string               // режим gin, по умолчанию release
}

// NewRestServer создает новый REST API сервер
func NewRestServer(config Config) *RestServer {
	if config.Port == "" {
		config.Port = ":8088"
	}
	if config.Timeout <= 0 {
		config.Timeout = 2 * time.Second
	}
	if config.Logger == nil {
		config.Logger = logging.GetAPILogger()
	}
	if config.Mode == "" {
		config.Mode = gin.ReleaseMode
	}
	gin.SetMode(config.Mode)

	router := gin.New()        // без стандартного logger/recovery
	router.Use(gin.Recovery()) // добавим только recovery

	// === Observability middleware ===
	loggerMw := middleware.NewRequestLogger(config.Logger)
	router.Use(loggerMw.Handler())

	router.Use(otelgin.Middleware("rest_api"))

	var (
		reg      prometheus.Registerer
		gatherer prometheus.Gatherer
	)
	if config.Registry != nil {
		reg, gatherer = config.Registry, config.Registry
	}
	promMw := middleware.NewPrometheusMiddleware("rest_api", reg)
	router.Use(promMw.Handler())
	promMw.RegisterMetricsEndpoint(router, gatherer)

	rs := &RestServer{
		router:  router,
		session: config.Session,
		port:    config.Port,
		metrics: NewServerMetrics(),
		log:     config.Logger,
		timeout: config.Timeout,
	}
	rs.server = &http.Server{Addr: config.Port, Handler: router}

	rs.setupRoutes()
	return rs
}

// Handler возвращает http.Handler сервера (используется в тестах)
func (rs *RestServer) Handler() http.Handler {
	return rs.router
}

// setupRoutes настраивает маршруты REST API
func (rs *RestServer) setupRoutes() {
	api := rs.router.Group("/api")

	worldGroup := api.Group("/world")
	{
		worldGroup.GET("", rs.handleWorld)
		worldGroup.GET("/frame", rs.handleFrame)
		worldGroup.GET("/layers/:layer/tiles", rs.handleTiles)
	}

	api.POST("/build", rs.handleBuild)
	api.POST("/build/cancel", rs.handleCancel)
	api.POST("/paint", rs.handlePaint)
	api.GET("/queue", rs.handleQueue)
	api.GET("/server", rs.handleServerInfo)

	rs.router.GET("/health", rs.handleHealth)
}

// GenericResponse представляет общий ответ API
type GenericResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// BuildRequest описывает разметку прямоугольника под строительство или прямая покраска
type BuildRequest struct {
	Rect     game.Rect      `json:"rect"`
	Category block.Category `json:"category"`
}

// CancelRequest описывает сброс разметки в прямоугольнике
type CancelRequest struct {
	Rect game.Rect `json:"rect"`
}

// LayerInfo описывает слой в ответе /api/world
type LayerInfo struct {
	Name    string               `json:"name"`
	Default block.Category       `json:"default"`
	Attrs   world.DrawAttributes `json:"attrs"`
}

// WorldInfo описывает ответ /api/world
type WorldInfo struct {
	Width    int         `json:"width"`
	Height   int         `json:"height"`
	TileSize int         `json:"tile_size"`
	Layers   []LayerInfo `json:"layers"`
	Stats    game.Stats  `json:"stats"`
}

// TileInfo описывает один тайл в ответе /tiles
type TileInfo struct {
	X        int              `json:"x"`
	Y        int              `json:"y"`
	Category block.Category   `json:"category"`
	Variant  world.VariantKey `json:"variant"`
	Overlays []string         `json:"overlays,omitempty"`
}

// run выполняет fn в игровом цикле с таймаутом запроса
func (rs *RestServer) run(c *gin.Context, fn func(*game.Session)) bool {
	ctx, cancel := context.WithTimeout(c.Request.Context(), rs.timeout)
	defer cancel()

	if err := rs.session.Do(ctx, fn); err != nil {
		rs.log.Warn("session action failed: %v", err)
		c.JSON(http.StatusServiceUnavailable, GenericResponse{
			Success: false,
			Message: "Игровой цикл недоступен: " + err.Error(),
		})
		return false
	}
	return true
}

func badRequest(c *gin.Context, message string, err error) {
	if err != nil {
		message += ": " + err.Error()
	}
	c.JSON(http.StatusBadRequest, GenericResponse{Success: false, Message: message})
}

func (rs *RestServer) handleWorld(c *gin.Context) {
	var info WorldInfo
	ok := rs.run(c, func(s *game.Session) {
		stack := s.Stack()
		info = WorldInfo{
			Width:    stack.Width(),
			Height:   stack.Height(),
			TileSize: s.Base().Grid.TileSize(),
			Stats:    s.Stats(),
		}
		for _, l := range stack.Layers() {
			info.Layers = append(info.Layers, LayerInfo{Name: l.Name, Default: l.Default, Attrs: l.Attrs})
		}
	})
	if !ok {
		return
	}
	c.JSON(http.StatusOK, GenericResponse{Success: true, Message: "Мир", Data: info})
}

// handleTiles возвращает тайлы слоя в пиксельном прямоугольнике.
// Без параметров возвращается весь слой.
func (rs *RestServer) handleTiles(c *gin.Context) {
	name := c.Param("layer")
	query := make(map[string]int, 4)
	for _, key := range []string{"x1", "y1", "x2", "y2"} {
		raw, present := c.GetQuery(key)
		if !present {
			continue
		}
		v, err := strconv.Atoi(raw)
		if err != nil {
			badRequest(c, fmt.Sprintf("Неверный параметр %s", key), err)
			return
		}
		query[key] = v
	}

	var (
		tiles    []TileInfo
		layerErr error
	)
	ok := rs.run(c, func(s *game.Session) {
		layer, err := s.Stack().Layer(name)
		if err != nil {
			layerErr = err
			return
		}
		g := layer.Grid
		x2, y2 := g.Width()*g.TileSize()-1, g.Height()*g.TileSize()-1
		if v, set := query["x2"]; set {
			x2 = v
		}
		if v, set := query["y2"]; set {
			y2 = v
		}
		for _, t := range g.TilesInRectangle(query["x1"], query["y1"], x2, y2) {
			pos := t.Position()
			tiles = append(tiles, TileInfo{
				X: pos.X, Y: pos.Y,
				Category: t.Category(),
				Variant:  t.VariantKey(),
				Overlays: t.Overlays(),
			})
		}
	})
	if !ok {
		return
	}
	if errors.Is(layerErr, world.ErrUnknownLayer) {
		c.JSON(http.StatusNotFound, GenericResponse{Success: false, Message: layerErr.Error()})
		return
	}

	if tiles == nil {
		tiles = []TileInfo{}
	}
	c.JSON(http.StatusOK, GenericResponse{
		Success: true,
		Message: "Тайлы получены",
		Data: map[string]interface{}{
			"layer": name,
			"tiles": tiles,
			"total": len(tiles),
		},
	})
}

// handleFrame возвращает кадр композиции. ?format=text — только текст.
func (rs *RestServer) handleFrame(c *gin.Context) {
	var frame *render.Frame
	if !rs.run(c, func(s *game.Session) { frame = s.Frame() }) {
		return
	}
	if c.Query("format") == "text" {
		c.String(http.StatusOK, frame.String())
		return
	}
	c.JSON(http.StatusOK, GenericResponse{Success: true, Message: "Кадр", Data: frame})
}

func (rs *RestServer) handleBuild(c *gin.Context) {
	var req BuildRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Неверный формат запроса", err)
		return
	}

	var (
		jobs     []build.Job
		stageErr error
	)
	if !rs.run(c, func(s *game.Session) { jobs, stageErr = s.Stage(req.Rect, req.Category) }) {
		return
	}
	if stageErr != nil {
		badRequest(c, "Строительство невозможно", stageErr)
		return
	}

	c.JSON(http.StatusAccepted, GenericResponse{
		Success: true,
		Message: "Задания поставлены в очередь",
		Data: map[string]interface{}{
			"jobs":  jobs,
			"total": len(jobs),
		},
	})
}

func (rs *RestServer) handleCancel(c *gin.Context) {
	var req CancelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Неверный формат запроса", err)
		return
	}

	var count int
	if !rs.run(c, func(s *game.Session) { count = s.Cancel(req.Rect) }) {
		return
	}
	c.JSON(http.StatusOK, GenericResponse{
		Success: true,
		Message: "Разметка сброшена",
		Data:    map[string]interface{}{"cancelled": count},
	})
}

func (rs *RestServer) handlePaint(c *gin.Context) {
	var req BuildRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Неверный формат запроса", err)
		return
	}

	var (
		count    int
		paintErr error
	)
	if !rs.run(c, func(s *game.Session) { count, paintErr = s.Paint(req.Rect, req.Category) }) {
		return
	}
	if paintErr != nil {
		badRequest(c, "Покраска невозможна", paintErr)
		return
	}
	c.JSON(http.StatusOK, GenericResponse{
		Success: true,
		Message: "Клетки изменены",
		Data:    map[string]interface{}{"painted": count},
	})
}

func (rs *RestServer) handleQueue(c *gin.Context) {
	var jobs []build.Job
	if !rs.run(c, func(s *game.Session) { jobs = s.Queue() }) {
		return
	}
	c.JSON(http.StatusOK, GenericResponse{
		Success: true,
		Message: "Очередь",
		Data: map[string]interface{}{
			"jobs":  jobs,
			"total": len(jobs),
		},
	})
}

// handleServerInfo возвращает информацию о сервере
func (rs *RestServer) handleServerInfo(c *gin.Context) {
	memoryMB, _ := rs.metrics.GetMemoryUsage()
	cpuPercent, _ := rs.metrics.GetCPUUsage()

	info := map[string]interface{}{
		"version":     Version,
		"name":        "Base Builder",
		"status":      "running",
		"uptime":      rs.metrics.GetUptime(),
		"memory_mb":   fmt.Sprintf("%.1f", memoryMB),
		"cpu_percent": fmt.Sprintf("%.1f", cpuPercent),
		"memory":      rs.metrics.GetDetailedMemoryStats(),
	}

	c.JSON(http.StatusOK, GenericResponse{
		Success: true,
		Message: "Информация о сервере",
		Data:    info,
	})
}

func (rs *RestServer) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().Unix(),
	})
}

// Start запускает REST сервер и блокируется до Stop
func (rs *RestServer) Start() error {
	rs.log.Info("🌐 REST API слушает %s", rs.port)
	if err := rs.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop завершает REST сервер, дожидаясь активных запросов
func (rs *RestServer) Stop(ctx context.Context) error {
	return rs.server.Shutdown(ctx)
}

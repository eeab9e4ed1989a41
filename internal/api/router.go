package api

import (
	"github.com/gin-gonic/gin"
	"github.com/wfunc/card-slot/internal/analytics"
	"github.com/wfunc/card-slot/internal/config"
	"github.com/wfunc/card-slot/internal/game"
	"github.com/wfunc/card-slot/internal/middleware"
	"github.com/wfunc/card-slot/internal/repository"
	"github.com/wfunc/card-slot/internal/utils"
	ws "github.com/wfunc/card-slot/internal/websocket"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Router API路由器
type Router struct {
	engine         *gin.Engine
	db             *gorm.DB
	gameHandler    *GameHandler
	recordHandler  *RecordHandler
	wsHandler      *WebSocketHandler
	authMiddleware *middleware.AuthMiddleware
	log            *zap.Logger
}

// Deps 路由器依赖
type Deps struct {
	DB       *gorm.DB
	Sessions *game.SessionManager
	Hub      *ws.Hub
	JWT      *utils.JWTManager
	Tracker  *analytics.Tracker
	Records  repository.GameRecordRepository
	Rules    *config.GameConfig      // 新对局的规则参数，nil时使用引擎默认值
	WS       *config.WebSocketConfig // WebSocket升级参数，nil时使用默认缓冲
	Logger   *zap.Logger
}

// NewRouter 创建路由器
func NewRouter(deps Deps) *Router {
	// 创建Gin引擎
	engine := gin.New()

	// 全局中间件
	engine.Use(gin.Recovery())
	engine.Use(gin.Logger())

	router := &Router{
		engine:         engine,
		db:             deps.DB,
		gameHandler:    NewGameHandler(deps.Sessions, deps.JWT, deps.Tracker, deps.Rules, deps.Logger),
		recordHandler:  NewRecordHandler(deps.Records, deps.Logger),
		wsHandler:      NewWebSocketHandler(deps.Hub, deps.Sessions, deps.WS, deps.Logger),
		authMiddleware: middleware.NewAuthMiddleware(deps.JWT),
		log:            deps.Logger,
	}

	// 设置路由
	router.setupRoutes()

	return router
}

// setupRoutes 设置路由
func (r *Router) setupRoutes() {
	// 健康检查
	r.engine.GET("/health", r.healthCheck)

	// API v1路由组
	v1 := r.engine.Group("/api/v1")
	{
		// 对局路由
		games := v1.Group("/games")
		{
			// 创建对局不需要令牌，创建时签发
			games.POST("", r.gameHandler.Create)

			// 对局命令需要绑定该会话的令牌
			session := games.Group("/:id")
			session.Use(r.authMiddleware.RequireSession())
			{
				session.GET("", r.gameHandler.Get)
				session.GET("/can-place", r.gameHandler.CanPlace)
				session.POST("/place", r.gameHandler.Place)
				session.POST("/resolve", r.gameHandler.Resolve)
				session.POST("/discard", r.gameHandler.Discard)
				session.POST("/end-turn", r.gameHandler.EndTurn)
				session.DELETE("", r.gameHandler.Close)
			}
		}

		// 统计事件路由
		events := v1.Group("/events")
		{
			events.POST("/play-again", r.gameHandler.PlayAgain)
		}

		// 对局记录路由（只读，无需令牌）
		records := v1.Group("/records")
		{
			records.GET("", r.recordHandler.List)
			records.GET("/stats", r.recordHandler.Stats)
			records.GET("/:id", r.recordHandler.GetBySession)
		}
	}

	// WebSocket路由
	wsGroup := r.engine.Group("/ws")
	wsGroup.Use(r.authMiddleware.OptionalSession())
	{
		wsGroup.GET("/game", r.wsHandler.GameWebSocket)
	}

	// 静态文件服务
	r.engine.Static("/static", "./static")

	// 404处理
	r.engine.NoRoute(func(c *gin.Context) {
		c.JSON(404, gin.H{
			"code":    "NOT_FOUND",
			"message": "接口不存在",
		})
	})
}

// healthCheck 健康检查
func (r *Router) healthCheck(c *gin.Context) {
	// 检查数据库连接
	sqlDB, err := r.db.DB()
	if err != nil {
		c.JSON(500, gin.H{
			"status":  "unhealthy",
			"message": "数据库连接失败",
		})
		return
	}

	if err := sqlDB.Ping(); err != nil {
		c.JSON(500, gin.H{
			"status":  "unhealthy",
			"message": "数据库ping失败",
		})
		return
	}

	c.JSON(200, gin.H{
		"status":  "healthy",
		"message": "服务运行正常",
	})
}

// Run 运行服务器
func (r *Router) Run(addr string) error {
	r.log.Info("启动API服务", zap.String("address", addr))
	return r.engine.Run(addr)
}

// GetEngine 获取Gin引擎（用于测试）
func (r *Router) GetEngine() *gin.Engine {
	return r.engine
}

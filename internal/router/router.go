package router

import (
	"time"

	"casitas/internal/config"
	"casitas/internal/handler"
	"casitas/internal/infra"
	"casitas/internal/middleware"
	"casitas/internal/model"
	"casitas/internal/repository"
	"casitas/internal/service"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB
// notificador is the email dispatcher; nil disables notifications.
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, notificador service.Notificador, smtpCB *infra.CircuitBreaker) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS(cfg.Origenes()))
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(rdb, limite(cfg.RateLimitPorMinuto, 1000), time.Minute))

	// ── Repositories ─────────────────────────────────────────────────────────
	usuarioRepo := repository.NewUsuarioRepository(db)
	residenteRepo := repository.NewResidenteRepository(db)
	espacioRepo := repository.NewEspacioComunRepository(db)
	gastoRepo := repository.NewGastoComunRepository(db)
	multaRepo := repository.NewMultaRepository(db)
	reservaRepo := repository.NewReservaRepository(db)
	pagoRepo := repository.NewPagoRepository(db)
	registroRepo := repository.NewRegistroRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(usuarioRepo, residenteRepo, cfg)
	conciliacionSvc := service.NewConciliacionService(gastoRepo, cfg)
	gastoSvc := service.NewGastoComunService(gastoRepo, residenteRepo, registroRepo, notificador, cfg)
	multaSvc := service.NewMultaService(multaRepo, residenteRepo, registroRepo, conciliacionSvc, notificador, cfg)
	morosidadSvc := service.NewMorosidadService(gastoRepo, multaRepo, residenteRepo, registroRepo, notificador, cfg)
	ajusteSvc := service.NewAjusteService(gastoRepo, multaRepo, registroRepo, conciliacionSvc, cfg)
	reservaSvc := service.NewReservaService(reservaRepo, espacioRepo, residenteRepo, registroRepo, conciliacionSvc, notificador, cfg)
	espacioSvc := service.NewEspacioService(espacioRepo, cfg)
	pagoSvc := service.NewPagoService(pagoRepo, gastoRepo, multaRepo, reservaRepo, residenteRepo, registroRepo, conciliacionSvc, notificador, cfg)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	usuariosH := handler.NewUsuariosHandler(authSvc)
	espaciosH := handler.NewEspaciosHandler(espacioSvc)
	gastosH := handler.NewGastosHandler(gastoSvc, ajusteSvc)
	multasH := handler.NewMultasHandler(multaSvc, ajusteSvc, morosidadSvc)
	reservasH := handler.NewReservasHandler(reservaSvc)
	pagosH := handler.NewPagosHandler(pagoSvc, cfg.WebhookSecret)
	registrosH := handler.NewRegistrosHandler(ajusteSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb, smtpCB))

	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(rdb, limite(cfg.LoginLimitPorMinuto, 20)), authH.Login)
	}

	// Gateway webhook: shared secret instead of JWT
	r.POST("/v1/pagos/confirmacion", pagosH.Confirmacion)

	todos := middleware.RequireRole(model.RolSuperAdministrador, model.RolAdministrador, model.RolResidente)
	admin := middleware.RequireRole(model.RolSuperAdministrador, model.RolAdministrador)

	v1 := r.Group("/v1", middleware.JWTAuth(cfg.JWTSecret))
	{
		usuarios := v1.Group("/usuarios", admin)
		{
			usuarios.GET("", usuariosH.Listar)
			usuarios.POST("", usuariosH.Crear)
		}

		espacios := v1.Group("/espacios-comunes")
		{
			espacios.GET("", todos, espaciosH.Listar)
			espacios.POST("", admin, espaciosH.Crear)
		}

		gastos := v1.Group("/gastos-comunes")
		{
			gastos.GET("", todos, gastosH.Listar)
			gastos.GET("/:id", todos, gastosH.Obtener)
			gastos.POST("", admin, gastosH.Crear)
			gastos.POST("/:id/notificar", admin, gastosH.Notificar)
			gastos.GET("/:id/historial", todos, gastosH.Historial)
			gastos.POST("/:id/ajustes", admin, gastosH.Ajustar)
			gastos.POST("/:id/ajustes/:registro_id/revertir", admin, gastosH.RevertirAjuste)
		}

		multas := v1.Group("/multas")
		{
			multas.GET("", todos, multasH.Listar)
			multas.POST("/procesar-atrasos", admin, multasH.ProcesarAtrasos)
			multas.GET("/:id", todos, multasH.Obtener)
			multas.POST("", admin, multasH.Crear)
			multas.GET("/:id/historial", todos, multasH.Historial)
			multas.POST("/:id/ajustes", admin, multasH.Ajustar)
			multas.POST("/:id/ajustes/:registro_id/revertir", admin, multasH.RevertirAjuste)
		}

		reservas := v1.Group("/reservas")
		{
			reservas.GET("", todos, reservasH.Listar)
			reservas.POST("", todos, reservasH.Crear)
			reservas.GET("/:id", todos, reservasH.Obtener)
			reservas.POST("/:id/cancelar", todos, reservasH.Cancelar)
			reservas.DELETE("/:id", admin, reservasH.Eliminar)
		}

		pagos := v1.Group("/pagos")
		{
			pagos.GET("", todos, pagosH.Listar)
			pagos.POST("", todos, pagosH.Crear)
			pagos.POST("/orden", todos, pagosH.PrepararOrden)
			pagos.GET("/pendientes/:residente_id", todos, pagosH.Pendientes)
			pagos.GET("/:id", todos, pagosH.Obtener)
			pagos.PUT("/:id", admin, pagosH.Actualizar)
			pagos.DELETE("/:id", admin, pagosH.Eliminar)
		}

		registros := v1.Group("/registros", admin)
		{
			registros.GET("", registrosH.Listar)
			registros.GET("/:id", registrosH.Obtener)
			registros.POST("/:id/revertir", registrosH.Revertir)
		}
	}

	// Swagger UI outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}

func limite(n, porDefecto int) int {
	if n <= 0 {
		return porDefecto
	}
	return n
}

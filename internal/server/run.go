package server

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"

	"github.com/setavenger/blindbit-chainstore/internal/config"
	"github.com/setavenger/blindbit-chainstore/internal/logging"
)

func NewRouter(api *ApiHandler) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger)
	router.Use(gzip.Gzip(gzip.DefaultCompression))

	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET"},
		AllowHeaders: []string{"Content-Type", "Authorization"},
		MaxAge:       12 * time.Hour,
	}))

	router.GET("/info", api.GetInfo)
	router.GET("/block-height", api.GetBestBlockHeight)
	router.GET("/block-hash/:blockheight", FetchConfirmedHeaderMiddleware(api), api.GetBlockHashByHeight)
	router.GET("/block/:hash", FetchHeaderMiddleware(api), api.GetBlock)
	router.GET("/block/:hash/confirmable", FetchHeaderMiddleware(api), api.GetBlockConfirmable)
	router.GET("/tx/:hash", api.GetTx)
	router.GET("/filter/:blockheight", FetchConfirmedHeaderMiddleware(api), api.GetBlockFilter)

	return router
}

func RunServer(api *ApiHandler) error {
	gin.SetMode(gin.ReleaseMode)

	logging.L.Info().Msgf("Starting http server on host %s", config.HTTPHost)
	if err := NewRouter(api).Run(config.HTTPHost); err != nil {
		logging.L.Err(err).Msg("could not run server")
		return err
	}
	return nil
}

// requestLogger routes gin's access log through zerolog.
func requestLogger(c *gin.Context) {
	start := time.Now()
	c.Next()
	logging.L.Debug().
		Str("method", c.Request.Method).
		Str("path", c.Request.URL.Path).
		Int("status", c.Writer.Status()).
		Dur("took", time.Since(start)).
		Msg("http request")
}

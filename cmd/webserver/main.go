package main

import (
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/hoshinoai12345678/AI-Health-Assistant/internal/config"
	"github.com/hoshinoai12345678/AI-Health-Assistant/internal/store"
	"github.com/hoshinoai12345678/AI-Health-Assistant/internal/web"
)

func main() {
	_ = godotenv.Load()

	logCfg := zap.NewProductionConfig()
	if os.Getenv("HEALTH_ASSISTANT_DEBUG") != "" {
		logCfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	logger, err := logCfg.Build()
	if err != nil {
		os.Exit(1)
	}
	defer logger.Sync()

	cfg, err := config.Load(os.Getenv("HEALTH_ASSISTANT_CONFIG"))
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	st, err := store.Open(cfg)
	if err != nil {
		logger.Fatal("open session store", zap.Error(err))
	}
	defer st.Close()

	handler := web.NewHandler(cfg, st, logger)
	router := gin.Default()
	handler.RegisterRoutes(router)

	addr := cfg.Web.ListenAddress
	if addr == "" {
		addr = ":9000"
	}
	logger.Info("web adapter listening", zap.String("addr", addr), zap.String("backend", cfg.Backend.BaseURL))

	if err := router.Run(addr); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

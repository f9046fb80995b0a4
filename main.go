package main

import (
	"time"

	"github.com/cppla/questhub/config"
	"github.com/cppla/questhub/models"
	"github.com/cppla/questhub/routes"
	"github.com/cppla/questhub/utils"
)

func main() {
	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}
	defer func() { _ = utils.Logger.Sync() }()

	db := config.InitDatabase(models.AllModels()...)

	r := routes.SetupRouter(db)

	stopSweeper := utils.StartExpirySweeper(5 * time.Minute)
	defer stopSweeper()

	addr := ":" + cfg.AppPort
	var err error
	if cfg.TLSCertFile != "" && cfg.TLSKeyFile != "" {
		utils.Sugar.Infof("Starting TLS server on port %s (graceful)", cfg.AppPort)
		err = utils.GraceServerTLS(addr, cfg.TLSCertFile, cfg.TLSKeyFile, r)
	} else {
		utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
		err = utils.GraceServer(addr, r)
	}
	if err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}

package main

import (
	"os"

	"github.com/DRSN-tech/supplier-imports/internal/app"
	config "github.com/DRSN-tech/supplier-imports/internal/cfg"
	"github.com/DRSN-tech/supplier-imports/pkg/logger"
)

//	@title						Supplier Imports API
//	@version					1.0
//	@description				Импорт товаров внешних поставщиков (Alibaba, AliExpress, Jumia) в каталог.
//	@BasePath					/api
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Токен администратора в формате "Bearer <token>"
func main() {
	log := logger.NewSlogLogger()

	cfg, err := config.Load(log)
	if err != nil {
		log.Errorf(err, "failed to load config")
		os.Exit(1)
	}

	application, err := app.NewApp(cfg, log)
	if err != nil {
		log.Errorf(err, "failed to initialize app")
		os.Exit(1)
	}

	if err := application.Run(); err != nil {
		os.Exit(1)
	}
}

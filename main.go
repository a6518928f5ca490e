package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/daccred/txlens.attest.so/config"
	"github.com/daccred/txlens.attest.so/controllers"
	"github.com/daccred/txlens.attest.so/db"
	"github.com/daccred/txlens.attest.so/lens"
	"github.com/daccred/txlens.attest.so/server"
	"github.com/daccred/txlens.attest.so/tokens"
)

func main() {
	environment := flag.String("e", "development", "")
	flag.Usage = func() {
		fmt.Println("Usage: server -e {mode}")
		os.Exit(1)
	}
	flag.Parse()
	config.Init(*environment)
	cfg := config.GetConfig()

	if level, err := logrus.ParseLevel(cfg.GetString("log_level")); err == nil {
		logrus.SetLevel(level)
	}
	logger := logrus.WithField("service", "txlens")

	var store tokens.Store
	if databaseURL := cfg.GetString("database_url"); databaseURL != "" {
		dbConn, err := db.Connect(databaseURL)
		if err != nil {
			logger.WithError(err).Fatal("failed to connect to database")
		}
		defer dbConn.Close()
		store = db.NewTokenStore(dbConn)
	}

	var source tokens.Source
	if tokenAPI := cfg.GetString("token_api_url"); tokenAPI != "" {
		source = tokens.NewHTTPSource(tokenAPI)
	}

	resolver := tokens.NewResolver(source, store, cfg.GetString("network"), logger)
	engine := lens.NewEngine(resolver, logger)
	lensController := controllers.NewLensController(engine, resolver)

	router := server.NewRouter(lensController)
	srv := &server.Server{}
	if err := srv.Run(router); err != nil {
		logger.WithError(err).Fatal("server stopped")
	}
}

package main

import (
	"context"
	"log"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/stellar/go/network"

	"github.com/daccred/txlens.attest.so/db"
	"github.com/daccred/txlens.attest.so/lens"
	"github.com/daccred/txlens.attest.so/models"
	"github.com/daccred/txlens.attest.so/tokens"
)

func main() {
	logger := logrus.WithField("service", "txlens")

	var store tokens.Store
	if databaseURL := os.Getenv("DATABASE_URL"); databaseURL != "" {
		log.Println("Testing database connection...")
		dbConn, err := db.Connect(databaseURL)
		if err != nil {
			log.Fatalf("failed to connect to database: %v", err)
		}
		defer dbConn.Close()
		store = db.NewTokenStore(dbConn)
		log.Println("✅ Database connection successful!")
	} else {
		log.Println("DATABASE_URL not set; skipping database check")
	}

	log.Println("Testing reconstruction pipeline...")
	log.Printf("Network: %s", network.TestNetworkPassphrase)

	resolver := tokens.NewResolver(nil, store, "testnet", logger)
	engine := lens.NewEngine(resolver, logger)

	result := engine.Reconstruct(context.Background(), lens.Input{
		Operations: []models.RawOperation{{
			Kind:          "payment",
			SourceAccount: "GCLWGQPMKXQSPF776IU33AH4PZNOOWNAWGGKVTBQMIC5IMKUNP3E6NVU",
			To:            "GAS4V4O2B7DW5T7IQRPEEVCRXMDZESKISR7DVIGKZQYYV3OSQ5SH5LVP",
			Amount:        "10.0000000",
			AssetType:     "native",
		}},
		Effects: []models.RawEffect{
			{
				Kind:      "account_debited",
				Account:   "GCLWGQPMKXQSPF776IU33AH4PZNOOWNAWGGKVTBQMIC5IMKUNP3E6NVU",
				Amount:    "10.0000000",
				AssetType: "native",
			},
			{
				Kind:      "account_credited",
				Account:   "GAS4V4O2B7DW5T7IQRPEEVCRXMDZESKISR7DVIGKZQYYV3OSQ5SH5LVP",
				Amount:    "10.0000000",
				AssetType: "native",
			},
		},
	})

	if len(result.OperationEffects[0]) != 2 {
		log.Fatalf("expected 2 matched effects, got %d", len(result.OperationEffects[0]))
	}
	if len(result.Deltas) != 2 {
		log.Fatalf("expected 2 balance deltas, got %d", len(result.Deltas))
	}
	log.Println("✅ Reconstruction pipeline healthy!")

	log.Println("\n🎉 All checks passed! The lens service is ready to run.")
}

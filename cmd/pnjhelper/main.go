package main

import (
	"fmt"
	"log"
	"os"

	"github.com/pnjanonbot/PNJHelper/bot"
	"github.com/pnjanonbot/PNJHelper/core/buildinfo"
	corecmd "github.com/pnjanonbot/PNJHelper/core/cmd"
	coreconfig "github.com/pnjanonbot/PNJHelper/core/config"
	"github.com/pnjanonbot/PNJHelper/core/logger"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "version" {
		fmt.Printf("pnjhelper %s (%s) %s\n", buildinfo.Version, buildinfo.Commit, buildinfo.Date)
		return
	}

	err := corecmd.Run(corecmd.Options{
		DefaultConfigPath: "config.yaml",
		LoadConfig:        coreconfig.Load,
		Bootstrap: func(cfg *coreconfig.Config) (corecmd.TelegramApp, error) {
			if err := logger.InitLogger(cfg); err != nil {
				return nil, err
			}
			return bot.New(cfg)
		},
	})
	if err != nil {
		log.Fatalf("pnjhelper: %v", err)
	}
}

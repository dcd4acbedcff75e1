package main

import (
	"fmt"
	"log"

	"github.com/AlexBit99/MyMISiSAdventures/app"
	"github.com/AlexBit99/MyMISiSAdventures/core/cmd"
)

func main() {
	err := cmd.Run(cmd.Options{
		ConfigEnvVar:      "CONFIG_PATH",
		DefaultConfigPath: "config.yaml",
		LoadConfig: func(path string) (cmd.ConfigCarrier, error) {
			return app.Load(path)
		},
		Bootstrap: func(carrier cmd.ConfigCarrier) (cmd.TelegramApp, error) {
			cfg, ok := carrier.(*app.Config)
			if !ok {
				return nil, fmt.Errorf("unexpected config type %T", carrier)
			}
			return app.New(cfg)
		},
	})
	if err != nil {
		log.Fatalf("essaybot: %v", err)
	}
}

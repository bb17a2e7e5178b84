package main

import (
	"fmt"

	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/letterturn/go/internal/game/eventbus"
	"github.com/mcdev12/letterturn/go/internal/game/gateway"
	"github.com/mcdev12/letterturn/go/internal/game/rooms"
	"github.com/mcdev12/letterturn/go/internal/game/timers"
	"github.com/mcdev12/letterturn/go/internal/game/turn"
	"golang.org/x/time/rate"
)

type Services struct {
	Gateway *gateway.Service
	Game    *turn.App
	Timers  *timers.Registry
}

func setupServices(cfg *Config) (*Services, error) {
	// Wire up dependency injection chain
	// Publisher → Gateway → Store/Timers/Deck → App → Gateway handler

	var publisher eventbus.Publisher = eventbus.NopPublisher{}
	if cfg.NATSURL != "" {
		natsCfg := eventbus.DefaultNATSConfig()
		natsCfg.URL = cfg.NATSURL
		p, err := eventbus.NewNATSPublisher(natsCfg)
		if err != nil {
			return nil, fmt.Errorf("failed to create event mirror: %w", err)
		}
		publisher = p
	}

	connCfg := gateway.DefaultConnectionConfig()
	connCfg.RateLimit = rate.Limit(cfg.RateLimit)
	connCfg.RateBurst = cfg.RateBurst
	gatewayService := gateway.NewService(gateway.Config{ConnectionConfig: connCfg}, publisher)

	clock := clockwork.NewRealClock()
	registry := timers.NewRegistry(clock)
	app := turn.NewApp(rooms.NewStore(), registry, cfg.Game.Deck(), gatewayService.Broadcaster(), clock, turn.Config{
		TurnTimeLimit:  cfg.Game.TurnTimeLimit(),
		RoomCodeLength: cfg.Game.RoomCodeLength,
	})
	gatewayService.Attach(app, app)

	return &Services{
		Gateway: gatewayService,
		Game:    app,
		Timers:  registry,
	}, nil
}

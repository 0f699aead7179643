package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"skipjack/internal/command/music"
	"skipjack/internal/config"
	"skipjack/internal/core"
	"skipjack/internal/discord"
	"skipjack/internal/logging"
	"skipjack/internal/music/engine"
	"skipjack/internal/music/resolver"
	"skipjack/internal/session"
	"skipjack/internal/storage"
	"skipjack/internal/version"
	"skipjack/internal/web"
)

func main() {
	cfg, err := config.New()
	if err != nil {
		fallback := logging.New("info", "")
		fallback.Fatal().Err(err).Msg("configuration error")
	}

	log := logging.New(cfg.LogLevel, cfg.LogFile)
	log.Info().Str("app", version.AppName).Str("build", version.BuildDate).Msg("starting")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := storage.New(cfg.StoragePath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open storage")
	}
	defer store.Close()

	promReg := prometheus.NewRegistry()
	promReg.MustRegister(collectors.NewGoCollector())
	metrics := web.NewMetrics(promReg)

	bot, err := discord.New(cfg, log.With().Str("component", "bot").Logger())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create bot")
	}
	dg := bot.Session()

	notifier := discord.NewNotifier(dg, log.With().Str("component", "notify").Logger())
	notifier.OnTrack(metrics.TracksPlayed.Inc)

	presence := discord.NewPresence(dg, log.With().Str("component", "presence").Logger())
	defer presence.Close()

	voice := engine.NewVoice(dg, log.With().Str("component", "voice").Logger())
	res := resolver.New(log.With().Str("component", "resolver").Logger())

	sessions := session.NewRegistry(voice, res, notifier, presence,
		log.With().Str("component", "session").Logger())
	sessions.OnCountChange(func(n int) { metrics.ActiveSessions.Set(float64(n)) })
	defer sessions.CloseAll()

	music.RegisterAll(
		&music.Deps{
			Sessions: sessions,
			Members:  discord.NewMembers(dg),
			Presence: presence,
			Cfg:      cfg,
			Log:      log.With().Str("component", "music").Logger(),
			OnVote:   func(outcome string) { metrics.Votes.WithLabelValues(outcome).Inc() },
		},
		core.WithGuildOnly(),
		core.WithCommandLog(log.With().Str("component", "command").Logger(), store),
	)
	bot.OnCommand(func(name string) { metrics.Commands.WithLabelValues(name).Inc() })

	if cfg.StatusAddr != "" {
		srv := web.NewServer(cfg.StatusAddr, promReg, log.With().Str("component", "web").Logger())
		go func() {
			if err := srv.Run(ctx); err != nil {
				log.Error().Err(err).Msg("status server failed")
			}
		}()
	}

	if err := bot.Run(ctx); err != nil {
		log.Fatal().Err(err).Msg("bot stopped")
	}
	log.Info().Msg("goodbye")
}

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Kjarrigan/base-builder/internal/api"
	"github.com/Kjarrigan/base-builder/internal/assets"
	"github.com/Kjarrigan/base-builder/internal/config"
	"github.com/Kjarrigan/base-builder/internal/eventbus"
	"github.com/Kjarrigan/base-builder/internal/game"
	"github.com/Kjarrigan/base-builder/internal/logging"
	"github.com/Kjarrigan/base-builder/internal/observability"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML config (default: $BUILDER_CONFIG)")
	flag.Parse()

	if err := logging.InitDefaultLogger("server"); err != nil {
		log.Fatalf("❌ Ошибка инициализации логирования: %v", err)
	}
	defer logging.CloseDefaultLogger()

	if err := run(*configPath); err != nil {
		logging.Error("❌ %v", err)
		logging.CloseDefaultLogger()
		os.Exit(1)
	}
}

func run(configPath string) error {
	logging.Info("🏗️ Запуск Base Builder...")

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("конфигурация: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// === ТЕЛЕМЕТРИЯ ===
	shutdownTelemetry := observability.Noop()
	if cfg.Telemetry.Enabled {
		shutdownTelemetry, err = observability.InitTelemetry(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.Endpoint)
		if err != nil {
			return fmt.Errorf("телеметрия: %w", err)
		}
	}
	defer func() {
		if err := shutdownTelemetry(context.Background()); err != nil {
			logging.Warn("Ошибка остановки телеметрии: %v", err)
		}
	}()

	// Индекс ассетов проверяется до запуска цикла
	index, err := assets.Load(cfg.Assets.Manifest)
	if err != nil {
		return err
	}
	logging.Info("🖼️ Тайлсет %s: %d вариантов", index.Image, index.Len())

	// === ШИНА СОБЫТИЙ ===
	bus := eventbus.NewMemoryBus(1024)
	eventbus.Init(bus)
	defer bus.Close()
	if _, err := eventbus.StartLoggingListener(bus); err != nil {
		return fmt.Errorf("event listener: %w", err)
	}
	exporter := eventbus.NewMetricsExporter(bus, nil)
	exporter.Start(time.Second)
	defer exporter.Stop()

	// === ИГРОВАЯ СЕССИЯ ===
	session, err := game.NewSession(game.Options{
		Width:         cfg.World.Width,
		Height:        cfg.World.Height,
		TileSize:      cfg.World.TileSize,
		Generate:      cfg.World.Generate,
		Seed:          cfg.World.Seed,
		DrainInterval: cfg.Build.DrainInterval,
		FrameInterval: cfg.Build.FrameInterval,
		Assets:        index,
		Bus:           bus,
		Metrics:       game.NewMetrics(nil),
	})
	if err != nil {
		return err
	}

	loopDone := make(chan error, 1)
	go func() { loopDone <- session.Run(ctx) }()

	// === REST API ===
	restPort := fmt.Sprintf(":%d", cfg.Server.GetRESTPort())
	server := api.NewRestServer(api.Config{Port: restPort, Session: session})
	serverErr := make(chan error, 1)
	go func() { serverErr <- server.Start() }()

	logging.Info("✅ Все сервисы запущены")
	logging.Info("   🌐 REST API: http://localhost%s", restPort)
	logging.Info("   ❤️  Health check: http://localhost%s/health", restPort)
	logging.Info("   📈 Метрики: http://localhost%s/metrics", restPort)
	logging.Info("💡 Пример: curl -X POST http://localhost%s/api/build -d '{\"rect\":{\"x1\":0,\"y1\":0,\"x2\":160,\"y2\":0},\"category\":\"Wall\"}'", restPort)

	select {
	case <-ctx.Done():
		logging.Info("📡 Получен сигнал, завершение работы...")
	case err := <-serverErr:
		if err != nil {
			stop()
			<-loopDone
			return fmt.Errorf("REST API: %w", err)
		}
	}

	// === GRACEFUL SHUTDOWN ===
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Stop(shutdownCtx); err != nil {
		logging.Error("❌ Ошибка остановки REST API: %v", err)
	}
	stop()
	if err := <-loopDone; err != nil {
		logging.Error("❌ Игровой цикл: %v", err)
	}

	logging.Info("👋 Сервер успешно остановлен")
	return nil
}

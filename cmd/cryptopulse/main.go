package main

import (
	"context"
	"flag"
	"os"
	"path/filepath"
	"time"

	"github.com/mengeric/cryptopulse-go/config"
	"github.com/mengeric/cryptopulse-go/logging"
	"github.com/mengeric/cryptopulse-go/pulse"
	"github.com/mengeric/cryptopulse-go/storage/gormstore"
)

func main() {
	cfgPath := flag.String("config", "config.yaml", "YAML 配置文件路径")
	envPath := flag.String("env", ".env", ".env 文件路径")
	flag.Parse()

	config.LoadDotenv(*envPath)
	cfg, err := config.Load(*cfgPath)
	if err != nil {
		logging.L().Errorf(context.Background(), "load config failed: %v", err)
		os.Exit(1)
	}

	if dir := filepath.Dir(cfg.Sqlite.Path); dir != "." {
		_ = os.MkdirAll(dir, 0o755)
	}
	store, err := gormstore.Open(cfg.Sqlite.Path)
	if err != nil {
		logging.L().Errorf(context.Background(), "open sqlite failed: path=%s err=%v", cfg.Sqlite.Path, err)
		os.Exit(1)
	}

	opts := []pulse.Option{
		pulse.WithListenAddr(cfg.Addr()),
		pulse.WithSource(cfg.Source.Name, cfg.Source.Coin, cfg.Source.Currency),
		pulse.WithStore(store),
		pulse.WithHorizon(cfg.Horizon),
		pulse.WithMinTrainRows(cfg.MinTrainRows),
	}
	if cfg.SampleSeconds > 0 {
		opts = append(opts, pulse.WithSampleEvery(time.Duration(cfg.SampleSeconds)*time.Second))
	}
	if cfg.TrainSeconds > 0 {
		opts = append(opts, pulse.WithTrainEvery(time.Duration(cfg.TrainSeconds)*time.Second))
	}

	ctx, stop := pulse.WithSignalCancel(context.Background())
	defer stop()

	srv := pulse.NewServer(opts...)
	srv.Start(ctx)
	if srv.Addr() == "" {
		// 监听失败已在 Start 内记录
		os.Exit(1)
	}
	<-ctx.Done()
	logging.L().Info(context.Background(), "shutting down")
}

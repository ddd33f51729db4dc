package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	gsgame "github.com/huoshan017/gsgame"
	"github.com/huoshan017/gsgame/actor"
	"github.com/huoshan017/gsgame/game"
	"github.com/huoshan017/gsgame/gateway"
	"github.com/huoshan017/gsgame/msg"
	"github.com/huoshan017/gsgame/store"
)

func main() {
	var (
		addr            = flag.String("addr", ":9000", "listen address")
		gatewayId       = flag.Int("gateway_id", 1, "gateway id")
		codecName       = flag.String("codec", "msgpack", "message body codec: msgpack/json/gob")
		hbTimeout       = flag.Duration("heartbeat_timeout", 60*time.Second, "session heartbeat timeout")
		hbInterval      = flag.Duration("heartbeat_interval", 15*time.Second, "session liveness scan interval")
		idleTimeout     = flag.Duration("idle_timeout", 5*time.Minute, "actor idle timeout")
		frameRate       = flag.Int("frame_rate", 15, "default room frame rate")
		maxPlayers      = flag.Int("max_players", 10, "room max players")
		ratingThreshold = flag.Int("rating_threshold", 100, "matchmaking rating threshold")
	)
	flag.Parse()

	logger := gsgame.GetLogger()
	defer logger.Sync()

	if err := msg.SetCodec(*codecName); err != nil {
		logger.Errorf("set codec failed: %v", err)
		os.Exit(1)
	}

	st := store.NewMemStore()
	rt := actor.NewRuntime(
		actor.WithStore(st),
		actor.WithIdleTimeout(*idleTimeout),
	)

	cfg := game.DefaultConfig()
	cfg.DefaultFrameRate = int32(*frameRate)
	cfg.RoomMaxPlayers = int32(*maxPlayers)
	cfg.MatchRatingThreshold = int32(*ratingThreshold)
	game.RegisterKinds(rt, cfg)

	gw := gateway.NewGateway(rt,
		gateway.WithGatewayId(int32(*gatewayId)),
		gateway.WithHeartbeatTimeout(*hbTimeout),
		gateway.WithHeartbeatInterval(*hbInterval),
	)
	if err := gw.Listen(*addr); err != nil {
		logger.Errorf("listen failed: %v", err)
		os.Exit(1)
	}
	logger.Infof("gamesvr %v listening on %v", *gatewayId, gw.Addr())

	errCh := make(chan error, 1)
	go func() {
		errCh <- gw.Serve()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			logger.Errorf("serve failed: %v", err)
		}
	case sig := <-sigCh:
		fmt.Println()
		logger.Infof("received signal %v, shutting down", sig)
	}

	gw.Close()
	rt.Stop()
	logger.Infof("gamesvr stopped")
}

package serve

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	cmdUtil "github.com/ValentinKolb/kvgate/cmd/util"
	"github.com/ValentinKolb/kvgate/gateway"
	"github.com/ValentinKolb/kvgate/rpc/common"
	"github.com/ValentinKolb/kvgate/rpc/server"
	"github.com/VictoriaMetrics/metrics"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"
)

var (
	serveCmdConfig = &common.ServerConfig{}
	ServeCmd       = &cobra.Command{
		Use:     "serve",
		Short:   "Start the kvgate server",
		Long:    `Start the kvgate server with the specified configuration. The configuration can be set via command line flags or environment variables. The format of the environment variables is KVGATE_<flag> (e.g. KVGATE_TIMEOUT=15)`,
		PreRunE: processConfig,
		RunE:    run,
	}
)

func init() {
	// initialize viper
	cobra.OnInitialize(cmdUtil.InitConfig)

	// add flags
	key := "shards"
	ServeCmd.PersistentFlags().String(key, "100", cmdUtil.WrapString("Comma-separated list of shard IDs to serve. Every shard has its own store"))

	key = "timeout"
	ServeCmd.PersistentFlags().Int64(key, 5, cmdUtil.WrapString("Timeout in seconds for writing a response"))

	key = "endpoint"
	ServeCmd.PersistentFlags().String(key, cmdUtil.DefaultServerEndpoint, cmdUtil.WrapString("The address on which the RPC API will listen (e.g. 127.0.0.1:10818, /tmp/kvgate.sock, ...)"))

	key = "workers-per-conn"
	ServeCmd.PersistentFlags().Int(key, 100, cmdUtil.WrapString("Maximum number of requests processed in parallel per connection (ignored for http)"))

	key = "buffer-size"
	ServeCmd.PersistentFlags().Int(key, 0, cmdUtil.WrapString("Size of the read buffers in KB (0 uses the default of the transport, ignored for http)"))

	key = "layers"
	ServeCmd.PersistentFlags().String(key, "trace,recovery,metrics,logging", cmdUtil.WrapString("Comma-separated list of pipeline layers, outermost first (trace, recovery, metrics, logging)"))

	key = "log-level"
	ServeCmd.PersistentFlags().String(key, "info", cmdUtil.WrapString("LogLevel is the level at which logs will be output (debug, info, warn, error)"))

	key = "gateway-endpoint"
	ServeCmd.PersistentFlags().String(key, "", cmdUtil.WrapString("If set, an HTTP gateway for the first shard is served on this address (e.g. "+cmdUtil.DefaultGatewayEndpoint+")"))
}

// processConfig reads the configuration from the command line flags and environment variables and converts them to the server configuration
func processConfig(cmd *cobra.Command, _ []string) error {
	// bind the flags to viper
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	shards, err := cmdUtil.ParseShards(viper.GetString("shards"))
	if err != nil {
		return err
	}

	serveCmdConfig.Shards = shards
	serveCmdConfig.Layers = cmdUtil.ParseList(viper.GetString("layers"))
	serveCmdConfig.TimeoutSecond = viper.GetInt64("timeout")
	serveCmdConfig.LogLevel = viper.GetString("log-level")
	serveCmdConfig.Transport = common.ServerTransportConfig{
		Endpoint:       viper.GetString("endpoint"),
		WorkersPerConn: viper.GetInt("workers-per-conn"),
		BufferSize:     viper.GetInt("buffer-size") * 1024,
	}

	return nil
}

// run starts the kvgate server and the optional embedded gateway
func run(cmd *cobra.Command, _ []string) error {
	if err := cmdUtil.InitLogging(serveCmdConfig.LogLevel); err != nil {
		return err
	}

	s, err := cmdUtil.GetSerializer()
	if err != nil {
		return err
	}

	t, err := cmdUtil.GetServerTransport()
	if err != nil {
		return err
	}

	// server pipelines and gateway share one metrics set
	set := metrics.NewSet()

	serv, err := server.NewRPCServer(*serveCmdConfig, t, s, server.WithMetricsSet(set))
	if err != nil {
		return err
	}

	var gw *gateway.Gateway
	if endpoint := viper.GetString("gateway-endpoint"); endpoint != "" {
		shardId := serveCmdConfig.Shards[0]
		handler, ok := serv.Handler(shardId)
		if !ok {
			return fmt.Errorf("shard %d not found", shardId)
		}
		gw, err = gateway.New(common.GatewayConfig{
			Listen:   endpoint,
			ShardID:  shardId,
			LogLevel: serveCmdConfig.LogLevel,
		}, handler, gateway.WithMetricsSet(set))
		if err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(serv.Serve)
	if gw != nil {
		g.Go(gw.Run)
	}
	g.Go(func() error {
		<-ctx.Done()
		if gw != nil {
			_ = gw.Close()
		}
		return serv.Close()
	})

	return g.Wait()
}

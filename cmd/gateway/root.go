package gateway

import (
	"os"
	"os/signal"
	"syscall"

	cmdUtil "github.com/ValentinKolb/kvgate/cmd/util"
	"github.com/ValentinKolb/kvgate/gateway"
	"github.com/ValentinKolb/kvgate/rpc/client"
	"github.com/ValentinKolb/kvgate/rpc/common"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"
)

var (
	gatewayCmdConfig = &common.GatewayConfig{}
	GatewayCmd       = &cobra.Command{
		Use:     "gateway",
		Short:   "Start the HTTP gateway",
		Long:    `Start an HTTP gateway that forwards requests to a kvgate server. All requests share one RPC client. The configuration can be set via command line flags or environment variables (KVGATE_<flag>).`,
		PreRunE: processConfig,
		RunE:    run,
	}
)

func init() {
	cobra.OnInitialize(cmdUtil.InitConfig)

	// connection to the server
	cmdUtil.SetupRPCClientFlags(GatewayCmd)

	key := "listen"
	GatewayCmd.Flags().String(key, cmdUtil.DefaultGatewayEndpoint, cmdUtil.WrapString("The address on which the HTTP gateway will listen"))

	key = "layers"
	GatewayCmd.Flags().String(key, "trace", cmdUtil.WrapString("Comma-separated list of pipeline layers the gateway runs before forwarding a request (trace, recovery, metrics, logging)"))

	key = "log-level"
	GatewayCmd.Flags().String(key, "info", cmdUtil.WrapString("LogLevel is the level at which logs will be output (debug, info, warn, error)"))
}

func processConfig(cmd *cobra.Command, _ []string) error {
	if err := cmdUtil.BindCommandFlags(cmd); err != nil {
		return err
	}

	gatewayCmdConfig.Listen = viper.GetString("listen")
	gatewayCmdConfig.ShardID = cmdUtil.GetShardID()
	gatewayCmdConfig.Layers = cmdUtil.ParseList(viper.GetString("layers"))
	gatewayCmdConfig.LogLevel = viper.GetString("log-level")

	return nil
}

// run starts the gateway in front of a shared rpc client
func run(cmd *cobra.Command, _ []string) error {
	if err := cmdUtil.InitLogging(gatewayCmdConfig.LogLevel); err != nil {
		return err
	}

	s, err := cmdUtil.GetSerializer()
	if err != nil {
		return err
	}

	t, err := cmdUtil.GetTransport()
	if err != nil {
		return err
	}

	rpcClient, err := client.NewRPCClient(gatewayCmdConfig.ShardID, *cmdUtil.GetClientConfig(), t, s)
	if err != nil {
		return err
	}
	defer rpcClient.Close()

	gw, err := gateway.New(*gatewayCmdConfig, rpcClient)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(gw.Run)
	g.Go(func() error {
		<-ctx.Done()
		return gw.Close()
	})

	return g.Wait()
}

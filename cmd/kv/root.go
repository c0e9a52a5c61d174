package kv

import (
	"context"

	"github.com/ValentinKolb/kvgate/cmd/util"
	"github.com/ValentinKolb/kvgate/rpc/client"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// itemClient is the part of the rpc client the commands use
type itemClient interface {
	Ping(ctx context.Context, message *string) (string, error)
	GetItem(ctx context.Context, key string) (string, bool, error)
	SetItem(ctx context.Context, key, value string) (string, error)
	DeleteItem(ctx context.Context, keys ...string) (uint64, error)
	PostItem(ctx context.Context, name string) error
}

var (
	rpcClient *client.RPCClient

	// KeyValueCommands represents the KV command group
	KeyValueCommands = &cobra.Command{
		Use:                "kv",
		Short:              "Perform key-value store operations",
		PersistentPreRunE:  setupKVClient,
		PersistentPostRunE: closeKVClient,
	}
)

func init() {
	// Initialize viper
	cobra.OnInitialize(util.InitConfig)

	// Add common RPC flags to the KV command
	util.SetupRPCClientFlags(KeyValueCommands)

	KeyValueCommands.PersistentFlags().String("log-level", "warn", util.WrapString("LogLevel is the level at which logs will be output (debug, info, warn, error)"))

	// Add subcommands
	KeyValueCommands.AddCommand(setCmd)
	KeyValueCommands.AddCommand(getCmd)
	KeyValueCommands.AddCommand(delCmd)
	KeyValueCommands.AddCommand(pingCmd)
	KeyValueCommands.AddCommand(postCmd)
	KeyValueCommands.AddCommand(replCmd)
	KeyValueCommands.AddCommand(perfTestCmd)
}

// setupKVClient initializes the RPC client
func setupKVClient(cmd *cobra.Command, _ []string) error {
	// Bind command flags to viper
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}

	if err := util.InitLogging(viper.GetString("log-level")); err != nil {
		return err
	}

	// Get client configuration components
	config := util.GetClientConfig()
	shardId := util.GetShardID()

	// Get serializer and transport
	s, err := util.GetSerializer()
	if err != nil {
		return err
	}

	t, err := util.GetTransport()
	if err != nil {
		return err
	}

	// Create the client
	rpcClient, err = client.NewRPCClient(
		shardId,
		*config,
		t,
		s,
	)

	return err
}

func closeKVClient(_ *cobra.Command, _ []string) error {
	if rpcClient == nil {
		return nil
	}
	return rpcClient.Close()
}

package cmd

import (
	"fmt"
	"os"

	"github.com/ValentinKolb/kvgate/cmd/gateway"
	"github.com/ValentinKolb/kvgate/cmd/kv"
	"github.com/ValentinKolb/kvgate/cmd/serve"
	"github.com/ValentinKolb/kvgate/cmd/util"
	"github.com/spf13/cobra"
)

const (
	Version = "0.1.0"
)

var (

	// RootCmd represents the base command when called without any subcommands
	RootCmd = &cobra.Command{
		Use:   "kvgate",
		Short: "key-value store with an RPC interface and an HTTP gateway",
		Long: fmt.Sprintf(`kvgate (v%s)

An in-memory key-value store served over RPC (http, tcp or unix sockets),
with a request pipeline of configurable layers and an HTTP gateway.`, Version),
	}
	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of kvgate",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("kvgate v%s\n", Version)
		},
	}
)

func init() {
	// Add Commands
	RootCmd.AddCommand(serve.ServeCmd)
	RootCmd.AddCommand(gateway.GatewayCmd)
	RootCmd.AddCommand(kv.KeyValueCommands)
	RootCmd.AddCommand(versionCmd)

	// Add Flags
	key := "serializer"
	RootCmd.PersistentFlags().String(key, "binary", util.WrapString("serializer to use (json, gob, binary)"))
	key = "transport"
	RootCmd.PersistentFlags().String(key, "tcp", util.WrapString("transport to use (http, tcp, unix)"))
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

package kv

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var (
	setCmd = &cobra.Command{
		Use:   "set [key] [value]",
		Short: "Sets the value for a key",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := rpcClient.SetItem(cmd.Context(), args[0], args[1]); err != nil {
				return err
			}
			fmt.Println("set successfully")
			return nil
		},
	}
	getCmd = &cobra.Command{
		Use:   "get [key]",
		Short: "Reads the value for a key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			value, found, err := rpcClient.GetItem(cmd.Context(), key)
			if err != nil {
				return err
			}
			fmt.Printf("key=%s, found=%v, value=%s\n", key, found, value)
			return nil
		},
	}
	delCmd = &cobra.Command{
		Use:   "del [key...]",
		Short: "Deletes one or more keys",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			count, err := rpcClient.DeleteItem(cmd.Context(), args...)
			if err != nil {
				return err
			}
			fmt.Printf("deleted %d of %d keys\n", count, len(args))
			return nil
		},
	}
	pingCmd = &cobra.Command{
		Use:   "ping [message...]",
		Short: "Pings the server, the server rejects a ping without message",
		RunE: func(cmd *cobra.Command, args []string) error {
			var message *string
			if len(args) > 0 {
				msg := strings.Join(args, " ")
				message = &msg
			}
			resp, err := rpcClient.Ping(cmd.Context(), message)
			if err != nil {
				return err
			}
			fmt.Println(resp)
			return nil
		},
	}
	postCmd = &cobra.Command{
		Use:   "post [name]",
		Short: "Sends a post request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := rpcClient.PostItem(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Println("post successfully")
			return nil
		},
	}
	replCmd = &cobra.Command{
		Use:   "repl",
		Short: "Starts an interactive shell (get, set, delete, ping, exit)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runREPL(cmd.Context(), rpcClient, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
)

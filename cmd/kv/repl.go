package kv

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

const replPrompt = "> "

// runREPL reads commands from in until exit or EOF.
// A failed command is printed and does not end the loop.
func runREPL(ctx context.Context, c itemClient, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)

	for {
		fmt.Fprint(out, replPrompt)
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}

		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		cmd, args := fields[0], fields[1:]
		if cmd == "exit" {
			return nil
		}

		if err := replCommand(ctx, c, cmd, args, out); err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
		}
	}
}

// replCommand executes a single line of the repl
func replCommand(ctx context.Context, c itemClient, cmd string, args []string, out io.Writer) error {
	switch cmd {
	case "get":
		if len(args) != 1 {
			return fmt.Errorf("usage: get <key>")
		}
		value, found, err := c.GetItem(ctx, args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "GetItemResponse{value: %q, found: %t}\n", value, found)
	case "set":
		if len(args) != 2 {
			return fmt.Errorf("usage: set <key> <value>")
		}
		msg, err := c.SetItem(ctx, args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "SetItemResponse{message: %q}\n", msg)
	case "delete", "del":
		count, err := c.DeleteItem(ctx, args...)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "DeleteItemResponse{count: %d}\n", count)
	case "ping":
		var message *string
		if len(args) > 0 {
			msg := strings.Join(args, " ")
			message = &msg
		}
		msg, err := c.Ping(ctx, message)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "PingResponse{message: %q}\n", msg)
	case "post":
		if len(args) != 1 {
			return fmt.Errorf("usage: post <name>")
		}
		if err := c.PostItem(ctx, args[0]); err != nil {
			return err
		}
		fmt.Fprintln(out, "PostItemResponse{}")
	default:
		return fmt.Errorf("unknown command: %s", cmd)
	}
	return nil
}

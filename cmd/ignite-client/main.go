// Command ignite-client is a minimal TCP client for the ignite server:
// get/set/rm subcommands, one request per invocation.
package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"os"

	"github.com/spf13/cobra"

	"github.com/ignitedb/ignite/pkg/errors"
	"github.com/ignitedb/ignite/pkg/protocol"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var addr string

	root := &cobra.Command{
		Use:   "ignite-client",
		Short: "Talks to an ignite server over TCP",
	}
	root.PersistentFlags().StringVar(&addr, "addr", "127.0.0.1:4000", "server address")

	root.AddCommand(newGetCmd(&addr), newSetCmd(&addr), newRmCmd(&addr))
	return root
}

func newGetCmd(addr *string) *cobra.Command {
	return &cobra.Command{
		Use:   "get KEY",
		Short: "Fetch the value stored under KEY",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := roundTrip(*addr, protocol.NewGetRequest(args[0]))
			if err != nil {
				return err
			}
			if resp.Get == nil {
				return fmt.Errorf("ignite-client: malformed response to Get")
			}
			if resp.Get.Err != nil {
				return errors.NewRemoteMessageError(*resp.Get.Err)
			}
			if resp.Get.Ok == nil {
				fmt.Println("Key not found")
				return nil
			}
			fmt.Println(*resp.Get.Ok)
			return nil
		},
	}
}

func newSetCmd(addr *string) *cobra.Command {
	return &cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Store VALUE under KEY",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := roundTrip(*addr, protocol.NewSetRequest(args[0], args[1]))
			if err != nil {
				return err
			}
			if resp.Set == nil {
				return fmt.Errorf("ignite-client: malformed response to Set")
			}
			if resp.Set.Err != nil {
				return errors.NewRemoteMessageError(*resp.Set.Err)
			}
			return nil
		},
	}
}

func newRmCmd(addr *string) *cobra.Command {
	return &cobra.Command{
		Use:   "rm KEY",
		Short: "Remove KEY",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := roundTrip(*addr, protocol.NewRemoveRequest(args[0]))
			if err != nil {
				return err
			}
			if resp.Remove == nil {
				return fmt.Errorf("ignite-client: malformed response to Remove")
			}
			if resp.Remove.Err != nil {
				return errors.NewRemoteMessageError(*resp.Remove.Err)
			}
			return nil
		},
	}
}

// roundTrip opens a fresh connection, sends exactly one request, and reads
// exactly one response. One connection per invocation matches how the
// client binary is actually used: a short-lived process issuing one
// command and exiting.
func roundTrip(addr string, req protocol.Request) (protocol.Response, error) {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return protocol.Response{}, err
	}
	defer conn.Close()

	w := bufio.NewWriter(conn)
	enc := json.NewEncoder(w)
	if err := enc.Encode(req); err != nil {
		return protocol.Response{}, err
	}
	if err := w.Flush(); err != nil {
		return protocol.Response{}, err
	}

	var resp protocol.Response
	dec := json.NewDecoder(bufio.NewReader(conn))
	if err := dec.Decode(&resp); err != nil {
		return protocol.Response{}, err
	}
	return resp, nil
}

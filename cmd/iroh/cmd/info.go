package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show node identity and connectivity",
	Args:  cobra.NoArgs,
	RunE:  runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, args []string) (err error) {
	n, err := openNode(false)
	if err != nil {
		return err
	}
	defer func() {
		if serr := n.Shutdown(context.Background()); serr != nil && err == nil {
			err = serr
		}
	}()

	info := n.Info()
	fmt.Printf("node id:   %s\n", info.NodeID)
	if info.RelayURL != "" {
		fmt.Printf("relay:     %s\n", info.RelayURL)
	} else {
		fmt.Println("relay:     disabled")
	}
	fmt.Printf("connected: %v\n", info.IsConnected)
	fmt.Printf("storage:   %s\n", storageDir())
	return nil
}

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

var putCmd = &cobra.Command{
	Use:   "put [file]",
	Short: "Store a blob and print its share ticket",
	Long:  "Store a file (or stdin when no file is given) in the local blob store and print a ticket peers can fetch it with.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runPut,
}

func init() {
	putCmd.Flags().String("tag", "", "pin the blob under a tag name")
	rootCmd.AddCommand(putCmd)
}

func runPut(cmd *cobra.Command, args []string) (err error) {
	var data []byte
	if len(args) == 1 {
		data, err = os.ReadFile(args[0])
	} else {
		data, err = io.ReadAll(os.Stdin)
	}
	if err != nil {
		return err
	}

	n, err := openNode(false)
	if err != nil {
		return err
	}
	defer func() {
		if serr := n.Shutdown(context.Background()); serr != nil && err == nil {
			err = serr
		}
	}()

	ticket, err := n.Put(context.Background(), data)
	if err != nil {
		return err
	}

	if tag, _ := cmd.Flags().GetString("tag"); tag != "" {
		info := mustParseBlobTicket(ticket)
		if err := n.TagSet(tag, info.Hash, info.Format); err != nil {
			return err
		}
	}

	fmt.Println(ticket)
	return nil
}

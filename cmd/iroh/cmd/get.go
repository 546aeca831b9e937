package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/arkavo-org/iroh-go/netx"
	"github.com/arkavo-org/iroh-go/node"
)

var getCmd = &cobra.Command{
	Use:   "get <ticket>",
	Short: "Fetch a blob by ticket",
	Long:  "Resolve a blob ticket, download the content from the providing node if needed, and write it to a file or stdout.",
	Args:  cobra.ExactArgs(1),
	RunE:  runGet,
}

func init() {
	getCmd.Flags().StringP("output", "o", "", "write content to a file instead of stdout")
	rootCmd.AddCommand(getCmd)
}

func runGet(cmd *cobra.Command, args []string) (err error) {
	n, err := openNode(false)
	if err != nil {
		return err
	}
	defer func() {
		if serr := n.Shutdown(context.Background()); serr != nil && err == nil {
			err = serr
		}
	}()

	output, _ := cmd.Flags().GetString("output")

	var data []byte
	if output != "" && term.IsTerminal(int(os.Stderr.Fd())) {
		data, err = getInteractive(n, args[0])
	} else {
		data, err = n.Get(context.Background(), args[0])
	}
	if err != nil {
		return err
	}

	if output == "" {
		_, err = os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(output, data, 0o644); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Wrote %d bytes to %s\n", len(data), output)
	return nil
}

// getInteractive runs the download behind a progress view.
func getInteractive(n *node.Node, ticket string) ([]byte, error) {
	return runDownloadView(ticket, func(onProgress netx.ProgressFunc) ([]byte, error) {
		return n.GetWithProgress(context.Background(), ticket, onProgress)
	})
}

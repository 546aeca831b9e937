package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arkavo-org/iroh-go/ticket"
)

var ticketCmd = &cobra.Command{
	Use:   "ticket <ticket>",
	Short: "Inspect a ticket",
	Long:  "Parse a blob or doc ticket and print what it refers to. Malformed tickets report invalid rather than failing.",
	Args:  cobra.ExactArgs(1),
	RunE:  runTicket,
}

func init() {
	rootCmd.AddCommand(ticketCmd)
}

func runTicket(cmd *cobra.Command, args []string) error {
	s := args[0]

	if b, err := ticket.ParseBlob(s); err == nil {
		fmt.Println("type:      blob")
		fmt.Printf("hash:      %s\n", b.Hash)
		fmt.Printf("format:    %s\n", b.Format)
		fmt.Printf("node:      %s\n", b.NodeID)
		printRelay(b.RelayURL)
		return nil
	}
	if d, err := ticket.ParseDoc(s); err == nil {
		fmt.Println("type:      doc")
		fmt.Printf("namespace: %s\n", d.Namespace)
		fmt.Printf("mode:      %s\n", shareModeName(d.Mode))
		fmt.Printf("node:      %s\n", d.NodeID)
		printRelay(d.RelayURL)
		return nil
	}

	fmt.Println("invalid ticket")
	return nil
}

func printRelay(url string) {
	if url != "" {
		fmt.Printf("relay:     %s\n", url)
	}
}

func shareModeName(m ticket.ShareMode) string {
	if m == ticket.ShareWrite {
		return "write"
	}
	return "read"
}

// mustParseBlobTicket is for tickets this process just created.
func mustParseBlobTicket(s string) ticket.Blob {
	b, err := ticket.ParseBlob(s)
	if err != nil {
		panic(err)
	}
	return b
}

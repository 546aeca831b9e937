package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/arkavo-org/iroh-go/docs"
	"github.com/arkavo-org/iroh-go/node"
	"github.com/arkavo-org/iroh-go/ticket"
)

var docCmd = &cobra.Command{
	Use:   "doc",
	Short: "Multi-writer document sync",
}

var docCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a document and print its namespace",
	Args:  cobra.NoArgs,
	RunE:  runDocCreate,
}

var docSetCmd = &cobra.Command{
	Use:   "set <namespace> <key> <value>",
	Short: "Write a key-value entry",
	Args:  cobra.ExactArgs(3),
	RunE:  runDocSet,
}

var docGetCmd = &cobra.Command{
	Use:   "get <namespace> <key>",
	Short: "Read the newest value for a key",
	Args:  cobra.ExactArgs(2),
	RunE:  runDocGet,
}

var docListCmd = &cobra.Command{
	Use:   "list <namespace> [prefix]",
	Short: "List live entries under a key prefix",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runDocList,
}

var docDelCmd = &cobra.Command{
	Use:   "del <namespace> <prefix>",
	Short: "Delete your entries under a key prefix",
	Args:  cobra.ExactArgs(2),
	RunE:  runDocDel,
}

var docShareCmd = &cobra.Command{
	Use:   "share <namespace>",
	Short: "Print a ticket peers can join this document with",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocShare,
}

var docJoinCmd = &cobra.Command{
	Use:   "join <ticket>",
	Short: "Join a shared document",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocJoin,
}

var docWatchCmd = &cobra.Command{
	Use:   "watch <namespace>",
	Short: "Stream document events until interrupted",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocWatch,
}

func init() {
	docShareCmd.Flags().Bool("write", false, "grant write access")
	docCmd.AddCommand(docCreateCmd, docSetCmd, docGetCmd, docListCmd,
		docDelCmd, docShareCmd, docJoinCmd, docWatchCmd)
	rootCmd.AddCommand(docCmd)
}

// withDocsNode runs fn against a docs-enabled node, owning its teardown.
func withDocsNode(fn func(*node.Node, *docs.Engine) error) (err error) {
	n, err := openNode(true)
	if err != nil {
		return err
	}
	defer func() {
		if serr := n.Shutdown(context.Background()); serr != nil && err == nil {
			err = serr
		}
	}()
	engine, err := n.Docs()
	if err != nil {
		return err
	}
	return fn(n, engine)
}

// cliAuthor loads the CLI's writing author, creating and persisting one
// on first use.
func cliAuthor(engine *docs.Engine) (docs.Author, error) {
	path := filepath.Join(storageDir(), "author.key")
	raw, err := os.ReadFile(path)
	if err == nil {
		return docs.AuthorFromHex(strings.TrimSpace(string(raw)))
	}
	if !os.IsNotExist(err) {
		return docs.Author{}, err
	}

	a, err := engine.CreateAuthor()
	if err != nil {
		return docs.Author{}, err
	}
	secret := a.Secret()
	if err := os.WriteFile(path, []byte(secret.Hex()+"\n"), 0o600); err != nil {
		return docs.Author{}, err
	}
	return a, nil
}

func runDocCreate(cmd *cobra.Command, args []string) error {
	return withDocsNode(func(n *node.Node, engine *docs.Engine) error {
		d, err := engine.Create()
		if err != nil {
			return err
		}
		fmt.Println(d.Namespace())
		return nil
	})
}

func runDocSet(cmd *cobra.Command, args []string) error {
	return withDocsNode(func(n *node.Node, engine *docs.Engine) error {
		d, err := engine.Import(args[0])
		if err != nil {
			return err
		}
		author, err := cliAuthor(engine)
		if err != nil {
			return err
		}
		hash, err := d.Set(context.Background(), author, []byte(args[1]), []byte(args[2]))
		if err != nil {
			return err
		}
		fmt.Println(hash)
		return nil
	})
}

func runDocGet(cmd *cobra.Command, args []string) error {
	return withDocsNode(func(n *node.Node, engine *docs.Engine) error {
		d, err := engine.Import(args[0])
		if err != nil {
			return err
		}
		entry, err := d.Get([]byte(args[1]))
		if err != nil {
			return err
		}
		if entry == nil {
			return fmt.Errorf("key %q not found", args[1])
		}
		content, err := n.ReadContent(context.Background(), entry.ContentHash)
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(content)
		return err
	})
}

func runDocList(cmd *cobra.Command, args []string) error {
	return withDocsNode(func(n *node.Node, engine *docs.Engine) error {
		d, err := engine.Import(args[0])
		if err != nil {
			return err
		}
		prefix := []byte{}
		if len(args) == 2 {
			prefix = []byte(args[1])
		}
		entries, err := d.GetMany(prefix)
		if err != nil {
			return err
		}
		for _, e := range entries {
			fmt.Printf("%s\t%d bytes\t%s\tby %s\n",
				e.Key, e.ContentSize, e.ContentHash[:12], e.Author.Hex()[:12])
		}
		return nil
	})
}

func runDocDel(cmd *cobra.Command, args []string) error {
	return withDocsNode(func(n *node.Node, engine *docs.Engine) error {
		d, err := engine.Import(args[0])
		if err != nil {
			return err
		}
		author, err := cliAuthor(engine)
		if err != nil {
			return err
		}
		count, err := d.Del(author, []byte(args[1]))
		if err != nil {
			return err
		}
		fmt.Printf("deleted %d entries\n", count)
		return nil
	})
}

func runDocShare(cmd *cobra.Command, args []string) error {
	return withDocsNode(func(n *node.Node, engine *docs.Engine) error {
		if _, err := engine.Import(args[0]); err != nil {
			return err
		}
		mode := ticket.ShareRead
		if write, _ := cmd.Flags().GetBool("write"); write {
			mode = ticket.ShareWrite
		}
		tk, err := n.DocShare(args[0], mode)
		if err != nil {
			return err
		}
		fmt.Println(tk)
		return nil
	})
}

func runDocJoin(cmd *cobra.Command, args []string) error {
	return withDocsNode(func(n *node.Node, engine *docs.Engine) error {
		d, err := n.DocJoin(context.Background(), args[0])
		if err != nil {
			return err
		}
		fmt.Println(d.Namespace())
		return nil
	})
}

func runDocWatch(cmd *cobra.Command, args []string) error {
	return withDocsNode(func(n *node.Node, engine *docs.Engine) error {
		d, err := engine.Import(args[0])
		if err != nil {
			return err
		}
		sub, err := d.Subscribe()
		if err != nil {
			return err
		}
		defer sub.Cancel()

		interrupt := make(chan os.Signal, 1)
		signal.Notify(interrupt, os.Interrupt)
		defer signal.Stop(interrupt)

		for {
			select {
			case ev, ok := <-sub.Events():
				if !ok {
					return nil
				}
				printEvent(ev)
			case <-interrupt:
				return nil
			}
		}
	})
}

func printEvent(ev docs.Event) {
	switch {
	case ev.Entry != nil:
		fmt.Printf("%s\t%s\n", ev.Kind, ev.Entry.Key)
	case ev.ContentHash != "":
		fmt.Printf("%s\t%s\n", ev.Kind, ev.ContentHash[:12])
	case ev.Peer != "":
		fmt.Printf("%s\t%s\n", ev.Kind, ev.Peer[:12])
	default:
		fmt.Println(ev.Kind)
	}
}

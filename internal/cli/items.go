package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var itemsCmd = &cobra.Command{
	Use:   "items",
	Short: "Manage the registered item catalog",
}

var itemsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered items in registration order",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		st, err := openStores(cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		items, err := st.admin.RegisteredItems()
		if err != nil {
			return err
		}
		if len(items) == 0 {
			fmt.Println("no items registered")
			return nil
		}
		for _, it := range items {
			fmt.Printf("%s\t%s\n", it.ID, it.Name)
		}
		return nil
	},
}

var itemsAddCmd = &cobra.Command{
	Use:   "add <item-id> <name>",
	Short: "Register an item",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		st, err := openStores(cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.admin.AddItem(args[0], args[1]); err != nil {
			return err
		}
		fmt.Printf("registered %s as %q\n", args[0], args[1])
		return nil
	},
}

var itemsRemoveCmd = &cobra.Command{
	Use:   "remove <item-id>",
	Short: "Unregister an item",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		st, err := openStores(cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.admin.RemoveItem(args[0]); err != nil {
			return err
		}
		fmt.Printf("removed %s\n", args[0])
		return nil
	},
}

func init() {
	itemsCmd.AddCommand(itemsListCmd)
	itemsCmd.AddCommand(itemsAddCmd)
	itemsCmd.AddCommand(itemsRemoveCmd)
}

package main

import (
	"encoding/json"
	"fmt"

	"github.com/fwojciec/speakloud"
)

// Run executes the item command.
func (c *ItemCmd) Run(deps *Dependencies) error {
	item, err := deps.Items.FindItemByID(deps.Ctx, c.ID)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", speakloud.ErrorMessage(err))
		return err
	}

	enc := json.NewEncoder(deps.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(item)
}

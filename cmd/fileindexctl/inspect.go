package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/paimon-io/paimon-fileindex-go/fileindex"

	// Index-kind reader factories register themselves via init(); importing
	// for side effect is how Inspect/Query reach every kind the container
	// directory might reference, mirroring the teacher's registration-by-
	// import style for codec plugins.
	_ "github.com/paimon-io/paimon-fileindex-go/fileindex/bitmap"
	_ "github.com/paimon-io/paimon-fileindex-go/fileindex/bloomfilter"
	_ "github.com/paimon-io/paimon-fileindex-go/fileindex/bsi"
)

func newCmd_Inspect() *cli.Command {
	return &cli.Command{
		Name:      "inspect",
		Usage:     "print the column/index-kind directory of a file-index blob",
		ArgsUsage: "<path>",
		Action: func(c *cli.Context) error {
			path := c.Args().First()
			if path == "" {
				return fmt.Errorf("inspect requires a file-index blob path")
			}
			f, err := os.Open(path)
			if err != nil {
				return err
			}
			defer f.Close()

			container, err := fileindex.Open(f)
			if err != nil {
				return err
			}
			for _, col := range container.ColumnNames() {
				fmt.Printf("%s:\n", col)
				for _, kind := range container.IndexKinds(col) {
					fmt.Printf("  - %s\n", kind)
				}
			}
			return nil
		},
	}
}

package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/unixpickle/essentials"
	"github.com/unixpickle/onetree/forestio"
	"github.com/unixpickle/onetree/onetree"
)

func main() {
	var inputFormat string
	var printLines bool
	flag.StringVar(&inputFormat, "input-format", "",
		"input format (bin, json, yaml, or xgboost); guessed from extension if empty")
	flag.BoolVar(&printLines, "print", false, "print every branch")
	flag.Parse()

	args := flag.Args()
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "Usage: forest_info [flags] <input>")
		fmt.Fprintln(os.Stderr)
		flag.PrintDefaults()
		os.Exit(1)
	}
	inputPath := args[0]

	log.Println("Loading forest...")
	n, err := forestio.Load(inputPath, inputFormat)
	essentials.Must(err)

	if forest, ok := n.(*onetree.Forest[float64]); ok {
		fmt.Println("Number of members:", len(forest.Trees))
	}
	fmt.Println("Number of leaves:", onetree.NumLeaves(n))
	fmt.Println("Number of nodes:", onetree.NumNodes(n))
	fmt.Println("Depth:", onetree.Depth(n))
	fmt.Println("Features:", strings.Join(onetree.Features(n), ", "))

	if printLines {
		fmt.Println(strings.Join(onetree.Lines(n), "\n"))
	}
}

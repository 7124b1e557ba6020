package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/unixpickle/essentials"
	"github.com/unixpickle/onetree/forestio"
	"github.com/unixpickle/onetree/onetree"
)

func main() {
	var inputFormat string
	flag.StringVar(&inputFormat, "input-format", "",
		"input format (bin, json, yaml, or xgboost); guessed from extension if empty")
	flag.Parse()

	args := flag.Args()
	if len(args) != 2 {
		fmt.Fprintln(os.Stderr, "Usage: eval_forest [flags] <input> <features.csv>")
		fmt.Fprintln(os.Stderr)
		flag.PrintDefaults()
		os.Exit(1)
	}
	inputPath, featuresPath := args[0], args[1]

	log.Println("Loading forest...")
	n, err := forestio.Load(inputPath, inputFormat)
	essentials.Must(err)

	log.Println("Loading features...")
	assignments, err := forestio.LoadAssignments(featuresPath)
	essentials.Must(err)

	for i, assignment := range assignments {
		x, err := onetree.Evaluate(n, assignment)
		if err != nil {
			essentials.Die(fmt.Sprintf("row %d: %v", i+1, err))
		}
		fmt.Println(onetree.FormatValue(x))
	}
}

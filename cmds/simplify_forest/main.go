package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"time"

	"github.com/unixpickle/essentials"
	"github.com/unixpickle/onetree/forestio"
	"github.com/unixpickle/onetree/onetree"
	"github.com/unixpickle/onetree/xgbmodel"
)

func main() {
	var inputFormat string
	var outputFormat string
	var ntreeLimit int
	var bucketSize float64
	var maxDepth int
	var maxNodes int
	var timeout time.Duration
	var concurrency int
	var verifySamples int
	var seed int64
	var verbose bool
	var printTree bool
	flag.StringVar(&inputFormat, "input-format", "",
		"input format (bin, json, yaml, or xgboost); guessed from extension if empty")
	flag.StringVar(&outputFormat, "output-format", "",
		"output format (bin, json, or yaml); guessed from extension if empty")
	flag.IntVar(&ntreeLimit, "ntree-limit", 0, "number of XGBoost trees to import (0 for model default)")
	flag.Float64Var(&bucketSize, "bucket-size", 0, "merge adjacent leaves within buckets of this size (0 to disable)")
	flag.IntVar(&maxDepth, "max-depth", 0, "maximum depth of the result (0 for unlimited)")
	flag.IntVar(&maxNodes, "max-nodes", 0, "maximum number of nodes in the result (0 for unlimited)")
	flag.DurationVar(&timeout, "timeout", 0, "maximum simplification time (0 for unlimited)")
	flag.IntVar(&concurrency, "concurrency", 0, "maximum number of Goroutines (0 or less for GOMAXPROCS)")
	flag.IntVar(&verifySamples, "verify-samples", 10000, "number of random assignments to compare")
	flag.Int64Var(&seed, "seed", 0, "seed for verification sampling (0 for time-based)")
	flag.BoolVar(&verbose, "verbose", false, "log splits chosen near the root")
	flag.BoolVar(&printTree, "print", false, "print the resulting tree")
	flag.Parse()

	args := flag.Args()
	if len(args) != 2 {
		fmt.Fprintln(os.Stderr, "Usage: simplify_forest [flags] <input> <output>")
		fmt.Fprintln(os.Stderr)
		flag.PrintDefaults()
		os.Exit(1)
	}
	inputPath, outputPath := args[0], args[1]

	log.Println("Loading forest...")
	forest, err := forestio.Load(inputPath, inputFormat, xgbmodel.NtreeLimit(ntreeLimit))
	essentials.Must(err)
	log.Printf("Loaded %d nodes over %d features (depth %d)", onetree.NumNodes(forest),
		len(onetree.Features(forest)), onetree.Depth(forest))

	s := &onetree.Simplifier[float64]{
		MaxDepth:    maxDepth,
		MaxNodes:    maxNodes,
		Timeout:     timeout,
		Concurrency: concurrency,
		Verbose:     verbose,
	}
	if bucketSize != 0 {
		s.Bucketize = onetree.BucketSize(bucketSize)
	}

	log.Println("Simplifying...")
	t1 := time.Now()
	tree, err := s.Simplify(forest)
	essentials.Must(err)
	log.Printf("Simplified to %d leaves and depth %d in %v", onetree.NumLeaves(tree),
		onetree.Depth(tree), time.Since(t1))

	if verifySamples > 0 {
		log.Println("Verifying...")
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		gen := rand.New(rand.NewSource(seed))
		probes := onetree.ProbeValues(forest)
		assignments := onetree.SampleAssignments(gen, probes, verifySamples)
		tol := onetree.DefaultTolerance
		if bucketSize != 0 {
			tol += bucketSize
		}
		essentials.Must(onetree.CheckEquivalent(forest, tree, assignments, tol))
	}

	if printTree {
		fmt.Println(onetree.TreePrint(tree))
	}

	log.Println("Saving tree...")
	essentials.Must(forestio.Save(outputPath, outputFormat, tree))
}

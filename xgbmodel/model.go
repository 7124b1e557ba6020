// Package xgbmodel imports XGBoost JSON models as forests which can be
// simplified into a single tree.
package xgbmodel

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/unixpickle/onetree/onetree"
)

// XGBModel corresponds to an XGBoost JSON model.
type XGBModel struct {
	Learner Learner `json:"learner"`
}

// Learner is the top level part of an XGBoost model.
type Learner struct {
	Attributes        Attributes        `json:"attributes"`
	FeatureNames      []string          `json:"feature_names"`
	GradientBooster   GradientBooster   `json:"gradient_booster"`
	LearnerModelParam LearnerModelParam `json:"learner_model_param"`
	Objective         Objective         `json:"objective"`
}

// Objective names the training objective, which determines how the base
// score maps to the margin.
type Objective struct {
	Name string `json:"name"`
}

// Attributes holds attributes from an XGBoost model.
type Attributes struct {
	BestIteration  json.Number `json:"best_iteration"`
	BestNtreeLimit json.Number `json:"best_ntree_limit"`
}

// GradientBooster holds the XGBoost model.
type GradientBooster struct {
	Model Model `json:"model"`
}

// Model is the XGBoost model.
type Model struct {
	Trees []XGBTree `json:"trees"`
}

// LearnerModelParam holds global model parameters.
//
// XGBoost stores these as strings, and newer versions wrap the base score in
// brackets, as in "[5E-1]".
type LearnerModelParam struct {
	BaseScore  string `json:"base_score"`
	NumClass   string `json:"num_class"`
	NumFeature string `json:"num_feature"`
}

// XGBTree is one tree in an XGBoost model as decoded from JSON.
//
// For leaves, SplitConditions holds the leaf value.
type XGBTree struct {
	LeftChildren    []int     `json:"left_children"`
	RightChildren   []int     `json:"right_children"`
	SplitConditions []float64 `json:"split_conditions"`
	SplitIndices    []int     `json:"split_indices"`
	TreeParam       TreeParam `json:"tree_param"`
}

// TreeParam holds tree parameters.
type TreeParam struct {
	NumNodes json.Number `json:"num_nodes"`
}

// Options holds import options.
type Options struct {
	ntreeLimit   int
	featureNames []string
}

// Option is a configuration function.
type Option func(*Options)

// NtreeLimit sets the number of trees to import.
//
// If not provided, the best_ntree_limit or best_iteration attribute of the
// model is used, falling back to every tree.
func NtreeLimit(ntreeLimit int) Option {
	return func(o *Options) {
		o.ntreeLimit = ntreeLimit
	}
}

// FeatureNames sets the names of the features, in column order.
//
// If not provided, the feature_names of the model are used, falling back to
// "f0", "f1", etc.
func FeatureNames(names ...string) Option {
	return func(o *Options) {
		o.featureNames = append([]string{}, names...)
	}
}

// LoadForest reads an XGBoost JSON model file as a forest.
func LoadForest(path string, opts ...Option) (*onetree.Forest[float64], error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, errors.Wrap(err, "load xgboost model")
	}
	defer f.Close()
	res, err := ReadForest(f, opts...)
	if err != nil {
		return nil, errors.Wrapf(err, "load xgboost model %s", path)
	}
	return res, nil
}

// ReadForest decodes an XGBoost JSON model as a forest.
//
// The forest predicts the margin of the model, which is the sum of the tree
// outputs plus the base score in margin space. For logistic objectives this
// is the log-odds, and for log-link objectives it is the log of the mean.
// Since a forest averages its members, every leaf is scaled by the number of
// members, and the base score becomes an extra leaf member.
//
// XGBoost sends a value left when it is strictly less than the split
// condition, so each condition c becomes a cut point just below c.
// Missing values are not supported.
func ReadForest(r io.Reader, opts ...Option) (*onetree.Forest[float64], error) {
	var o Options
	for _, f := range opts {
		f(&o)
	}

	var xm XGBModel
	if err := json.NewDecoder(r).Decode(&xm); err != nil {
		return nil, errors.Wrap(err, "decode xgboost model")
	}

	if numClass, err := parseParam(xm.Learner.LearnerModelParam.NumClass); err != nil {
		return nil, errors.Wrap(err, "parse num_class")
	} else if numClass > 1 {
		return nil, errors.Errorf("multi-class models are not supported (num_class=%v)",
			numClass)
	}
	baseScore, err := parseParam(xm.Learner.LearnerModelParam.BaseScore)
	if err != nil {
		return nil, errors.Wrap(err, "parse base_score")
	}
	baseMargin, err := marginOf(xm.Learner.Objective.Name, baseScore)
	if err != nil {
		return nil, err
	}

	names := o.featureNames
	if names == nil {
		names = xm.Learner.FeatureNames
	}

	xgbTrees := xm.Learner.GradientBooster.Model.Trees
	limit, err := treeLimit(&xm, o.ntreeLimit)
	if err != nil {
		return nil, err
	}
	if limit > 0 && limit < len(xgbTrees) {
		xgbTrees = xgbTrees[:limit]
	}

	scale := float64(len(xgbTrees) + 1)
	members := make([]onetree.Node[float64], 0, len(xgbTrees)+1)
	for i, xt := range xgbTrees {
		tree, err := convertTree(xt, names, scale)
		if err != nil {
			return nil, errors.Wrapf(err, "convert tree %d", i)
		}
		members = append(members, tree)
	}
	members = append(members, &onetree.Leaf[float64]{Value: baseMargin * scale})
	return onetree.NewForest(members...)
}

// marginOf converts a base score from the output space of an objective into
// the margin space.
func marginOf(objective string, baseScore float64) (float64, error) {
	switch objective {
	case "", "reg:squarederror", "reg:linear", "reg:squaredlogerror",
		"reg:pseudohubererror", "reg:absoluteerror", "reg:quantileerror":
		return baseScore, nil
	case "reg:logistic", "binary:logistic", "binary:logitraw":
		if !(baseScore > 0 && baseScore < 1) {
			return 0, errors.Errorf("base_score %v is not a probability", baseScore)
		}
		return math.Log(baseScore / (1 - baseScore)), nil
	case "count:poisson", "reg:gamma", "reg:tweedie", "survival:cox":
		if !(baseScore > 0) {
			return 0, errors.Errorf("base_score %v must be positive", baseScore)
		}
		return math.Log(baseScore), nil
	default:
		return 0, errors.Errorf("unsupported objective: %s", objective)
	}
}

func treeLimit(xm *XGBModel, limit int) (int, error) {
	if limit != 0 {
		return limit, nil
	}
	attrs := xm.Learner.Attributes
	if attrs.BestNtreeLimit != "" {
		n, err := attrs.BestNtreeLimit.Int64()
		if err != nil {
			return 0, errors.Wrap(err, "parse best_ntree_limit")
		}
		return int(n), nil
	}
	if attrs.BestIteration != "" {
		n, err := attrs.BestIteration.Int64()
		if err != nil {
			return 0, errors.Wrap(err, "parse best_iteration")
		}
		return int(n) + 1, nil
	}
	return 0, nil
}

func parseParam(s string) (float64, error) {
	s = strings.TrimSuffix(strings.TrimPrefix(s, "["), "]")
	if s == "" {
		return 0, nil
	}
	return strconv.ParseFloat(s, 64)
}

func convertTree(xt XGBTree, names []string, scale float64) (onetree.Node[float64], error) {
	numNodes, err := xt.TreeParam.NumNodes.Int64()
	if err != nil {
		return nil, errors.Wrap(err, "parse num_nodes")
	}
	n := int(numNodes)
	if n == 0 {
		return nil, errors.Wrap(onetree.ErrMalformed, "tree has no nodes")
	}
	for _, length := range []int{len(xt.LeftChildren), len(xt.RightChildren),
		len(xt.SplitConditions), len(xt.SplitIndices)} {
		if length != n {
			return nil, errors.Wrapf(onetree.ErrMalformed,
				"expected %d entries per node array but got %d", n, length)
		}
	}
	c := &converter{tree: xt, names: names, scale: scale, numNodes: n}
	return c.Convert(0, 0)
}

type converter struct {
	tree     XGBTree
	names    []string
	scale    float64
	numNodes int
}

func (c *converter) Convert(id, depth int) (onetree.Node[float64], error) {
	if depth >= c.numNodes {
		return nil, errors.Wrap(onetree.ErrMalformed, "cycle in tree")
	}
	left, right := c.tree.LeftChildren[id], c.tree.RightChildren[id]
	if left == -1 {
		return &onetree.Leaf[float64]{Value: c.tree.SplitConditions[id] * c.scale}, nil
	}
	for _, child := range []int{left, right} {
		if child < 0 || child >= c.numNodes {
			return nil, errors.Wrapf(onetree.ErrMalformed, "node %d has bad child %d", id, child)
		}
	}
	feature, err := c.featureName(c.tree.SplitIndices[id])
	if err != nil {
		return nil, err
	}
	leftNode, err := c.Convert(left, depth+1)
	if err != nil {
		return nil, err
	}
	rightNode, err := c.Convert(right, depth+1)
	if err != nil {
		return nil, err
	}
	cut := math.Nextafter(c.tree.SplitConditions[id], math.Inf(-1))
	tree, err := onetree.NewTree(feature, []float64{cut},
		[]onetree.Node[float64]{leftNode, rightNode})
	if err != nil {
		return nil, err
	}
	return tree, nil
}

func (c *converter) featureName(index int) (string, error) {
	if index < 0 {
		return "", errors.Wrapf(onetree.ErrMalformed, "bad split index %d", index)
	}
	if c.names == nil {
		return fmt.Sprintf("f%d", index), nil
	}
	if index >= len(c.names) {
		return "", errors.Wrapf(onetree.ErrMalformed, "split index %d exceeds %d feature names",
			index, len(c.names))
	}
	return c.names[index], nil
}

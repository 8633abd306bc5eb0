// Package partition splits parameter space into axis-aligned rectangles using a set of
// exploration samples.
//
// The partitioner grows a binary tree: starting from the bounding box of the samples,
// it repeatedly splits the leaf with the highest cost until the requested number of
// leaves is reached or no leaf can be split any more. Every internal node splits its
// rectangle along a single dimension, so the leaves tile the root rectangle without
// gaps or overlaps.
//
//	p, _ := partition.New(partition.DefaultConfig())
//	tree, costs, err := p.Partition(ctx, exploration, 8)
//	_ = partition.ExtendBounds(tree, posterior.Bounds())
//	for _, leaf := range tree.Leaves() {
//	    fmt.Println(leaf.ID, leaf.Bounds, leaf.Indices.GetCardinality())
//	}
//
// Two split strategies exist: KDTree searches every dimension and split coordinate
// for the lowest summed child cost, Median cuts the widest dimension at the weighted
// median. Leaf sample membership is kept as roaring bitmaps of row indices into the
// exploration set.
package partition

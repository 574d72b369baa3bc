// Package skygroup finds groups of co-located objects in astronomical
// catalogs, such as blended detections, and provides the coordinate
// utilities the grouping relies on.
//
// A group is a set of two or more points joined, directly or through other
// points, by distances no larger than a separation threshold (single
// linkage). IdentifyAllGroups tiles the catalog into overlapping batches to
// bound the O(n²) pairwise distance cost, stitches the groups found in each
// batch into one labelling, and moves each group's members to its centre of
// mass.
//
// Basic usage:
//
//	cfg := skygroup.DefaultConfig()
//	cfg.Sep = 0.9
//	result, err := skygroup.IdentifyAllGroups(x, y, cfg)
//	// result.GroupIDs[i] is the group of point i (-1 = ungrouped)
//	// result.X[i], result.Y[i] is its (possibly merged) position
//
// Sky coordinates can be grouped either with HaversineDegMetric directly or
// by first moving them to the equator with ReprojectToEquator, where a
// planar metric is a good approximation:
//
//	ras, decs := skygroup.ReprojectToEquator(ras, decs)
//	cfg.Metric = skygroup.EuclideanMetric{}
//
// # Metrics
//
// Any Metric can be used. The built-in metrics are EuclideanMetric,
// ManhattanMetric, HaversineMetric (radians) and HaversineDegMetric
// (degrees); MetricFunc wraps a custom function.
//
// # Partitioning
//
// PartitionIntoBatches is an independent utility that splits a catalog into
// roughly equal-sized, spatially compact batches with k-means.
package skygroup

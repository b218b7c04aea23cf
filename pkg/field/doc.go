// Package field defines the sampled signed-distance grid types that the
// grasp analysis pipeline operates on: a square TSDF grid, the parallel
// normal (gradient) field, and the small vector types shared by the
// rest of the system.
package field

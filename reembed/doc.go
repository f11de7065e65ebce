// Package reembed recomputes the vectors of every indexed chunk with a new or
// updated embedding model.
//
// Chunks are processed in batches with retry and exponential backoff on the
// embedding calls. Vectors are normalized before being written back so the
// similarity search keeps working with dot products.
package reembed

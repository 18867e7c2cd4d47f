// Package dataset loads real tabular datasets from a directory.
//
// A dataset named "adult" is read from adult.parquet or adult.csv, with
// optional metadata in adult.yaml:
//
//	target_feature: income
//	problem_type: classification
//	categorical_features: [workclass, education, sex]
//
// Files are read through an in-memory DuckDB connection, which infers CSV
// schemas and decodes Parquet.
package dataset

// Package services contains the application services that sit between the
// HTTP transport and the data processing layer. MergeService owns the full
// consolidation pipeline: parse the uploaded exports, unify their schemas,
// apply the store consolidation rule and serialize the downloadable output.
package services

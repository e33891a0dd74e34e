// Package ranking implements the hybrid job ranking pipeline: per-job signal
// scoring, min-max score fusion, budget and distance bucketing, and
// activity-based personalization.
//
// A ranking run is a pure function of one user profile, one corpus snapshot
// and one activity snapshot. Fused scores are relative to the candidate set
// of the run and are not comparable across runs.
//
// Personalization averages similarity to the most viewed jobs over every
// viewed entry considered, including entries missing from the corpus, which
// add zero. When none of them resolve, personalization is skipped.
package ranking

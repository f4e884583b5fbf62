package core

import "fmt"

// Stage identifies a pipeline phase. Transitions are strictly sequential
// and single-pass: Filtering -> Embedding -> Clustering -> Labeling ->
// Ranking -> Done.
type Stage string

const (
	StageFiltering  Stage = "filtering"
	StageEmbedding  Stage = "embedding"
	StageClustering Stage = "clustering"
	StageLabeling   Stage = "labeling"
	StageRanking    Stage = "ranking"
)

// StageError is a stage-level failure: a capability was unreachable or the
// stage exceeded its soft timeout. Item-level drops never produce one; they
// are absorbed locally and only surface as aggregate counts in the result.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s failed: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

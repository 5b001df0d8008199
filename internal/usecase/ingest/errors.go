package ingest

import "fmt"

// Stage names a pipeline step for error attribution and metrics.
type Stage string

// Pipeline stages in execution order.
const (
	StageCorrect  Stage = "correct"
	StageClean    Stage = "clean"
	StageAssemble Stage = "assemble"
	StageChunk    Stage = "chunk"
	StageExtract  Stage = "extract"
	StageEmbed    Stage = "embed"
	StageStore    Stage = "store"
)

// StageError attributes a pipeline failure to the stage that produced it.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string { return fmt.Sprintf("ingest %s: %v", e.Stage, e.Err) }
func (e *StageError) Unwrap() error { return e.Err }

// Package review is the pipeline orchestrator.
//
// A run moves through fixed states: the diff is parsed and filtered, the
// applicable standards are resolved, the agent is selected, the prompt is
// built inside a byte budget, and the model is invoked once. [Pipeline.Run]
// never returns an error; failures are reported in [AnalysisResult.Error].
//
// [Pipeline.RunAll] runs independent requests concurrently with bounded
// parallelism.
package review

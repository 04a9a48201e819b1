package driver

// Stage is the position of a Compiler in its pipeline.
//
//	Created -> Loaded -> Lexed -> Parsed -> Analyzed -> Emitted
//	                \________\________\________\-----> Failed
type Stage uint8

const (
	StageCreated Stage = iota
	StageLoaded
	StageLexed
	StageParsed
	StageAnalyzed
	StageEmitted
	StageFailed
)

var stageNames = [...]string{
	StageCreated:  "created",
	StageLoaded:   "loaded",
	StageLexed:    "lexed",
	StageParsed:   "parsed",
	StageAnalyzed: "analyzed",
	StageEmitted:  "emitted",
	StageFailed:   "failed",
}

func (s Stage) String() string {
	if int(s) < len(stageNames) {
		return stageNames[s]
	}
	return "unknown"
}

// Activity names the work that moves the pipeline into s.
func (s Stage) Activity() string {
	switch s {
	case StageLoaded:
		return "loading"
	case StageLexed:
		return "lexing"
	case StageParsed:
		return "parsing"
	case StageAnalyzed:
		return "analysis"
	case StageEmitted:
		return "emission"
	}
	return s.String()
}

// Next returns the stage that follows s on the success path.
func (s Stage) Next() Stage {
	if s >= StageLoaded && s < StageEmitted {
		return s + 1
	}
	return StageFailed
}

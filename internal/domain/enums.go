package domain

type Firmness string

const (
	FirmnessDraft Firmness = "draft"
	FirmnessSoft  Firmness = "soft"
	FirmnessHard  Firmness = "hard"
)

type BlockType string

const (
	BlockDeep     BlockType = "deep"
	BlockShallow  BlockType = "shallow"
	BlockAdmin    BlockType = "admin"
	BlockLearning BlockType = "learning"
)

type BlockStatus string

const (
	BlockPlanned BlockStatus = "planned"
	BlockRunning BlockStatus = "running"
	BlockDone    BlockStatus = "done"
	BlockPartial BlockStatus = "partial"
	BlockSkipped BlockStatus = "skipped"
)

type BlockSource string

const (
	SourceTemplate BlockSource = "template"
	SourceRoutine  BlockSource = "routine"
	SourceManual   BlockSource = "manual"
	SourceCalendar BlockSource = "calendar"
)

type TaskStatus string

const (
	TaskPending    TaskStatus = "pending"
	TaskInProgress TaskStatus = "in_progress"
	TaskCompleted  TaskStatus = "completed"
	TaskDeferred   TaskStatus = "deferred"
)

type PomodoroPhase string

const (
	PhaseFocus     PomodoroPhase = "focus"
	PhaseBreak     PomodoroPhase = "break"
	PhaseLongBreak PomodoroPhase = "long_break"
	PhasePaused    PomodoroPhase = "paused"
)

type OverrideMode string

const (
	OverrideNone      OverrideMode = "none"
	OverrideSoft      OverrideMode = "soft"
	OverrideHard      OverrideMode = "hard"
	OverrideTemporary OverrideMode = "temporary"
)

// ValidBlockTypes is the canonical set of accepted block type strings.
var ValidBlockTypes = map[string]bool{
	"deep": true, "shallow": true, "admin": true, "learning": true,
}

// ValidBlockSources is the canonical set of accepted block source strings.
var ValidBlockSources = map[string]bool{
	"template": true, "routine": true, "manual": true, "calendar": true,
}

// ValidTaskStatuses is the canonical set of accepted task status strings.
var ValidTaskStatuses = map[string]bool{
	"pending": true, "in_progress": true, "completed": true, "deferred": true,
}

// ValidPomodoroPhases is the canonical set of accepted pomodoro phase strings.
var ValidPomodoroPhases = map[string]bool{
	"focus": true, "break": true, "long_break": true, "paused": true,
}

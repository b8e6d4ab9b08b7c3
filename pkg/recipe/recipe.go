// Package recipe defines the task model and loads txAdmin-style recipe
// documents into an ordered task list.
package recipe

// Kind identifies the action a task performs. The set is closed: every
// recognized recipe action maps to exactly one Kind, and anything else
// becomes KindUnrecognized so it can be reported instead of dropped.
type Kind string

const (
	KindCloneRepo    Kind = "clone_repo"
	KindDownloadFile Kind = "download_file"
	KindUnzip        Kind = "unzip"
	KindMovePath     Kind = "move_path"
	KindRemovePath   Kind = "remove_path"
	KindDelay        Kind = "delay"
	KindDatabaseOp   Kind = "database_op"
	KindUnrecognized Kind = "unrecognized"
)

// actionKinds maps recipe action names to kinds. Both database actions
// collapse into KindDatabaseOp; they are recognized but never executed.
var actionKinds = map[string]Kind{
	"download_github":  KindCloneRepo,
	"download_file":    KindDownloadFile,
	"unzip":            KindUnzip,
	"move_path":        KindMovePath,
	"remove_path":      KindRemovePath,
	"waste_time":       KindDelay,
	"connect_database": KindDatabaseOp,
	"query_database":   KindDatabaseOp,
}

// Task is one recipe entry.
type Task struct {
	Kind   Kind
	Action string // raw action name from the document

	Source      string // URL or repository identifier
	Ref         string // branch/tag/commit; empty means the repository default
	Subpath     string // restricts a clone to a portion of the source tree
	Destination string // relative to the output root
	Seconds     float64

	// OrderIndex is the position in the original document, assigned once
	// at load time. Tasks are never reordered.
	OrderIndex int

	// Enabled is false when the entry carries an explicit enabled: false
	// flag. Such tasks surface as Skipped; commented-out entries never
	// become tasks at all.
	Enabled bool
}

// Recipe is the parsed document: an ordered list of tasks plus load
// accounting.
type Recipe struct {
	Name  string
	Tasks []Task

	// Commented counts entries deactivated through the document's comment
	// syntax (never considered). Disabled counts well-formed entries with
	// enabled: false (deliberately skipped).
	Commented int
	Disabled  int
}

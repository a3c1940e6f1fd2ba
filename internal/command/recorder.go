package command

// Command names reported to a Recorder
const (
	NameAddChild    = "add_child"
	NameAddSibling  = "add_sibling"
	NameAddParent   = "add_parent"
	NameAddFloating = "add_floating"
	NameDelete      = "delete"
	NameCopy        = "copy"
	NamePaste       = "paste"
	NameCut         = "cut"
	NameDuplicate   = "duplicate"
	NameConnect     = "connect"
	NameReconnect   = "reconnect"
	NameMove        = "move"
	NameRename      = "rename"
	NameStyle       = "style"
	NameUndo        = "undo"
	NameRedo        = "redo"
)

// Recorder observes commands that changed something
type Recorder interface {
	CommandExecuted(name string)
}

type nopRecorder struct{}

func (nopRecorder) CommandExecuted(string) {}

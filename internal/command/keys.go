package command

// Action is an editor intent resolved from a key press
type Action int

const (
	ActionNone Action = iota
	ActionAddSiblingBelow
	ActionAddSiblingAbove
	ActionAddParent
	ActionAddFloating
	ActionAddChild
	ActionDelete
	ActionCopy
	ActionCut
	ActionPaste
	ActionDuplicate
	ActionUndo
	ActionRedo
	ActionSave
)

var actionNames = map[Action]string{
	ActionNone:            "none",
	ActionAddSiblingBelow: "add_sibling_below",
	ActionAddSiblingAbove: "add_sibling_above",
	ActionAddParent:       "add_parent",
	ActionAddFloating:     "add_floating",
	ActionAddChild:        "add_child",
	ActionDelete:          "delete",
	ActionCopy:            "copy",
	ActionCut:             "cut",
	ActionPaste:           "paste",
	ActionDuplicate:       "duplicate",
	ActionUndo:            "undo",
	ActionRedo:            "redo",
	ActionSave:            "save",
}

func (a Action) String() string {
	if s, ok := actionNames[a]; ok {
		return s
	}
	return "unknown"
}

// Key values as reported by the rendering surface
const (
	KeyEnter     = "Enter"
	KeyTab       = "Tab"
	KeyDelete    = "Delete"
	KeyBackspace = "Backspace"
)

// KeyEvent is a key press on the editing surface
type KeyEvent struct {
	Key   string `json:"key" validate:"required"`
	Ctrl  bool   `json:"ctrl"`
	Meta  bool   `json:"meta"`
	Shift bool   `json:"shift"`

	// TextInputFocused is set while a text field owns the keyboard
	TextInputFocused bool `json:"textInputFocused"`
}

func (e KeyEvent) mod() bool {
	return e.Ctrl || e.Meta
}

// Resolve maps a key press to an action. Selection-bound actions apply to
// the most recently selected node; hasSelection picks between the
// selection and the no-selection bindings.
func Resolve(e KeyEvent, hasSelection bool) Action {
	if e.TextInputFocused {
		return ActionNone
	}

	switch {
	case e.mod() && e.Key == "z":
		return ActionUndo
	case e.mod() && (e.Key == "y" || (e.Shift && e.Key == "Z")):
		return ActionRedo
	}

	if hasSelection {
		switch {
		case e.Key == KeyEnter && e.mod() && e.Shift:
			return ActionAddParent
		case e.Key == KeyEnter && e.Shift:
			return ActionAddSiblingAbove
		case e.Key == KeyEnter && e.mod():
			return ActionAddFloating
		case e.Key == KeyEnter:
			return ActionAddSiblingBelow
		case e.Key == KeyTab:
			return ActionAddChild
		case e.Key == KeyDelete || e.Key == KeyBackspace:
			return ActionDelete
		case e.mod() && e.Key == "c":
			return ActionCopy
		case e.mod() && e.Key == "d":
			return ActionDuplicate
		case e.mod() && e.Key == "x":
			return ActionCut
		}
	} else if e.Key == KeyEnter {
		return ActionAddFloating
	}

	switch {
	case e.mod() && e.Key == "v":
		return ActionPaste
	case e.mod() && e.Key == "s":
		return ActionSave
	}
	return ActionNone
}

package history

// BeginGroup starts a record group.
// Records pushed while grouping collapse into a single undo step.
func (h *History) BeginGroup(name string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.grouping {
		// Already grouping, ignore nested calls
		return
	}

	h.grouping = true
	h.groupName = name
	h.groupRecorded = false
	h.groupRedo = nil
}

// EndGroup finishes a record group.
func (h *History) EndGroup() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.grouping = false
	h.groupRecorded = false
	h.groupRedo = nil
}

// CancelGroup ends a group and drops its record, restoring the redo stack
// the group displaced.
// Note: edits already applied still affect the text!
func (h *History) CancelGroup() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.grouping {
		return
	}

	if h.groupRecorded && len(h.undoStack) > 0 {
		h.undoStack = h.undoStack[:len(h.undoStack)-1]
		h.redoStack = h.groupRedo
	}

	h.grouping = false
	h.groupRecorded = false
	h.groupRedo = nil
}

// Transaction executes a function within a grouped undo context.
// If the function returns an error, the group is cancelled.
// Otherwise, the group is ended normally.
func (h *History) Transaction(name string, fn func() error) error {
	h.BeginGroup(name)

	if err := fn(); err != nil {
		h.CancelGroup()
		return err
	}

	h.EndGroup()
	return nil
}

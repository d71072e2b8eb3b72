package table

import "fmt"

// Command is one user gesture against a table.
type Command interface {
	apply(e *Enhancer) error
}

// SetQuery is typing into the search box.
type SetQuery struct {
	Text string
}

// ActivateSort is clicking a sortable header.
type ActivateSort struct {
	Column int
}

// ToggleRow is checking or unchecking a row checkbox.
type ToggleRow struct {
	Row     int
	Checked bool
}

// ToggleAll is checking or unchecking the header select-all checkbox.
type ToggleAll struct {
	Checked bool
}

func (c SetQuery) apply(e *Enhancer) error {
	e.SetQuery(c.Text)
	return nil
}

func (c ActivateSort) apply(e *Enhancer) error {
	_, err := e.ActivateSort(c.Column)
	return err
}

func (c ToggleRow) apply(e *Enhancer) error {
	_, err := e.ToggleRow(c.Row, c.Checked)
	return err
}

func (c ToggleAll) apply(e *Enhancer) error {
	e.ToggleAll(c.Checked)
	return nil
}

// Dispatch applies cmd synchronously.
func (e *Enhancer) Dispatch(cmd Command) error {
	if cmd == nil {
		return fmt.Errorf("dispatch: nil command")
	}
	return cmd.apply(e)
}

package views

// minListRows keeps lists usable in very short terminals
const minListRows = 5

// ViewState is embedded by every view: terminal size plus a one-line
// status shown above the key help
type ViewState struct {
	Width, Height int

	Message    string
	MessageErr bool
}

func (s *ViewState) SetSize(width, height int) {
	s.Width, s.Height = width, height
}

func (s *ViewState) SetMessage(msg string, isErr bool) {
	s.Message, s.MessageErr = msg, isErr
}

func (s *ViewState) ClearMessage() {
	s.SetMessage("", false)
}

// SetError shows err as a failed status
func (s *ViewState) SetError(err error) {
	s.SetMessage(err.Error(), true)
}

// listHeight is how many list rows fit once chrome lines of title, status
// and help are drawn
func (s *ViewState) listHeight(chrome int) int {
	return max(s.Height-chrome, minListRows)
}
